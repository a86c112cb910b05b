package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muse-vcs/muse/pkg/muse"
)

func newInitCommand() *cobra.Command {
	var branch, userName, userEmail string
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty muse repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
			var opts []muse.Option
			if branch != "" {
				opts = append(opts, muse.WithDefaultBranch(branch))
			}
			if userName != "" || userEmail != "" {
				opts = append(opts, muse.WithUser(userName, userEmail))
			}
			r, err := muse.Init(path, opts...)
			if err != nil {
				return err
			}
			fmt.Printf("initialized repository %s at %s\n", r.RepoID(), r.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&branch, "default-branch", "", "name of the initial branch")
	cmd.Flags().StringVar(&userName, "user-name", "", "committer name to seed config.toml with")
	cmd.Flags().StringVar(&userEmail, "user-email", "", "committer email to seed config.toml with")
	return cmd
}
