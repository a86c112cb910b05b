package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muse-vcs/muse/modules/commitstore"
)

func newMergeCommand() *cobra.Command {
	var author string
	cmd := &cobra.Command{
		Use:   "merge <ref>",
		Short: "Join two development histories together",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			result, err := r.Merge(args[0], author, nil)
			if err != nil {
				return err
			}
			switch {
			case result.AlreadyUpToDate:
				fmt.Println("already up to date")
			case len(result.Conflicts) > 0:
				fmt.Printf("merge conflicts in: %v\n", result.Conflicts)
				fmt.Println("resolve and commit, or run `muse merge-abort`")
			default:
				fmt.Println(result.CommitID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "author identity for the merge commit")
	return cmd
}

func newMergeAbortCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge-abort",
		Short: "Abort an in-progress merge",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			return r.MergeAbort()
		},
	}
}

func newRebaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebase <new-base> <commit>...",
		Short: "Reapply commits on top of another base",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			newBase, err := r.Revision(args[0])
			if err != nil {
				return err
			}
			commits := make([]commitstore.CommitID, 0, len(args)-1)
			for _, a := range args[1:] {
				id, err := r.Revision(a)
				if err != nil {
					return err
				}
				commits = append(commits, id)
			}
			result, err := r.Rebase(commits, newBase)
			if err != nil {
				for _, id := range result.Rebased {
					fmt.Println(id)
				}
				return err
			}
			for _, id := range result.Rebased {
				fmt.Println(id)
			}
			return nil
		},
	}
	return cmd
}
