package main

import (
	"github.com/spf13/cobra"

	"github.com/muse-vcs/muse/pkg/muse"
)

func newResetCommand() *cobra.Command {
	var hard, mixed bool
	cmd := &cobra.Command{
		Use:   "reset <ref>",
		Short: "Reset current HEAD to the specified state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			mode := muse.ResetSoft
			switch {
			case hard:
				mode = muse.ResetHard
			case mixed:
				mode = muse.ResetMixed
			}
			return r.Reset(args[0], mode)
		},
	}
	cmd.Flags().BoolVar(&hard, "hard", false, "also restore the working tree")
	cmd.Flags().BoolVar(&mixed, "mixed", false, "equivalent to --soft in this data model")
	return cmd
}
