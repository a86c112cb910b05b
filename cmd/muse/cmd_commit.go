package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muse-vcs/muse/modules/commitstore"
)

func newCommitCommand() *cobra.Command {
	var message, author string
	var tempoBPM float64
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record changes to the repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			var meta commitstore.Metadata
			if tempoBPM > 0 {
				meta = commitstore.Metadata{"tempo_bpm": tempoBPM}
			}
			result, err := r.Commit(message, author, meta)
			if err != nil {
				return err
			}
			if result.NoChange {
				fmt.Println("nothing to commit, working tree matches HEAD")
				return nil
			}
			fmt.Println(result.CommitID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "author identity")
	cmd.Flags().Float64Var(&tempoBPM, "tempo-bpm", 0, "tempo_bpm metadata annotation")
	return cmd
}

func newAmendCommand() *cobra.Command {
	var message, author string
	cmd := &cobra.Command{
		Use:   "amend",
		Short: "Replace the tip of the current branch with a new commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			result, err := r.Amend(message, author, nil)
			if err != nil {
				return err
			}
			fmt.Println(result.CommitID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "new commit message (empty keeps the original)")
	cmd.Flags().StringVar(&author, "author", "", "author identity")
	return cmd
}
