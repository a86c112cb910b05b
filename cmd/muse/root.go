package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/muse-vcs/muse/pkg/muse"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "muse",
		Short:         "A music-native version control system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInitCommand(),
		newCommitCommand(),
		newAmendCommand(),
		newLogCommand(),
		newStatusCommand(),
		newBranchCommand(),
		newCheckoutCommand(),
		newMergeCommand(),
		newMergeAbortCommand(),
		newRebaseCommand(),
		newResetCommand(),
		newTagCommand(),
		newEmotionDiffCommand(),
		newDivergenceCommand(),
		newTimelineCommand(),
		newTempoCommand(),
		newCatObjectCommand(),
	)
	return root
}

// openRepo opens the repository rooted at or above the current directory.
func openRepo() (*muse.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return muse.Open(cwd)
}
