package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muse-vcs/muse/pkg/muse"
)

func newLogCommand() *cobra.Command {
	var limit int
	var author, tagPrefix string
	cmd := &cobra.Command{
		Use:   "log [ref]",
		Short: "Show commit logs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			ref := "HEAD"
			if len(args) == 1 {
				ref = args[0]
			}
			start, err := r.Revision(ref)
			if err != nil {
				return err
			}
			entries, err := r.Log(context.Background(), start, muse.LogOptions{
				Limit:        limit,
				AuthorSubstr: author,
				TagPrefix:    tagPrefix,
			})
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%s %s %s\n", e.Commit.ID, e.Commit.Author, e.Commit.Message)
				if len(e.Tags) > 0 {
					fmt.Printf("  tags: %v\n", e.Tags)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of commits to show")
	cmd.Flags().StringVar(&author, "author", "", "filter by author substring")
	cmd.Flags().StringVar(&tagPrefix, "tag-prefix", "", "filter by tag namespace prefix, e.g. emotion:")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			status, err := r.Status()
			if err != nil {
				return err
			}
			fmt.Printf("on branch %s\n", status.Branch)
			for _, p := range status.Diff.Added {
				fmt.Printf("  added:    %s\n", p)
			}
			for _, p := range status.Diff.Modified {
				fmt.Printf("  modified: %s\n", p)
			}
			for _, p := range status.Diff.Removed {
				fmt.Printf("  removed:  %s\n", p)
			}
			return nil
		},
	}
}
