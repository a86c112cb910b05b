package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCommand() *cobra.Command {
	var del string
	cmd := &cobra.Command{
		Use:   "branch [name] [start-point]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			if del != "" {
				return r.DeleteBranch(del)
			}
			if len(args) == 0 {
				branches, err := r.ListBranches()
				if err != nil {
					return err
				}
				for _, b := range branches {
					marker := " "
					if b.Head {
						marker = "*"
					}
					fmt.Printf("%s %s %s\n", marker, b.Name, b.Commit)
				}
				return nil
			}
			startPoint := "HEAD"
			if len(args) == 2 {
				startPoint = args[1]
			}
			return r.CreateBranch(args[0], startPoint)
		},
	}
	cmd.Flags().StringVarP(&del, "delete", "d", "", "delete the named branch")
	return cmd
}

func newTagCommand() *cobra.Command {
	var del, annotate, remove string
	cmd := &cobra.Command{
		Use:   "tag [name] [ref]",
		Short: "List, create, or delete tags",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			switch {
			case del != "":
				return r.DeleteTag(del)
			case annotate != "":
				ref := "HEAD"
				if len(args) >= 1 {
					ref = args[0]
				}
				return r.Annotate(ref, annotate)
			case remove != "":
				ref := "HEAD"
				if len(args) >= 1 {
					ref = args[0]
				}
				return r.RemoveAnnotation(ref, remove)
			case len(args) == 0:
				tags, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, t := range tags {
					fmt.Printf("%s %s\n", t.Name, t.Commit)
				}
				return nil
			default:
				ref := "HEAD"
				if len(args) == 2 {
					ref = args[1]
				}
				return r.CreateTag(args[0], ref)
			}
		},
	}
	cmd.Flags().StringVarP(&del, "delete", "d", "", "delete the named ref-tag")
	cmd.Flags().StringVar(&annotate, "annotate", "", "attach a namespaced annotation (e.g. emotion:joyful) to the given ref")
	cmd.Flags().StringVar(&remove, "remove-annotation", "", "detach a namespaced annotation from the given ref")
	return cmd
}
