package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckoutCommand() *cobra.Command {
	var create, force bool
	cmd := &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch branches or create a new one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			result, err := r.Checkout(args[0], create, force)
			if err != nil {
				return err
			}
			if result.AlreadyOnBranch {
				fmt.Printf("already on %q\n", args[0])
				return nil
			}
			if result.Created {
				fmt.Printf("switched to a new branch %q\n", args[0])
				return nil
			}
			fmt.Printf("switched to branch %q\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&create, "create", "b", false, "create the branch before switching to it")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "discard local changes when switching")
	return cmd
}
