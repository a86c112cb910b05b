package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatObjectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat-object <id>",
		Short: "Print the contents of a blob, snapshot, or commit by its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			kind, data, err := r.CatObject(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\n", kind, data)
			return nil
		},
	}
}
