// Command muse is a thin front door over the engine in pkg/muse: it binds
// flags to engine calls and maps engine error kinds to exit codes, without
// growing argument-parsing business logic of its own.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "muse:", err)
		return exitCodeFor(err)
	}
	return 0
}
