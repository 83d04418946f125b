package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// platformCommands holds constructors for subcommands that only build on
// some platforms.
var platformCommands []func() *cobra.Command

func main() {
	os.Exit(run())
}

func run() int {
	if err := fang.Execute(context.Background(), newRootCmd()); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "randtree",
		Short:   "Generate pseudo-random file hierarchies for filesystem testing",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(
		newGenerateCmd(),
		newReplayCmd(),
		newJournalCmd(),
		newBenchCmd(),
		newPow2Cmd(),
		newZerosCmd(),
		newStatCmd(),
	)
	for _, newCmd := range platformCommands {
		root.AddCommand(newCmd())
	}
	return root
}
