package main

import (
	"github.com/spf13/cobra"

	"github.com/ivoronin/randtree/internal/bench"
)

// newBenchCmd creates the bench subcommand.
func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench CSVFILE",
		Short: "Summarise filesystem benchmark results",
		Long: `Reads benchmark rows "fstype,name,cmd,real,user,sys" from CSVFILE ("-" for
stdin) and prints the average of each duration per test and filesystem.
Durations are given as SS.ffffff or MM:SS.ffffff.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = in.Close() }()

			rep, err := bench.Parse(in)
			if err != nil {
				return err
			}
			rep.Render(cmd.OutOrStdout())
			return nil
		},
	}
}
