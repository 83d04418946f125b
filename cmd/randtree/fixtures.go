package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivoronin/randtree/internal/fixtures"
	"github.com/ivoronin/randtree/internal/generator"
)

// newPow2Cmd creates the pow2 subcommand.
func newPow2Cmd() *cobra.Command {
	var (
		from, to int
		seed     int64
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "pow2 DIR",
		Short: "Create power of two sized files",
		Long: `Creates DIR with a zero-filled and a random file of size 1<<shift for every
shift from --from-shift up to, but not including, --to-shift.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fixtures.Pow2(args[0], from, to, generator.NewRand(seed), newLogger(cmd.OutOrStdout(), verbose))
			return err
		},
	}

	cmd.Flags().IntVar(&from, "from-shift", fixtures.DefaultFromShift, "Start at the given shift")
	cmd.Flags().IntVar(&to, "to-shift", fixtures.DefaultToShift, "Stop before the given shift")
	cmd.Flags().Int64Var(&seed, "random-seed", time.Now().Unix(), "Seed for the random file contents")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every created file")

	return cmd
}

// newZerosCmd creates the zeros subcommand.
func newZerosCmd() *cobra.Command {
	var (
		seed    int64
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "zeros DIR",
		Short: "Create a few small zero-filled files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dirname: %s\n", args[0])
			fmt.Fprintf(out, "random seed: %d\n", seed)
			_, err := fixtures.Zeros(args[0], generator.NewRand(seed), newLogger(out, verbose))
			return err
		},
	}

	cmd.Flags().Int64Var(&seed, "random-seed", time.Now().Unix(), "Seed for the random generator (default: current time)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every created file")

	return cmd
}
