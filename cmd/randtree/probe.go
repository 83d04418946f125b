//go:build unix

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivoronin/randtree/internal/probe"
)

func init() {
	platformCommands = append(platformCommands, newProbeCmd)
}

// newProbeCmd creates the probe subcommand.
func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe MNTDIR",
		Short: "Check that a mounted filesystem rejects modifications",
		Long: `Tries to create a file and a directory in MNTDIR, and to remove its first
subdirectory and first file. Every attempt must fail with EROFS; any other
outcome is an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := probe.Run(probe.OS{}, args[0])
			for _, a := range attempts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", a.Op, a.Err)
			}
			return err
		},
	}
}
