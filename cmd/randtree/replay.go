package main

import (
	"github.com/spf13/cobra"

	"github.com/ivoronin/randtree/internal/journal"
)

type replayOptions struct {
	journalFile string
	verbose     bool
	noProgress  bool
}

// newReplayCmd creates the replay subcommand.
func newReplayCmd() *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay SOURCE TARGET",
		Short: "Regenerate a recorded tree into a new location",
		Long: `Looks up the run recorded for SOURCE in the journal and generates the same
tree, with the same seed and parameters, into TARGET.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.journalFile, "journal", "", "Journal file the source run was recorded in")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show every created directory and file")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runReplay(cmd *cobra.Command, source, target string, opts *replayOptions) error {
	runs, err := journal.Open(opts.journalFile)
	if err != nil {
		return err
	}
	entry, err := runs.Lookup(source)
	// The journal is reopened by runGenerate to record the new run.
	_ = runs.Close()
	if err != nil {
		return err
	}

	return runGenerate(cmd.OutOrStdout(), target, entry.Spec, opts.journalFile, opts.verbose, !opts.noProgress)
}
