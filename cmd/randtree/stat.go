package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ivoronin/randtree/internal/inventory"
)

type statOptions struct {
	json        bool
	fingerprint bool
	ratio       bool
	workers     int
	noProgress  bool
}

// newStatCmd creates the stat subcommand.
func newStatCmd() *cobra.Command {
	opts := &statOptions{workers: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "stat DIR",
		Short: "Describe a directory tree",
		Long: `Counts the directories and files below DIR and their total size. Optionally
computes a content fingerprint, which is equal for identical trees, and the
zstd compression ratio of all file contents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := inventory.Reap(args[0], inventory.Options{
				Fingerprint: opts.fingerprint,
				Ratio:       opts.ratio,
				Workers:     opts.workers,
				Progress:    !opts.noProgress,
			})
			if err != nil {
				return err
			}
			if opts.json {
				return tree.WriteJSON(cmd.OutOrStdout())
			}
			renderTree(cmd.OutOrStdout(), tree)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the full inventory as JSON")
	cmd.Flags().BoolVar(&opts.fingerprint, "fingerprint", false, "Compute a BLAKE3 fingerprint of the tree")
	cmd.Flags().BoolVar(&opts.ratio, "ratio", false, "Measure the zstd compression ratio of file contents")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")

	return cmd
}

func renderTree(w io.Writer, t *inventory.Tree) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendRow(table.Row{"Root", t.Root})
	tw.AppendRow(table.Row{"Directories", len(t.Dirs)})
	tw.AppendRow(table.Row{"Files", len(t.Files)})
	tw.AppendRow(table.Row{"Size", fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(t.Bytes)), t.Bytes)})
	if t.Fingerprint != "" {
		tw.AppendRow(table.Row{"Fingerprint", t.Fingerprint})
	}
	if t.Compressed >= 0 {
		tw.AppendRow(table.Row{"Compressed", fmt.Sprintf("%s (ratio %.4f)", humanize.IBytes(uint64(t.Compressed)), t.Ratio())})
	}
	tw.Render()
}
