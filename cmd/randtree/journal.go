package main

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ivoronin/randtree/internal/journal"
)

// newJournalCmd creates the journal subcommand.
func newJournalCmd() *cobra.Command {
	var journalFile string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := journal.Open(journalFile)
			if err != nil {
				return err
			}
			defer func() { _ = runs.Close() }()

			entries, err := runs.List()
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Target", "Seed", "Levels", "Content", "Dirs", "Files", "Size", "Created"})
			for _, e := range entries {
				tw.AppendRow(table.Row{
					e.Target,
					strconv.FormatInt(e.Spec.Seed, 10),
					e.Spec.Levels,
					e.Spec.FileContent.String(),
					e.Directories,
					e.Files,
					humanize.IBytes(uint64(e.Bytes)),
					e.Created.Format("2006-01-02 15:04:05"),
				})
			}
			tw.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&journalFile, "journal", "", "Journal file to list")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}
