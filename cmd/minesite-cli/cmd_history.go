package main

import (
	"fmt"
	"io"

	"minesite/internal/common"
	"minesite/internal/storage"

	"github.com/spf13/cobra"
)

var historyFlags struct {
	limit    int
	dataPath string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent predictions from the journal",
	Long:  "Lists recent predictions. By default the running server is asked;\nwith --data-path the journal file is read directly (server stopped).",
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.IntVar(&historyFlags.limit, "limit", common.DefaultHistoryLimit, "Maximum number of predictions to list")
	f.StringVar(&historyFlags.dataPath, "data-path", "", "Read the journal in this directory instead of asking the server")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyFlags.limit < 1 {
		return fmt.Errorf("--limit must be positive, got %d", historyFlags.limit)
	}

	var records []storage.PredictionRecord
	var err error
	if historyFlags.dataPath != "" {
		records, err = readJournal(historyFlags.dataPath, historyFlags.limit)
	} else {
		records, err = newClient().History(cmd.Context(), historyFlags.limit)
	}
	if err != nil {
		return err
	}

	printHistory(cmd.OutOrStdout(), records)
	return nil
}

func readJournal(dataPath string, limit int) ([]storage.PredictionRecord, error) {
	store, err := storage.OpenReadOnly(dataPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	return store.Recent(limit)
}

func printHistory(out io.Writer, records []storage.PredictionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No predictions recorded.")
		return
	}
	fmt.Fprintf(out, "%-25s %-6s %-6s %-10s %s\n", "TIME", "SOURCE", "LABEL", "SCHEMA", "OUTCOME")
	for _, r := range records {
		fmt.Fprintf(out, "%-25s %-6s %-6d %-10s %s\n",
			r.Timestamp.Format("2006-01-02T15:04:05Z07:00"), r.Source, r.Label, r.SchemaSource, r.Outcome)
	}
}
