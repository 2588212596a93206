package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chriscod3/pdf-to-audio-converter/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past conversion runs",
	Long: `History lists conversion runs recorded in the SQLite ledger: when each
run started, its language and provider, and how many files succeeded or
failed. With --export the full history is written to runs.yaml and
runs.json.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("db", defaultHistoryDB, "run-history database path")
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().String("export", "", "export the full history to this directory")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("no run history at %s", dbPath)
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if exportDir, _ := cmd.Flags().GetString("export"); exportDir != "" {
		if err := store.Export(exportDir); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Exported history to %s\n", exportDir)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stdout, "No runs recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tLANG\tPROVIDER\tFORMAT\tOK\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime),
			r.Language, r.Provider, r.Format, r.Succeeded, r.Failed)
	}
	return tw.Flush()
}
