package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SoeMinHtet-SEEK/TestMicrobenchmark/pkg/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded ingestion runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the benchmarks of one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20,
		"maximum number of runs to list")
}

// openHistoryStore loads config and starts the history store, or fails
// when no database is configured.
func openHistoryStore(cmd *cobra.Command) (history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Database == nil || !cfg.Database.Enabled {
		return nil, fmt.Errorf("history requires an enabled database section in config")
	}

	store := history.NewStore(log, cfg.Database)
	if err := store.Start(cmd.Context()); err != nil {
		return nil, fmt.Errorf("starting history store: %w", err)
	}

	return store, nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop history store")
		}
	}()

	runs, err := store.ListRuns(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMIT\tBRANCH\tFILES\tSKIPPED\tRECORDS\tLINES\tCREATED")

	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			run.ID, run.Commit, run.Branch,
			run.Files, run.Skipped, run.Records, run.Lines,
			run.CreatedAt.Local().Format(time.RFC3339),
		)
	}

	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}

	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}

	defer func() {
		if err := store.Stop(); err != nil {
			log.WithError(err).Warn("Failed to stop history store")
		}
	}()

	run, benchmarks, err := store.GetRun(cmd.Context(), uint(id))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %d  commit=%s branch=%s  %s\n\n",
		run.ID, run.Commit, run.Branch,
		run.CreatedAt.Local().Format(time.RFC3339))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEST\tMEDIAN NS\tMEDIAN ALLOCS\tITERATIONS\tDEVICE")

	for _, b := range benchmarks {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			b.TestName, b.MedianTimeNs, b.MedianAllocationCount,
			b.Iterations, b.Device,
		)
	}

	return w.Flush()
}
