package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keydyn/internal/config"
	"github.com/verte-zerg/keydyn/internal/stats"
	"github.com/verte-zerg/keydyn/internal/store"
)

var (
	reportDB           string
	reportTop          int
	reportDistribution bool
	reportList         bool
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Summarize a stored run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportDB, "db", config.DefaultDBPath(), "SQLite database path")
	cmd.Flags().IntVar(&reportTop, "top", 5, "number of most common tokens")
	cmd.Flags().BoolVar(&reportDistribution, "distribution", false, "show the bigram interval distribution")
	cmd.Flags().BoolVar(&reportList, "list", false, "list stored runs instead")
	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	applyStringConfig(cmd, "db", &reportDB, fileCfg.Extract.DB)

	st, err := store.Open(reportDB)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	if reportList {
		runs, err := st.ListRuns(cmd.Context(), 0)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			logErrln("No runs stored yet. Run: keydyn extract <participants-file>")
			return nil
		}
		for _, run := range runs {
			printf(out, "%s  %s  %d/%d participants  %d bigrams  %d words  %d sentences\n",
				run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"),
				run.Processed, run.Requested, run.BigramCount, run.WordCount, run.SentenceCount)
		}
		return nil
	}

	runID := ""
	if len(args) > 0 {
		runID = args[0]
	}
	report, err := stats.BuildReport(cmd.Context(), st, runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) && runID == "" {
			logErrln("No runs stored yet. Run: keydyn extract <participants-file>")
		}
		return err
	}
	run := report.Run
	printf(out, "Run %s (%s)\n", run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"))
	printf(out, "Processed %d/%d participants (%d missing, %d skipped)\n", run.Processed, run.Requested, run.Missing, run.Skipped)
	return stats.RenderReport(out, report, stats.RenderOptions{
		TopN:         reportTop,
		Color:        stats.ShouldUseColor(out, false),
		Width:        stats.TerminalWidth(),
		Distribution: reportDistribution,
	})
}
