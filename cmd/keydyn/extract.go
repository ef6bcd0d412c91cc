package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keydyn/internal/config"
	"github.com/verte-zerg/keydyn/internal/export"
	"github.com/verte-zerg/keydyn/internal/extract"
	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/model"
	"github.com/verte-zerg/keydyn/internal/participants"
	"github.com/verte-zerg/keydyn/internal/pipeline"
	"github.com/verte-zerg/keydyn/internal/stats"
	"github.com/verte-zerg/keydyn/internal/store"
)

var (
	extractOut          string
	extractKeystrokeDir string
	extractMinInterval  int64
	extractMaxInterval  int64
	extractWorkers      int
	extractPattern      string
	extractNoStore      bool
	extractDB           string
	extractTop          int
	extractDistribution bool
)

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <participants-file> [keystroke-dir]",
		Short: "Extract bigram, word and sentence timings",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runExtractCmd,
	}
	cmd.Flags().StringVar(&extractOut, "out", ".", "directory for the CSV outputs")
	cmd.Flags().StringVar(&extractKeystrokeDir, "keystroke-dir", ".", "directory holding keystroke logs")
	cmd.Flags().Int64Var(&extractMinInterval, "min-interval", extract.DefaultBounds.MinMs, "smallest plausible interval in ms")
	cmd.Flags().Int64Var(&extractMaxInterval, "max-interval", extract.DefaultBounds.MaxMs, "largest plausible interval in ms")
	cmd.Flags().IntVar(&extractWorkers, "workers", runtime.GOMAXPROCS(0), "participants processed in parallel")
	cmd.Flags().StringVar(&extractPattern, "pattern", keylog.DefaultPattern, "keystroke file name pattern (%d is the participant ID)")
	cmd.Flags().BoolVar(&extractNoStore, "no-store", false, "do not save the run to the database")
	cmd.Flags().StringVar(&extractDB, "db", config.DefaultDBPath(), "SQLite database path")
	cmd.Flags().IntVar(&extractTop, "top", 5, "number of most common tokens in the summary")
	cmd.Flags().BoolVar(&extractDistribution, "distribution", false, "show the bigram interval distribution")
	return cmd
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg := fileCfg.Extract
	applyStringConfig(cmd, "out", &extractOut, cfg.Out)
	applyStringConfig(cmd, "keystroke-dir", &extractKeystrokeDir, cfg.KeystrokeDir)
	applyInt64Config(cmd, "min-interval", &extractMinInterval, cfg.MinInterval)
	applyInt64Config(cmd, "max-interval", &extractMaxInterval, cfg.MaxInterval)
	applyIntConfig(cmd, "workers", &extractWorkers, cfg.Workers)
	applyStringConfig(cmd, "pattern", &extractPattern, cfg.Pattern)
	applyBoolConfig(cmd, "no-store", &extractNoStore, cfg.NoStore)
	applyStringConfig(cmd, "db", &extractDB, cfg.DB)

	participantsFile := args[0]
	if len(args) > 1 {
		extractKeystrokeDir = args[1]
	}
	bounds := model.Bounds{MinMs: extractMinInterval, MaxMs: extractMaxInterval}
	if err := extract.ValidateBounds(bounds); err != nil {
		return err
	}
	if extractWorkers < 1 {
		return fmt.Errorf("--workers must be > 0")
	}

	out := cmd.OutOrStdout()
	printf(out, "Reading filtered participants from: %s\n", participantsFile)
	list, err := participants.ReadIDsFile(participantsFile)
	if err != nil {
		if !errors.Is(err, keylog.ErrMissingFile) && !errors.Is(err, keylog.ErrMissingColumn) {
			return fmt.Errorf("failed to read participants: %w", err)
		}
		logger.Warn("failed to read participants", zap.String("path", participantsFile), zap.Error(err))
	}
	if list.Malformed > 0 {
		logger.Warn("skipped non-numeric participant IDs",
			zap.String("path", participantsFile), zap.Int("rows", list.Malformed))
	}
	if len(list.IDs) == 0 {
		printf(out, "No participant IDs found. Exiting.\n")
		return nil
	}
	printf(out, "Found %d filtered participants\n", len(list.IDs))
	printf(out, "Processing keystroke files from directory: %s\n", extractKeystrokeDir)

	res, err := pipeline.Run(cmd.Context(), list.IDs, pipeline.Options{
		KeystrokeDir: extractKeystrokeDir,
		Pattern:      extractPattern,
		Bounds:       bounds,
		Workers:      extractWorkers,
		Logger:       logger,
		Progress: func(o pipeline.Outcome) {
			printf(out, "Processing participant %d... %s\n", o.ParticipantID, progressLine(o))
		},
	})
	if err != nil {
		return fmt.Errorf("extraction interrupted: %w", err)
	}

	totals := res.Totals
	printf(out, "\nProcessed %d/%d participants\n", totals.Processed, totals.Requested)
	printf(out, "Total correct bigrams collected: %d\n", len(res.Bigrams))
	printf(out, "Total correct sentence times collected: %d\n", len(res.Sentences))
	printf(out, "Total correct multi-letter word times collected: %d\n", len(res.Words))
	logger.Info("extraction finished",
		zap.Int("requested", totals.Requested),
		zap.Int("processed", totals.Processed),
		zap.Int("no_data", totals.NoData),
		zap.Int("missing", totals.Missing),
		zap.Int("skipped", totals.Skipped),
		zap.Int("incorrect_keys", totals.Counts.Incorrect),
		zap.Int("ignored_keys", totals.Counts.Ignored),
		zap.Int("bigrams_dropped", totals.Counts.BigramsDropped),
		zap.Int("words_dropped", totals.Counts.WordsDropped),
		zap.Int("words_mismatched", totals.Counts.WordsMismatched),
		zap.Int("skipped_sentences", totals.Counts.SkippedSentences),
		zap.Int("malformed_rows", totals.Counts.MalformedRows),
	)

	paths, err := export.WriteAll(extractOut, res.Bigrams, res.Words, res.Sentences)
	if err != nil {
		return err
	}
	printf(out, "Correct bigram results (%d-%dms) written to: %s\n", bounds.MinMs, bounds.MaxMs, paths.Bigrams)
	printf(out, "Correct sentence timing results written to: %s\n", paths.Sentences)
	printf(out, "Correct multi-letter word timing results (%d-%dms) written to: %s\n", bounds.MinMs, bounds.MaxMs, paths.Words)

	info := model.RunInfo{
		ParticipantsFile: participantsFile,
		KeystrokeDir:     extractKeystrokeDir,
		Bounds:           bounds,
		Requested:        totals.Requested,
		Processed:        totals.Processed,
		Missing:          totals.Missing,
		Skipped:          totals.Skipped,
		BigramCount:      len(res.Bigrams),
		WordCount:        len(res.Words),
		SentenceCount:    len(res.Sentences),
	}
	if !extractNoStore {
		id, err := storeRun(cmd, info, res)
		if err != nil {
			return err
		}
		info.ID = id
		printf(out, "Stored run %s in %s\n", id, extractDB)
	}

	report := stats.FromRecords(info, res.Bigrams, res.Words, res.Sentences)
	return stats.RenderReport(out, report, stats.RenderOptions{
		TopN:         extractTop,
		Color:        stats.ShouldUseColor(out, false),
		Width:        stats.TerminalWidth(),
		Distribution: extractDistribution,
	})
}

func progressLine(o pipeline.Outcome) string {
	if o.Status != pipeline.StatusOK {
		return "✗ (no correct data)"
	}
	r := o.Result
	return fmt.Sprintf("✓ (%d correct bigrams, %d correct sentences, %d correct multi-letter words)",
		len(r.Bigrams), len(r.Sentences), len(r.Words))
}

func storeRun(cmd *cobra.Command, info model.RunInfo, res *pipeline.Result) (string, error) {
	st, err := store.Open(extractDB)
	if err != nil {
		return "", fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	results := make([]model.ParticipantResult, 0, len(res.Outcomes))
	for _, o := range res.Outcomes {
		if o.Status == pipeline.StatusOK {
			results = append(results, o.Result)
		}
	}
	id, err := st.InsertRun(cmd.Context(), info, results)
	if err != nil {
		return "", fmt.Errorf("failed to store run: %w", err)
	}
	return id, nil
}

func printf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		// Best-effort console output.
		_ = err
	}
}
