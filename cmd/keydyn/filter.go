package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/model"
	"github.com/verte-zerg/keydyn/internal/participants"
	"github.com/verte-zerg/keydyn/internal/stats"
)

var (
	filterLayouts       []string
	filterFingers       []string
	filterKeyboardTypes []string
	filterMaxErrorRate  float64
)

func newFilterCmd() *cobra.Command {
	defaults := participants.DefaultCriteria()
	cmd := &cobra.Command{
		Use:   "filter <metadata-file> [output-file]",
		Short: "Select eligible participants from study metadata",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runFilterCmd,
	}
	cmd.Flags().StringSliceVar(&filterLayouts, "layout", defaults.Layouts, "accepted keyboard layouts")
	cmd.Flags().StringSliceVar(&filterFingers, "fingers", defaults.Fingers, "accepted finger counts")
	cmd.Flags().StringSliceVar(&filterKeyboardTypes, "keyboard", defaults.KeyboardTypes, "accepted keyboard types")
	cmd.Flags().Float64Var(&filterMaxErrorRate, "max-error-rate", defaults.MaxErrorRate, "keep participants strictly below this error rate")
	return cmd
}

func runFilterCmd(cmd *cobra.Command, args []string) error {
	cfg := fileCfg.Filter
	applyStringSliceConfig(cmd, "layout", &filterLayouts, cfg.Layouts)
	applyStringSliceConfig(cmd, "fingers", &filterFingers, cfg.Fingers)
	applyStringSliceConfig(cmd, "keyboard", &filterKeyboardTypes, cfg.KeyboardTypes)
	applyFloatConfig(cmd, "max-error-rate", &filterMaxErrorRate, cfg.MaxErrorRate)

	criteria := model.FilterCriteria{
		Layouts:       filterLayouts,
		Fingers:       filterFingers,
		KeyboardTypes: filterKeyboardTypes,
		MaxErrorRate:  filterMaxErrorRate,
	}
	inputPath := args[0]
	outputPath := ""
	if len(args) > 1 {
		outputPath = args[1]
	}

	out := cmd.OutOrStdout()
	printf(out, "Processing file: %s\n", inputPath)
	printf(out, "Filtering criteria:\n")
	printf(out, "- LAYOUT = %s\n", strings.Join(criteria.Layouts, " or "))
	printf(out, "- FINGERS = %s\n", strings.Join(criteria.Fingers, " or "))
	printf(out, "- KEYBOARD_TYPE = %s\n", strings.Join(criteria.KeyboardTypes, " or "))
	printf(out, "- ERROR_RATE < %g\n", criteria.MaxErrorRate)
	printf(out, "%s\n", strings.Repeat("-", 50))

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open metadata: %w", err)
	}
	defer func() {
		if cerr := input.Close(); cerr != nil {
			// Best-effort close for read-only metadata.
			_ = cerr
		}
	}()

	var filtered bytes.Buffer
	breakdown, err := participants.Filter(input, &filtered, criteria)
	if err != nil {
		return fmt.Errorf("failed to filter %s: %w", inputPath, err)
	}
	printBreakdown(out, breakdown, criteria)

	if outputPath == "" {
		printf(out, "Filtered Results (%d participants found):\n", breakdown.Kept)
		printf(out, "%s\n", strings.Repeat("=", 50))
		if _, err := out.Write(filtered.Bytes()); err != nil {
			return err
		}
	} else {
		if err := writeFileAtomic(outputPath, filtered.Bytes()); err != nil {
			return err
		}
		printf(out, "Filtered data written to '%s'\n", outputPath)
	}

	if breakdown.Kept == 0 {
		return nil
	}
	demographics, err := participants.ReadDemographics(bytes.NewReader(filtered.Bytes()))
	if errors.Is(err, keylog.ErrMissingColumn) {
		logger.Debug("skipping participant statistics", zap.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to summarize participants: %w", err)
	}
	return stats.RenderDemographics(out, demographics, stats.ShouldUseColor(out, false))
}

func printBreakdown(w io.Writer, bd model.FilterBreakdown, criteria model.FilterCriteria) {
	pct := func(n int) float64 {
		if bd.Total == 0 {
			return 0
		}
		return float64(n) / float64(bd.Total) * 100
	}
	printf(w, "\nCriterion Breakdown (Total participants: %d):\n", bd.Total)
	printf(w, "- LAYOUT = %s: %4d participants (%.1f%%)\n", strings.Join(criteria.Layouts, "/"), bd.Layout, pct(bd.Layout))
	printf(w, "- FINGERS = %s: %4d participants (%.1f%%)\n", strings.Join(criteria.Fingers, "/"), bd.Fingers, pct(bd.Fingers))
	printf(w, "- KEYBOARD_TYPE = %s: %4d participants (%.1f%%)\n", strings.Join(criteria.KeyboardTypes, "/"), bd.KeyboardType, pct(bd.KeyboardType))
	printf(w, "- ERROR_RATE < %g: %4d participants (%.1f%%)\n", criteria.MaxErrorRate, bd.ErrorRate, pct(bd.ErrorRate))
	printf(w, "- ALL criteria combined: %4d participants (%.1f%%)\n", bd.Kept, pct(bd.Kept))
	printf(w, "%s\n", strings.Repeat("-", 50))
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "keydyn-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
