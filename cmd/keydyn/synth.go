package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keydyn/internal/corpus"
	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/synth"
)

var (
	synthOut          string
	synthCount        int
	synthFirstID      int
	synthCorpus       string
	synthPattern      string
	synthSentences    int
	synthTypoRate     float64
	synthCorrectRate  float64
	synthMeanInterval int64
	synthJitter       int64
	synthSpread       float64
	synthSeed         int64
)

func newSynthCmd() *cobra.Command {
	defaults := synth.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate synthetic keystroke logs and metadata",
		Args:  cobra.NoArgs,
		RunE:  runSynthCmd,
	}
	cmd.Flags().StringVar(&synthOut, "out", "synthetic", "output directory")
	cmd.Flags().IntVar(&synthCount, "participants", 20, "number of participants")
	cmd.Flags().IntVar(&synthFirstID, "first-id", 1, "first participant ID")
	cmd.Flags().StringVar(&synthCorpus, "corpus", "", "sentence file, one per line (default: built-in sentences)")
	cmd.Flags().StringVar(&synthPattern, "pattern", keylog.DefaultPattern, "keystroke file name pattern")
	cmd.Flags().IntVar(&synthSentences, "sentences", defaults.SentencesPerParticipant, "sentences per participant")
	cmd.Flags().Float64Var(&synthTypoRate, "typo-rate", defaults.TypoRate, "probability of a wrong key per character (0-1)")
	cmd.Flags().Float64Var(&synthCorrectRate, "correct-rate", defaults.CorrectRate, "probability a typo is erased (0-1)")
	cmd.Flags().Int64Var(&synthMeanInterval, "mean-interval", defaults.MeanIntervalMs, "mean interkey interval in ms")
	cmd.Flags().Int64Var(&synthJitter, "jitter", defaults.JitterMs, "uniform interval jitter in ms")
	cmd.Flags().Float64Var(&synthSpread, "speed-spread", defaults.SpeedSpread, "per-participant speed variation (0-1)")
	cmd.Flags().Int64Var(&synthSeed, "seed", defaults.Seed, "random seed (0 uses the clock)")
	return cmd
}

func runSynthCmd(cmd *cobra.Command, _ []string) error {
	if synthCount <= 0 {
		return fmt.Errorf("--participants must be > 0")
	}
	sentences := corpus.Default()
	if synthCorpus != "" {
		loaded, err := corpus.LoadLines(synthCorpus)
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
		sentences = corpus.Filter(loaded, corpus.ASCIIPrintable)
		if dropped := len(loaded) - len(sentences); dropped > 0 {
			logger.Warn("dropped sentences with non-ASCII characters", zap.Int("count", dropped))
		}
	}

	gen, err := synth.New(sentences, synth.Options{
		Seed:                    synthSeed,
		SentencesPerParticipant: synthSentences,
		TypoRate:                synthTypoRate,
		CorrectRate:             synthCorrectRate,
		MeanIntervalMs:          synthMeanInterval,
		JitterMs:                synthJitter,
		SpeedSpread:             synthSpread,
	})
	if err != nil {
		return err
	}
	people := gen.Participants(synthFirstID, synthCount)
	metaPath, err := synth.WriteDataset(cmd.Context(), synthOut, synthPattern, people, runtime.GOMAXPROCS(0))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printf(out, "Wrote %d keystroke logs to %s\n", len(people), filepath.Join(synthOut, "files"))
	printf(out, "Wrote metadata to %s\n", metaPath)
	printf(out, "Next: keydyn filter %s filtered.txt && keydyn extract filtered.txt %s\n", metaPath, filepath.Join(synthOut, "files"))
	return nil
}
