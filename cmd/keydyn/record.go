package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keydyn/internal/corpus"
	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/tui"
)

var (
	recordDir       string
	recordPattern   string
	recordCorpus    string
	recordSentences int
	recordForce     bool
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <participant-id>",
		Short: "Record a keystroke log by typing sentences in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordCmd,
	}
	cmd.Flags().StringVar(&recordDir, "keystroke-dir", "files", "directory to write the keystroke log to")
	cmd.Flags().StringVar(&recordPattern, "pattern", keylog.DefaultPattern, "keystroke file name pattern")
	cmd.Flags().StringVar(&recordCorpus, "corpus", "", "sentence file, one per line (default: built-in sentences)")
	cmd.Flags().IntVar(&recordSentences, "sentences", 5, "number of sentences to type")
	cmd.Flags().BoolVar(&recordForce, "force", false, "overwrite an existing log")
	return cmd
}

func runRecordCmd(cmd *cobra.Command, args []string) error {
	applyStringConfig(cmd, "keystroke-dir", &recordDir, fileCfg.Extract.KeystrokeDir)
	applyStringConfig(cmd, "pattern", &recordPattern, fileCfg.Extract.Pattern)

	participantID, err := strconv.Atoi(args[0])
	if err != nil || participantID <= 0 {
		return fmt.Errorf("invalid participant id %q", args[0])
	}
	if recordSentences <= 0 {
		return errors.New("--sentences must be > 0")
	}

	path := keylog.Path(recordDir, recordPattern, participantID)
	if !recordForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	sentences := corpus.Default()
	if recordCorpus != "" {
		sentences, err = corpus.LoadLines(recordCorpus)
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
	}
	if len(sentences) > recordSentences {
		sentences = sentences[:recordSentences]
	}

	m := tui.NewModel(participantID, sentences)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run recorder: %w", err)
	}

	events := m.Events()
	if len(events) == 0 {
		logger.Info("no sentence completed, nothing written", zap.Int("participant", participantID))
		return nil
	}
	var buf bytes.Buffer
	if err := keylog.Write(&buf, events); err != nil {
		return fmt.Errorf("failed to encode keystrokes: %w", err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	if !m.Done() {
		logger.Warn("recording interrupted, partial log written", zap.Int("participant", participantID))
	}
	printf(cmd.OutOrStdout(), "Wrote %d keystrokes to %s\n", len(events), path)
	return nil
}
