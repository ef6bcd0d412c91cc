// Package export writes measurement streams as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/verte-zerg/keydyn/internal/model"
)

// Output file names.
const (
	BigramFile   = "bigram_times.csv"
	WordFile     = "word_times.csv"
	SentenceFile = "sentence_times.csv"
)

// Paths lists the files written by WriteAll.
type Paths struct {
	Bigrams   string
	Words     string
	Sentences string
}

// WriteAll writes the three measurement files into dir.
func WriteAll(dir string, bigrams []model.BigramRecord, words []model.WordRecord, sentences []model.SentenceRecord) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	paths := Paths{
		Bigrams:   filepath.Join(dir, BigramFile),
		Words:     filepath.Join(dir, WordFile),
		Sentences: filepath.Join(dir, SentenceFile),
	}
	if err := writeCSV(paths.Bigrams, []string{"bigram", "interkey_interval"}, len(bigrams), func(i int) []string {
		return []string{bigrams[i].Bigram, strconv.FormatInt(bigrams[i].IntervalMs, 10)}
	}); err != nil {
		return Paths{}, err
	}
	if err := writeCSV(paths.Words, []string{"word", "time"}, len(words), func(i int) []string {
		return []string{words[i].Word, strconv.FormatInt(words[i].DurationMs, 10)}
	}); err != nil {
		return Paths{}, err
	}
	if err := writeCSV(paths.Sentences, []string{"sentence", "time"}, len(sentences), func(i int) []string {
		return []string{sentences[i].Text, strconv.FormatInt(sentences[i].DurationMs, 10)}
	}); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "keydyn-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", filepath.Base(path), err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := csv.NewWriter(tmpFile)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	for i := 0; i < n; i++ {
		if err := writer.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filepath.Base(path), err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
