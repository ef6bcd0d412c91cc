package synth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/participants"
)

// MetadataFile is the name of the generated metadata file.
const MetadataFile = "metadata_participants.txt"

// MetadataColumns is the header of the metadata file.
var MetadataColumns = []string{
	participants.ColParticipantID,
	participants.ColLayout,
	participants.ColFingers,
	participants.ColKeyboardType,
	participants.ColErrorRate,
	participants.ColAge,
	participants.ColGender,
	participants.ColTypingCourse,
	participants.ColCountry,
	participants.ColNativeLanguage,
	participants.ColTimeSpent,
	participants.ColAvgWPM,
}

// WriteMetadata writes participant metadata as a tab-delimited table.
func WriteMetadata(w io.Writer, rows []Metadata) error {
	writer := keylog.NewTSVWriter(w)
	if err := writer.Write(MetadataColumns); err != nil {
		return err
	}
	for _, m := range rows {
		record := []string{
			strconv.Itoa(m.ParticipantID),
			m.Layout,
			m.Fingers,
			m.KeyboardType,
			strconv.FormatFloat(m.ErrorRate, 'f', 3, 64),
			strconv.Itoa(m.Age),
			m.Gender,
			courseFlag(m.TypingCourse),
			m.Country,
			m.NativeLanguage,
			m.HoursTyping,
			strconv.FormatFloat(m.AvgWPM, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func courseFlag(taken bool) string {
	if taken {
		return "1"
	}
	return "0"
}

// WriteDataset writes one keystroke log per participant into dir/files and the
// metadata table into dir. It returns the metadata path.
func WriteDataset(ctx context.Context, dir, pattern string, people []Participant, workers int) (string, error) {
	filesDir := filepath.Join(dir, "files")
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create dataset directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, p := range people {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := keylog.Path(filesDir, pattern, p.Metadata.ParticipantID)
			return writeFile(path, func(w io.Writer) error {
				return keylog.Write(w, p.Events)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	rows := make([]Metadata, len(people))
	for i, p := range people {
		rows[i] = p.Metadata
	}
	metaPath := filepath.Join(dir, MetadataFile)
	if err := writeFile(metaPath, func(w io.Writer) error {
		return WriteMetadata(w, rows)
	}); err != nil {
		return "", err
	}
	return metaPath, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	buf := bufio.NewWriter(file)
	if err := write(buf); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := buf.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
