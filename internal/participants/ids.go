// Package participants reads eligible participant IDs and filters study metadata.
package participants

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/keydyn/internal/keylog"
)

// ColParticipantID names the participant identifier column.
const ColParticipantID = "PARTICIPANT_ID"

// IDList is the outcome of reading a participant file.
type IDList struct {
	IDs []int
	// Malformed counts rows whose PARTICIPANT_ID is not an integer.
	Malformed int
}

// ReadIDsFile reads participant IDs from a tab-delimited file.
func ReadIDsFile(path string) (IDList, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return IDList{}, fmt.Errorf("%w: %s", keylog.ErrMissingFile, path)
		}
		return IDList{}, fmt.Errorf("open participants file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only file.
			_ = cerr
		}
	}()
	return ReadIDs(file, path)
}

// ReadIDs reads the PARTICIPANT_ID column; every other column is ignored.
func ReadIDs(r io.Reader, name string) (IDList, error) {
	reader := keylog.NewTSVReader(r)
	header, err := reader.Read()
	if err != nil {
		return IDList{}, fmt.Errorf("read header of %s: %w", name, err)
	}
	idx, err := keylog.NewHeader(header).Require(name, ColParticipantID)
	if err != nil {
		return IDList{}, err
	}
	col := idx[0]

	var list IDList
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return IDList{}, fmt.Errorf("read %s: %w", name, err)
		}
		if len(row) <= col {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[col]))
		if err != nil {
			list.Malformed++
			continue
		}
		list.IDs = append(list.IDs, id)
	}
	return list, nil
}
