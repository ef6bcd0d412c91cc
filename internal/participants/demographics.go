package participants

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/keydyn/internal/keylog"
	"github.com/verte-zerg/keydyn/internal/model"
)

// Metadata columns used by Demographics.
const (
	ColAge            = "AGE"
	ColGender         = "GENDER"
	ColTypingCourse   = "HAS_TAKEN_TYPING_COURSE"
	ColCountry        = "COUNTRY"
	ColNativeLanguage = "NATIVE_LANGUAGE"
	ColTimeSpent      = "TIME_SPENT_TYPING"
	ColAvgWPM         = "AVG_WPM_15"
)

// DemographicColumns lists the columns Demographics requires.
var DemographicColumns = []string{
	ColAge, ColGender, ColTypingCourse, ColCountry, ColNativeLanguage, ColTimeSpent, ColAvgWPM,
}

// nonNumericHours places non-numeric TIME_SPENT_TYPING values after the others.
const nonNumericHours = 999

// ReadDemographics summarizes a tab-delimited metadata table such as the
// output of Filter. A missing demographic column yields keylog.ErrMissingColumn.
func ReadDemographics(r io.Reader) (model.Demographics, error) {
	reader := keylog.NewTSVReader(r)
	header, err := reader.Read()
	if err != nil {
		return model.Demographics{}, fmt.Errorf("read metadata header: %w", err)
	}
	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Demographics{}, fmt.Errorf("read metadata: %w", err)
		}
		rows = append(rows, row)
	}
	return Demographics(header, rows)
}

// Demographics tallies age, gender, training, country, language, typing time
// and speed over rows. Unparseable ages and speeds are left out of their
// samples; rows too short for a column are left out of that column's counts.
func Demographics(header []string, rows [][]string) (model.Demographics, error) {
	idx, err := keylog.NewHeader(header).Require("", DemographicColumns...)
	if err != nil {
		return model.Demographics{}, err
	}
	ageIdx, genderIdx, courseIdx, countryIdx, languageIdx, timeIdx, wpmIdx :=
		idx[0], idx[1], idx[2], idx[3], idx[4], idx[5], idx[6]

	d := model.Demographics{Participants: len(rows)}
	genders := newTally()
	countries := newTally()
	languages := newTally()
	hours := newTally()
	for _, row := range rows {
		if v, ok := field(row, ageIdx); ok {
			if age, err := strconv.ParseInt(v, 10, 64); err == nil {
				d.Ages = append(d.Ages, age)
			}
		}
		if v, ok := field(row, wpmIdx); ok {
			if wpm, err := strconv.ParseFloat(v, 64); err == nil {
				d.WPMs = append(d.WPMs, wpm)
			}
		}
		if v, ok := field(row, genderIdx); ok {
			genders.add(v)
		}
		if v, ok := field(row, courseIdx); ok {
			switch v {
			case "1":
				d.Trained++
			case "0":
				d.Untrained++
			}
		}
		if v, ok := field(row, countryIdx); ok {
			countries.add(v)
		}
		if v, ok := field(row, languageIdx); ok {
			languages.add(v)
		}
		if v, ok := field(row, timeIdx); ok {
			hours.add(v)
		}
	}

	d.Genders = genders.mostCommon()
	d.Countries = countries.mostCommon()
	d.Languages = languages.mostCommon()
	d.TimeSpent = hours.counts
	sort.SliceStable(d.TimeSpent, func(a, b int) bool {
		return hoursKey(d.TimeSpent[a].Value) < hoursKey(d.TimeSpent[b].Value)
	})
	return d, nil
}

func field(row []string, idx int) (string, bool) {
	if idx >= len(row) {
		return "", false
	}
	return strings.TrimSpace(row[idx]), true
}

func hoursKey(v string) int {
	if v == "" || strings.Trim(v, "0123456789") != "" {
		return nonNumericHours
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nonNumericHours
	}
	return n
}

type tally struct {
	index  map[string]int
	counts []model.CategoryCount
}

func newTally() *tally {
	return &tally{index: map[string]int{}}
}

func (t *tally) add(v string) {
	i, ok := t.index[v]
	if !ok {
		t.index[v] = len(t.counts)
		t.counts = append(t.counts, model.CategoryCount{Value: v, Count: 1})
		return
	}
	t.counts[i].Count++
}

func (t *tally) mostCommon() []model.CategoryCount {
	out := append([]model.CategoryCount(nil), t.counts...)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	return out
}
