// Package stats contains statistics calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/keydyn/internal/model"
	"github.com/verte-zerg/keydyn/internal/store"
)

const (
	defaultTopN        = 5
	defaultSlowMin     = 3
	histogramBuckets   = 24
	defaultReportWidth = 80
)

// Section holds the measurements of one kind.
type Section struct {
	Aggregates []model.TokenAggregate
	Values     []int64
	Summary    Summary
}

// Report contains precomputed data for summary rendering.
type Report struct {
	Run       model.RunInfo
	Bigrams   Section
	Words     Section
	Sentences Section
}

// BuildReport loads a stored run. An empty runID selects the latest run.
func BuildReport(ctx context.Context, st *store.Store, runID string) (Report, error) {
	var (
		info model.RunInfo
		err  error
	)
	if runID == "" {
		info, err = st.LatestRun(ctx)
	} else {
		info, err = st.GetRun(ctx, runID)
	}
	if err != nil {
		return Report{}, err
	}

	report := Report{Run: info}
	for _, target := range []struct {
		kind    store.Kind
		section *Section
	}{
		{store.KindBigram, &report.Bigrams},
		{store.KindWord, &report.Words},
		{store.KindSentence, &report.Sentences},
	} {
		aggs, err := st.TokenAggregates(ctx, info.ID, target.kind)
		if err != nil {
			return Report{}, fmt.Errorf("failed to load %s aggregates: %w", target.kind, err)
		}
		values, err := st.Intervals(ctx, info.ID, target.kind)
		if err != nil {
			return Report{}, fmt.Errorf("failed to load %s intervals: %w", target.kind, err)
		}
		*target.section = Section{Aggregates: aggs, Values: values, Summary: Summarize(values)}
	}
	return report, nil
}

// FromRecords builds a report from in-memory measurements.
func FromRecords(info model.RunInfo, bigrams []model.BigramRecord, words []model.WordRecord, sentences []model.SentenceRecord) Report {
	bt := make([]string, len(bigrams))
	bv := make([]int64, len(bigrams))
	for i, b := range bigrams {
		bt[i], bv[i] = b.Bigram, b.IntervalMs
	}
	wt := make([]string, len(words))
	wv := make([]int64, len(words))
	for i, w := range words {
		wt[i], wv[i] = w.Word, w.DurationMs
	}
	st := make([]string, len(sentences))
	sv := make([]int64, len(sentences))
	for i, s := range sentences {
		st[i], sv[i] = s.Text, s.DurationMs
	}
	return Report{
		Run:       info,
		Bigrams:   Section{Aggregates: Aggregate(bt, bv), Values: bv, Summary: Summarize(bv)},
		Words:     Section{Aggregates: Aggregate(wt, wv), Values: wv, Summary: Summarize(wv)},
		Sentences: Section{Aggregates: Aggregate(st, sv), Values: sv, Summary: Summarize(sv)},
	}
}

// RenderOptions controls report output.
type RenderOptions struct {
	TopN  int
	Color bool
	Width int
	// Distribution adds a sparkline of the bigram interval histogram.
	Distribution bool
}

// RenderReport writes the summary of the report to w.
func RenderReport(w io.Writer, report Report, opts RenderOptions) error {
	topN := opts.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	width := opts.Width
	if width <= 0 {
		width = defaultReportWidth
	}
	heading := headingFunc(opts.Color)
	bounds := fmt.Sprintf("%d-%dms", report.Run.Bounds.MinMs, report.Run.Bounds.MaxMs)

	var lines []string
	if s := report.Bigrams; s.Summary.Count > 0 {
		lines = append(lines, "", heading(fmt.Sprintf("Correct Bigram Statistics (%s):", bounds)))
		lines = append(lines,
			fmt.Sprintf("  Unique bigrams: %d", len(s.Aggregates)),
			fmt.Sprintf("  Mean interval: %.1f ms", s.Summary.Mean),
			fmt.Sprintf("  Min interval: %d ms", s.Summary.Min),
			fmt.Sprintf("  Max interval: %d ms", s.Summary.Max),
			"  Most common bigrams:",
		)
		lines = append(lines, indent(tokenTable("Bigram", TopByFrequency(s.Aggregates, topN)), "    ")...)
		if slow := SlowestTokens(s.Aggregates, topN, defaultSlowMin); len(slow) > 0 {
			lines = append(lines, fmt.Sprintf("  Slowest bigrams (at least %d samples):", defaultSlowMin))
			lines = append(lines, indent(tokenTable("Bigram", slow), "    ")...)
		}
		if opts.Distribution {
			buckets := histogramBuckets
			if limit := width - 4; limit > 0 && buckets > limit {
				buckets = limit
			}
			lines = append(lines,
				"  Interval distribution:",
				fmt.Sprintf("    %d |%s| %d ms", s.Summary.Min, Sparkline(Histogram(s.Values, buckets)), s.Summary.Max),
			)
		}
	}
	if s := report.Sentences; s.Summary.Count > 0 {
		lines = append(lines, "", heading("Correct Sentence Timing Statistics:"))
		lines = append(lines,
			fmt.Sprintf("  Mean sentence time: %.1f ms", s.Summary.Mean),
			fmt.Sprintf("  Min sentence time: %d ms", s.Summary.Min),
			fmt.Sprintf("  Max sentence time: %d ms", s.Summary.Max),
		)
	}
	if s := report.Words; s.Summary.Count > 0 {
		lines = append(lines, "", heading(fmt.Sprintf("Correct Multi-Letter Word Timing Statistics (%s):", bounds)))
		lines = append(lines,
			fmt.Sprintf("  Unique words: %d", len(s.Aggregates)),
			fmt.Sprintf("  Mean word time: %.1f ms", s.Summary.Mean),
			fmt.Sprintf("  Min word time: %d ms", s.Summary.Min),
			fmt.Sprintf("  Max word time: %d ms", s.Summary.Max),
			"  Most common words:",
		)
		lines = append(lines, indent(tokenTable("Word", TopByFrequency(s.Aggregates, topN)), "    ")...)
	}
	if len(lines) == 0 {
		lines = append(lines, "No correct measurements.")
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

func headingFunc(color bool) func(string) string {
	if !color {
		return func(s string) string { return s }
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	return func(s string) string { return style.Render(s) }
}

func tokenTable(label string, aggs []model.TokenAggregate) []string {
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			TokenLabel(agg.Token),
			strconv.Itoa(agg.Count),
			fmt.Sprintf("%.1f", agg.MeanMs()),
		})
	}
	return formatTable([]string{label, "Count", "Mean ms"}, rows, map[int]bool{1: true, 2: true})
}

func indent(lines []string, prefix string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = prefix + line
	}
	return out
}
