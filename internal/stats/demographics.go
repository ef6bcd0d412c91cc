package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/keydyn/internal/model"
)

const demographicsTopN = 5

// RenderDemographics writes the participant summary printed after filtering.
func RenderDemographics(w io.Writer, d model.Demographics, color bool) error {
	heading := headingFunc(color)
	share := func(n int) string {
		if d.Participants == 0 {
			return "0.0%"
		}
		return fmt.Sprintf("%.1f%%", float64(n)/float64(d.Participants)*100)
	}
	categoryTable := func(label string, counts []model.CategoryCount, format func(string) string) []string {
		rows := make([][]string, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, []string{format(c.Value), strconv.Itoa(c.Count), share(c.Count)})
		}
		return indent(formatTable([]string{label, "Count", "Share"}, rows, map[int]bool{1: true, 2: true}), "  ")
	}
	plain := func(v string) string {
		if v == "" {
			return "(blank)"
		}
		return v
	}
	topTable := func(label, plural string, counts []model.CategoryCount) []string {
		lines := categoryTable(label, TopByCount(counts, demographicsTopN), plain)
		if rest := len(counts) - demographicsTopN; rest > 0 {
			lines = append(lines, fmt.Sprintf("  ... and %d other %s", rest, plural))
		}
		return lines
	}

	rule := strings.Repeat("=", 60)
	lines := []string{
		"",
		heading(fmt.Sprintf("Filtered Participants Statistics (%d participants):", d.Participants)),
		rule,
	}
	if age := Summarize(d.Ages); age.Count > 0 {
		lines = append(lines,
			"Age Distribution:",
			fmt.Sprintf("  Mean: %.1f years", age.Mean),
			fmt.Sprintf("  Range: %d - %d years", age.Min, age.Max),
			fmt.Sprintf("  Std Dev: %.1f", age.StdDev),
		)
	}
	lines = append(lines, "", "Gender Distribution:")
	lines = append(lines, categoryTable("Gender", d.Genders, plain)...)
	lines = append(lines,
		"",
		"Typing Course Training:",
		fmt.Sprintf("  Trained: %d (%s)", d.Trained, share(d.Trained)),
		fmt.Sprintf("  Untrained: %d (%s)", d.Untrained, share(d.Untrained)),
	)
	lines = append(lines, "", "Country Distribution:")
	lines = append(lines, topTable("Country", "countries", d.Countries)...)
	lines = append(lines, "", "Native Language Distribution:")
	lines = append(lines, topTable("Language", "languages", d.Languages)...)
	lines = append(lines, "", "Time Spent Typing Distribution:")
	lines = append(lines, categoryTable("Hours/day", d.TimeSpent, plain)...)
	if wpm := SummarizeFloat(d.WPMs); wpm.Count > 0 {
		lines = append(lines,
			"",
			"Typing Speed (WPM) Analysis:",
			fmt.Sprintf("  Mean: %.1f WPM", wpm.Mean),
			fmt.Sprintf("  Range: %.1f - %.1f WPM", wpm.Min, wpm.Max),
			fmt.Sprintf("  Std Dev: %.1f", wpm.StdDev),
		)
	}
	lines = append(lines, rule)

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
