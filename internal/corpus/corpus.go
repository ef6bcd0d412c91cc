// Package corpus loads the sentences used to generate synthetic keystroke logs.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

var defaultSentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"Please call me back when you get this message.",
	"We will meet at the station at half past nine.",
	"She sells sea shells by the sea shore.",
	"Do not forget to bring your umbrella tomorrow.",
	"The meeting has been moved to next Tuesday.",
	"I think the results look very promising.",
	"Can you send me the report before lunch?",
	"It's been a long day, let's go home.",
	"Our new office is close to the river.",
	"Remember to water the plants twice a week.",
	"He bought 3 apples and 12 oranges.",
}

// Default returns the built-in sentences.
func Default() []string {
	return append([]string(nil), defaultSentences...)
}

// LoadLines reads one sentence per line from the provided file path.
func LoadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only corpus.
			_ = cerr
		}
	}()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("corpus is empty")
	}
	return lines, nil
}
