package corpus

// FilterFunc returns true when a sentence should be kept.
type FilterFunc func(string) bool

// ASCIIPrintable keeps sentences made only of printable ASCII characters.
func ASCIIPrintable(sentence string) bool {
	if sentence == "" {
		return false
	}
	for i := 0; i < len(sentence); i++ {
		ch := sentence[i]
		if ch < ' ' || ch > '~' {
			return false
		}
	}
	return true
}

// Filter returns the sentences accepted by keep.
func Filter(sentences []string, keep FilterFunc) []string {
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
