package search

// Segment is a run of text that is either matched or not.
type Segment struct {
	Text    string
	Matched bool
}

// Highlight splits text into alternating matched and unmatched segments.
// Ranges may overlap, be unsorted or run past the end of text.
func Highlight(text string, ranges []Range) []Segment {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	marked := make([]bool, len(runes))
	for _, r := range ranges {
		for i := max(0, r.Start); i < min(len(runes), r.End); i++ {
			marked[i] = true
		}
	}

	var out []Segment
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i == len(runes) || marked[i] != marked[start] {
			out = append(out, Segment{Text: string(runes[start:i]), Matched: marked[start]})
			start = i
		}
	}
	return out
}
