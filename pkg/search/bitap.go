package search

import "math"

// maxBits is the widest pattern a single bitap pass can handle.
const maxBits = 32

// Range is a half-open rune interval [Start, End) of a matched field.
type Range struct {
	Start int
	End   int
}

// bitapOptions tune a single approximate match.
type bitapOptions struct {
	location  int
	distance  int
	threshold float64
}

// fieldResult is the outcome of matching one pattern against one field.
type fieldResult struct {
	isMatch bool
	score   float64
	ranges  []Range
}

type chunk struct {
	pattern  []rune
	alphabet map[rune]uint32
	start    int
}

// matcher holds a lowercased pattern pre-split into bitap-sized chunks.
type matcher struct {
	pattern []rune
	chunks  []chunk
	opts    bitapOptions
}

func newMatcher(pattern []rune, opts bitapOptions) *matcher {
	m := &matcher{pattern: pattern, opts: opts}
	if len(pattern) == 0 {
		return m
	}

	add := func(p []rune, start int) {
		m.chunks = append(m.chunks, chunk{pattern: p, alphabet: patternAlphabet(p), start: start})
	}
	n := len(pattern)
	if n <= maxBits {
		add(pattern, 0)
		return m
	}
	rem := n % maxBits
	end := n - rem
	for i := 0; i < end; i += maxBits {
		add(pattern[i:i+maxBits], i)
	}
	if rem > 0 {
		start := n - maxBits
		add(pattern[start:], start)
	}
	return m
}

func patternAlphabet(p []rune) map[rune]uint32 {
	mask := make(map[rune]uint32, len(p))
	for i, r := range p {
		mask[r] |= 1 << uint(len(p)-i-1)
	}
	return mask
}

// match scores a lowercased field against the pattern. An exact match of
// the whole field scores 0; every other hit scores at least 0.001.
func (m *matcher) match(text []rune) fieldResult {
	if len(m.chunks) == 0 {
		return fieldResult{score: 1}
	}
	if runesEqual(m.pattern, text) {
		return fieldResult{isMatch: true, score: 0, ranges: []Range{{0, len(text)}}}
	}

	var (
		total  float64
		hit    bool
		ranges []Range
	)
	for _, c := range m.chunks {
		opts := m.opts
		opts.location += c.start
		r := bitap(text, c.pattern, c.alphabet, opts)
		total += r.score
		if r.isMatch {
			hit = true
		}
		ranges = append(ranges, r.ranges...)
	}
	if !hit {
		return fieldResult{score: 1}
	}
	return fieldResult{isMatch: true, score: total / float64(len(m.chunks)), ranges: ranges}
}

func computeScore(patternLen, errors, current, expected, distance int) float64 {
	accuracy := float64(errors) / float64(patternLen)
	proximity := current - expected
	if proximity < 0 {
		proximity = -proximity
	}
	if distance == 0 {
		if proximity != 0 {
			return 1
		}
		return accuracy
	}
	return accuracy + float64(proximity)/float64(distance)
}

// bitap runs the shift-or approximate matcher with error counts up to the
// pattern length, keeping the best location under the current threshold.
func bitap(text, pattern []rune, alphabet map[rune]uint32, opts bitapOptions) fieldResult {
	patternLen := len(pattern)
	textLen := len(text)
	expected := max(0, min(opts.location, textLen))
	threshold := opts.threshold
	best := expected

	matchMask := make([]bool, textLen)

	// Exact occurrences tighten the threshold before the fuzzy scan.
	for {
		idx := indexRunes(text, pattern, best)
		if idx < 0 {
			break
		}
		s := computeScore(patternLen, 0, idx, expected, opts.distance)
		threshold = math.Min(s, threshold)
		best = idx + patternLen
		for i := 0; i < patternLen; i++ {
			matchMask[idx+i] = true
		}
	}

	best = -1
	var lastBits []uint32
	finalScore := 1.0
	binMax := patternLen + textLen
	mask := uint32(1) << uint(patternLen-1)

	for i := 0; i < patternLen; i++ {
		binMin, binMid := 0, binMax
		for binMin < binMid {
			s := computeScore(patternLen, i, expected+binMid, expected, opts.distance)
			if s <= threshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := max(1, expected-binMid+1)
		finish := min(expected+binMid, textLen) + patternLen

		bits := make([]uint32, finish+2)
		bits[finish+1] = (uint32(1) << uint(i)) - 1

		for j := finish; j >= start; j-- {
			loc := j - 1
			var charMatch uint32
			if loc < textLen {
				charMatch = alphabet[text[loc]]
				matchMask[loc] = charMatch != 0
			}

			bits[j] = ((bits[j+1] << 1) | 1) & charMatch
			if i > 0 {
				prev1, prev0 := at(lastBits, j+1), at(lastBits, j)
				bits[j] |= ((prev1 | prev0) << 1) | 1 | prev1
			}

			if bits[j]&mask != 0 {
				finalScore = computeScore(patternLen, i, loc, expected, opts.distance)
				if finalScore <= threshold {
					threshold = finalScore
					best = loc
					if best <= expected {
						break
					}
					start = max(1, 2*expected-best)
				}
			}
		}

		if computeScore(patternLen, i+1, expected, expected, opts.distance) > threshold {
			break
		}
		lastBits = bits
	}

	res := fieldResult{isMatch: best >= 0, score: math.Max(0.001, finalScore)}
	res.ranges = maskToRanges(matchMask)
	if len(res.ranges) == 0 {
		res.isMatch = false
	}
	return res
}

func at(bits []uint32, i int) uint32 {
	if i < 0 || i >= len(bits) {
		return 0
	}
	return bits[i]
}

func maskToRanges(mask []bool) []Range {
	var out []Range
	start := -1
	for i, on := range mask {
		switch {
		case on && start == -1:
			start = i
		case !on && start != -1:
			out = append(out, Range{Start: start, End: i})
			start = -1
		}
	}
	if start != -1 {
		out = append(out, Range{Start: start, End: len(mask)})
	}
	return out
}

func indexRunes(text, pattern []rune, from int) int {
	n := len(pattern)
	for i := max(0, from); i+n <= len(text); i++ {
		if runesEqual(text[i:i+n], pattern) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
