package search

import (
	"strings"
	"time"
	"unicode"
)

// DefaultDebounce is the quiet period before a typed query is evaluated.
const DefaultDebounce = 300 * time.Millisecond

// DebounceState says what the next text change will do.
type DebounceState int

const (
	// AwaitingDebounce schedules a debounced query on the next text change.
	AwaitingDebounce DebounceState = iota
	// SuppressedByDirectSelection swallows exactly one text change: the echo
	// of a suggestion chosen directly.
	SuppressedByDirectSelection
)

func (s DebounceState) String() string {
	switch s {
	case AwaitingDebounce:
		return "awaiting-debounce"
	case SuppressedByDirectSelection:
		return "suppressed-by-direct-selection"
	default:
		return "unknown"
	}
}

// Effect tells the host what to do after a session call.
type Effect struct {
	// Schedule asks the host to call Fire(Token) after Delay.
	Schedule bool
	Token    uint64
	Delay    time.Duration

	// Commit carries Query to the camera. An empty Query means "no active
	// search".
	Commit bool
	Query  string
}

// Session is the state of one search box. It is not safe for concurrent
// use; hosts drive it from their event loop.
type Session struct {
	index *Index
	delay time.Duration

	text        string
	suggestions []Match
	cursor      int
	token       uint64
	state       DebounceState
}

// NewSession creates a session over idx. A delay <= 0 selects
// DefaultDebounce.
func NewSession(idx *Index, delay time.Duration) *Session {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Session{index: idx, delay: delay, cursor: -1}
}

// SetIndex swaps the index after a dataset reload. Visible suggestions are
// left alone until the next query.
func (s *Session) SetIndex(idx *Index) { s.index = idx }

// Text returns the current input text.
func (s *Session) Text() string { return s.text }

// State returns the debounce state.
func (s *Session) State() DebounceState { return s.state }

// Suggestions returns the visible suggestions.
func (s *Session) Suggestions() []Match { return s.suggestions }

// Cursor returns the keyboard cursor, or false when nothing is selected.
func (s *Session) Cursor() (int, bool) {
	if s.cursor < 0 {
		return 0, false
	}
	return s.cursor, true
}

// Selected returns the suggestion under the cursor.
func (s *Session) Selected() (Match, bool) {
	i, ok := s.Cursor()
	if !ok || i >= len(s.suggestions) {
		return Match{}, false
	}
	return s.suggestions[i], true
}

// SetText records a text change. Any pending debounce is superseded.
// Blank text clears suggestions and commits "" at once; other text asks the
// host to schedule Fire after the debounce delay.
func (s *Session) SetText(text string) Effect {
	if s.state == SuppressedByDirectSelection {
		s.state = AwaitingDebounce
		s.text = text
		return Effect{}
	}
	if text == s.text {
		return Effect{}
	}

	s.token++
	s.text = text
	s.cursor = -1
	if strings.TrimFunc(text, unicode.IsSpace) == "" {
		s.suggestions = nil
		return Effect{Commit: true}
	}
	return Effect{Schedule: true, Token: s.token, Delay: s.delay}
}

// Fire evaluates the query for token. Stale tokens are dropped.
func (s *Session) Fire(token uint64) Effect {
	if token != s.token || strings.TrimFunc(s.text, unicode.IsSpace) == "" {
		return Effect{}
	}
	s.suggestions = s.index.Query(s.text)
	if s.cursor >= len(s.suggestions) {
		s.cursor = -1
	}
	return Effect{Commit: true, Query: s.text}
}

// Down moves the cursor one suggestion down, starting at the first.
func (s *Session) Down() {
	n := len(s.suggestions)
	if n == 0 {
		return
	}
	if s.cursor < 0 {
		s.cursor = 0
		return
	}
	s.cursor = min(n-1, s.cursor+1)
}

// Up moves the cursor one suggestion up, starting at the last.
func (s *Session) Up() {
	n := len(s.suggestions)
	if n == 0 {
		return
	}
	if s.cursor < 0 {
		s.cursor = n - 1
		return
	}
	s.cursor = max(0, s.cursor-1)
}

// Confirm selects the suggestion under the cursor. It does nothing when no
// suggestion is selected.
func (s *Session) Confirm() Effect {
	i, ok := s.Cursor()
	if !ok {
		return Effect{}
	}
	return s.Select(i)
}

// Select applies suggestion i directly, bypassing the debounce. The text
// becomes the company's display name and the suggestion list closes. The
// host then echoes the new text through SetText; that one change is
// swallowed.
func (s *Session) Select(i int) Effect {
	if i < 0 || i >= len(s.suggestions) {
		return Effect{}
	}
	name := s.suggestions[i].Record.Name
	s.token++
	s.state = SuppressedByDirectSelection
	s.text = name
	s.suggestions = nil
	s.cursor = -1
	return Effect{Commit: true, Query: name}
}
