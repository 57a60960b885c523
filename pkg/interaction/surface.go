// Package interaction tracks which bubble the pointer is over and where its
// tooltip goes.
package interaction

import (
	"github.com/vanderheijden86/bubblecap/pkg/layout"
)

// State is the hover state.
type State int

const (
	// Idle means no bubble is hovered.
	Idle State = iota
	// Hovering means the pointer is over a bubble.
	Hovering
)

func (s State) String() string {
	if s == Hovering {
		return "hovering"
	}
	return "idle"
}

// Change describes what a Track call did.
type Change int

const (
	NoChange Change = iota
	Entered
	Retargeted
	Moved
	Left
)

// Surface is the hover state machine. Hosts with per-shape pointer events
// call Enter, Move and Leave; hosts that only have raw pointer samples call
// Track with the result of a hit test.
type Surface struct {
	state   State
	node    layout.Node
	pointer layout.Point
}

// State returns the current state.
func (s *Surface) State() State { return s.state }

// Hovered returns the hovered node.
func (s *Surface) Hovered() (layout.Node, bool) {
	if s.state != Hovering {
		return layout.Node{}, false
	}
	return s.node, true
}

// Pointer returns the last pointer position while hovering.
func (s *Surface) Pointer() (layout.Point, bool) {
	if s.state != Hovering {
		return layout.Point{}, false
	}
	return s.pointer, true
}

// Enter starts hovering n with the pointer at p. Entering another node
// while hovering retargets.
func (s *Surface) Enter(n layout.Node, p layout.Point) {
	s.state = Hovering
	s.node = n
	s.pointer = p
}

// Move updates the tooltip anchor. It is ignored while Idle.
func (s *Surface) Move(p layout.Point) {
	if s.state == Hovering {
		s.pointer = p
	}
}

// Leave returns to Idle and drops the hovered node.
func (s *Surface) Leave() {
	s.state = Idle
	s.node = layout.Node{}
	s.pointer = layout.Point{}
}

// Track feeds one pointer sample. hit is the node under the pointer, or
// nil.
func (s *Surface) Track(hit *layout.Node, p layout.Point) Change {
	switch {
	case hit == nil && s.state == Idle:
		return NoChange
	case hit == nil:
		s.Leave()
		return Left
	case s.state == Idle:
		s.Enter(*hit, p)
		return Entered
	case hit.ID != s.node.ID:
		s.Enter(*hit, p)
		return Retargeted
	default:
		s.Move(p)
		return Moved
	}
}

// Reset drops hover state, e.g. after a relayout replaced every node.
func (s *Surface) Reset() { s.Leave() }
