// Package selection implements multi-cursor selection state.
//
// A Set holds one or more selections ordered by start position, with one of
// them marked primary. After every mutation no two selections overlap or
// touch; such selections are merged into one covering their union.
package selection

import (
	"sort"

	"github.com/willibrandon/tusk-sub001/pkg/buffer"
)

// Position is a zero-based line/column location.
type Position = buffer.Position

// NoGoal marks a selection without a remembered column.
const NoGoal = -1

// Selection is an anchor/head pair. Anchor == Head is a plain cursor.
type Selection struct {
	Anchor     Position
	Head       Position
	GoalColumn int
}

// Cursor returns an empty selection at p.
func Cursor(p Position) Selection {
	return Selection{Anchor: p, Head: p, GoalColumn: NoGoal}
}

// Range returns a selection from anchor to head.
func Range(anchor, head Position) Selection {
	return Selection{Anchor: anchor, Head: head, GoalColumn: NoGoal}
}

// Start returns the earlier end of the selection.
func (s Selection) Start() Position { return buffer.MinPos(s.Anchor, s.Head) }

// End returns the later end of the selection.
func (s Selection) End() Position { return buffer.MaxPos(s.Anchor, s.Head) }

// IsCursor reports whether the selection is empty.
func (s Selection) IsCursor() bool { return s.Anchor == s.Head }

// Reversed reports whether the head sits before the anchor.
func (s Selection) Reversed() bool { return s.Head.Less(s.Anchor) }

// Collapse returns a cursor at the head.
func (s Selection) Collapse() Selection {
	return Selection{Anchor: s.Head, Head: s.Head, GoalColumn: s.GoalColumn}
}

// Set is a non-empty ordered set of selections with a primary index.
type Set struct {
	sels    []Selection
	primary int
}

// New returns a set holding one cursor at p.
func New(p Position) *Set {
	return &Set{sels: []Selection{Cursor(p)}}
}

// NewFromSelections builds a normalized set. An empty input yields a cursor at the origin.
func NewFromSelections(sels []Selection, primary int) *Set {
	s := &Set{}
	s.Replace(sels, primary)
	return s
}

// All returns a copy of the selections in order.
func (s *Set) All() []Selection {
	out := make([]Selection, len(s.sels))
	copy(out, s.sels)
	return out
}

// Len returns the number of selections.
func (s *Set) Len() int { return len(s.sels) }

// At returns the i-th selection.
func (s *Set) At(i int) Selection { return s.sels[i] }

// Primary returns the primary selection.
func (s *Set) Primary() Selection { return s.sels[s.primary] }

// PrimaryIndex returns the index of the primary selection.
func (s *Set) PrimaryIndex() int { return s.primary }

// SetPrimary marks the i-th selection as primary. Out of range indexes are ignored.
func (s *Set) SetPrimary(i int) {
	if i >= 0 && i < len(s.sels) {
		s.primary = i
	}
}

// Add inserts sel, making it primary, then merges overlapping selections.
func (s *Set) Add(sel Selection) {
	s.sels = append(s.sels, sel)
	s.primary = len(s.sels) - 1
	s.normalize()
}

// Replace swaps the whole set. primary indexes into sels.
func (s *Set) Replace(sels []Selection, primary int) {
	if len(sels) == 0 {
		s.sels = []Selection{Cursor(Position{})}
		s.primary = 0
		return
	}
	s.sels = append(s.sels[:0:0], sels...)
	s.primary = primary
	if s.primary < 0 || s.primary >= len(s.sels) {
		s.primary = 0
	}
	s.normalize()
}

// ClearSecondary drops every selection but the primary.
func (s *Set) ClearSecondary() {
	s.sels = []Selection{s.sels[s.primary]}
	s.primary = 0
}

// normalize sorts by start and merges selections where end >= next start.
// The primary follows whichever selection absorbed it.
func (s *Set) normalize() {
	type entry struct {
		sel     Selection
		primary bool
	}
	entries := make([]entry, len(s.sels))
	for i, sel := range s.sels {
		entries[i] = entry{sel: sel, primary: i == s.primary}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sel.Start().Less(entries[j].sel.Start())
	})

	merged := entries[:1]
	for _, e := range entries[1:] {
		last := &merged[len(merged)-1]
		if last.sel.End().Compare(e.sel.Start()) >= 0 {
			if e.sel.End().Compare(last.sel.End()) > 0 {
				last.sel = Selection{Anchor: last.sel.Start(), Head: e.sel.End(), GoalColumn: NoGoal}
			}
			last.primary = last.primary || e.primary
			continue
		}
		merged = append(merged, e)
	}

	s.sels = s.sels[:0]
	s.primary = 0
	for i, e := range merged {
		s.sels = append(s.sels, e.sel)
		if e.primary {
			s.primary = i
		}
	}
}
