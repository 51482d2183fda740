// Package interval implements the half-open time interval algebra the
// scheduling code is built on. Every function is pure and returns results
// sorted by start.
package interval

import (
	"sort"
	"time"
)

// Span is a half-open interval [Start, End).
type Span struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid reports whether the span has positive duration.
func (s Span) Valid() bool {
	return s.End.After(s.Start)
}

func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Overlaps reports whether two half-open spans share any instant.
func (s Span) Overlaps(o Span) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Contains reports whether t falls inside [Start, End).
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Within reports whether s lies entirely inside o.
func (s Span) Within(o Span) bool {
	return !s.Start.Before(o.Start) && !s.End.After(o.End)
}

func sortSpans(spans []Span) {
	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Start.Before(spans[j].Start)
	})
}

// Merge collapses a set of spans into a minimal, sorted, non-overlapping
// set. Touching spans (next start == current end) are joined. Zero-duration
// spans are dropped.
func Merge(spans []Span) []Span {
	in := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Valid() {
			in = append(in, s)
		}
	}
	if len(in) == 0 {
		return nil
	}
	sortSpans(in)

	out := []Span{in[0]}
	for _, s := range in[1:] {
		last := &out[len(out)-1]
		if !s.Start.After(last.End) {
			if s.End.After(last.End) {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// Subtract removes every busy span from the open set. Each overlap leaves
// zero, one, or two remainders: a left piece when the busy span starts after
// the open one, a right piece when it ends before. The removal set is
// order-independent.
func Subtract(open, busy []Span) []Span {
	out := make([]Span, 0, len(open))
	for _, s := range open {
		if s.Valid() {
			out = append(out, s)
		}
	}
	sortSpans(out)

	for _, b := range busy {
		if !b.Valid() {
			continue
		}
		next := make([]Span, 0, len(out)+1)
		for _, o := range out {
			if !o.Overlaps(b) {
				next = append(next, o)
				continue
			}
			if left := (Span{Start: o.Start, End: b.Start}); left.Valid() {
				next = append(next, left)
			}
			if right := (Span{Start: b.End, End: o.End}); right.Valid() {
				next = append(next, right)
			}
		}
		out = next
	}
	return out
}

// Clip intersects s with bounds; ok is false when they are disjoint.
func Clip(s, bounds Span) (Span, bool) {
	if s.Start.Before(bounds.Start) {
		s.Start = bounds.Start
	}
	if s.End.After(bounds.End) {
		s.End = bounds.End
	}
	if !s.Valid() {
		return Span{}, false
	}
	return s, true
}
