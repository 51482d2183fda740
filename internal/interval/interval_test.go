package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var day = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func span(h1, m1, h2, m2 int) Span {
	return Span{Start: at(h1, m1), End: at(h2, m2)}
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.Empty(t, Merge([]Span{}))
}

func TestMerge_OverlappingAndTouching(t *testing.T) {
	got := Merge([]Span{
		span(13, 0, 14, 0),
		span(9, 0, 11, 0),
		span(10, 30, 12, 0),
		span(12, 0, 13, 0), // touches previous, must join
	})
	assert.Equal(t, []Span{span(9, 0, 14, 0)}, got)
}

func TestMerge_DisjointStaySorted(t *testing.T) {
	got := Merge([]Span{span(15, 0, 16, 0), span(9, 0, 10, 0)})
	assert.Equal(t, []Span{span(9, 0, 10, 0), span(15, 0, 16, 0)}, got)
}

func TestMerge_DropsZeroDuration(t *testing.T) {
	got := Merge([]Span{span(9, 0, 9, 0), span(10, 0, 11, 0)})
	assert.Equal(t, []Span{span(10, 0, 11, 0)}, got)
}

func TestSubtract_FullCoverDropsWindow(t *testing.T) {
	got := Subtract([]Span{span(10, 0, 11, 0)}, []Span{span(9, 0, 12, 0)})
	assert.Empty(t, got)
}

func TestSubtract_DisjointNoChange(t *testing.T) {
	open := []Span{span(9, 0, 12, 0)}
	got := Subtract(open, []Span{span(13, 0, 14, 0)})
	assert.Equal(t, open, got)
}

func TestSubtract_PunchesHole(t *testing.T) {
	got := Subtract([]Span{span(9, 0, 18, 0)}, []Span{span(10, 0, 11, 0)})
	assert.Equal(t, []Span{span(9, 0, 10, 0), span(11, 0, 18, 0)}, got)
}

func TestSubtract_EdgeOverlapShrinks(t *testing.T) {
	got := Subtract([]Span{span(9, 0, 12, 0)}, []Span{span(8, 0, 10, 0)})
	assert.Equal(t, []Span{span(10, 0, 12, 0)}, got)

	got = Subtract([]Span{span(9, 0, 12, 0)}, []Span{span(11, 0, 13, 0)})
	assert.Equal(t, []Span{span(9, 0, 11, 0)}, got)
}

// Removing spans one at a time yields the same result in any order.
func TestSubtract_OrderIndependent(t *testing.T) {
	open := []Span{span(9, 0, 18, 0)}
	busy := []Span{span(10, 0, 11, 0), span(14, 0, 15, 30), span(16, 0, 17, 0)}

	forward := Subtract(open, busy)
	reversed := Subtract(open, []Span{busy[2], busy[1], busy[0]})
	oneAtATime := open
	for _, b := range busy {
		oneAtATime = Subtract(oneAtATime, []Span{b})
	}

	assert.Equal(t, forward, reversed)
	assert.Equal(t, forward, oneAtATime)
}

// Re-merging already merged, already subtracted output changes nothing.
func TestMergeSubtract_Idempotent(t *testing.T) {
	open := Merge([]Span{span(9, 0, 13, 0), span(12, 0, 18, 0)})
	busy := []Span{span(10, 0, 11, 0)}

	once := Merge(Subtract(open, busy))
	twice := Merge(Subtract(once, busy))
	assert.Equal(t, once, twice)
}

func TestClip(t *testing.T) {
	bounds := span(9, 0, 18, 0)

	got, ok := Clip(span(8, 0, 10, 0), bounds)
	assert.True(t, ok)
	assert.Equal(t, span(9, 0, 10, 0), got)

	got, ok = Clip(span(17, 0, 20, 0), bounds)
	assert.True(t, ok)
	assert.Equal(t, span(17, 0, 18, 0), got)

	_, ok = Clip(span(19, 0, 20, 0), bounds)
	assert.False(t, ok)

	_, ok = Clip(span(8, 0, 9, 0), bounds)
	assert.False(t, ok)
}
