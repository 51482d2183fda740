package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation_FallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Location(""))
	assert.Equal(t, time.UTC, Location("Mars/Olympus_Mons"))
	assert.Equal(t, "America/New_York", Location("America/New_York").String())
}

func TestDayBounds(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 03:30 UTC on Sep 15 is still Sep 14 in New York.
	instant := time.Date(2026, 9, 15, 3, 30, 0, 0, time.UTC)
	start, end := DayBounds(instant, loc)

	assert.Equal(t, time.Date(2026, 9, 14, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, loc), end)
	assert.Equal(t, "2026-09-14", DateKey(instant, loc))
}

func TestAtMinutes(t *testing.T) {
	start := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(9*time.Hour+30*time.Minute), AtMinutes(start, 570))
}
