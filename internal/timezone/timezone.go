package timezone

import "time"

const DefaultZone = "UTC"

const DateKeyLayout = "2006-01-02"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves an IANA identifier, falling back to UTC when the
// identifier is empty or unknown.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	loc, _ := time.LoadLocation(DefaultZone)
	return loc
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// DayBounds returns midnight-to-midnight instants for the calendar day that
// contains t in loc. DST days are naturally shorter or longer than 24h.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end
}

// DateKey formats t as a calendar-day key in loc ("2006-01-02").
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// AtMinutes returns dayStart shifted by whole minutes.
func AtMinutes(dayStart time.Time, minutes int) time.Time {
	return dayStart.Add(time.Duration(minutes) * time.Minute)
}
