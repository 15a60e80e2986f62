package event

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDuration is synthesized when a source gives no end time.
const DefaultDuration = 2 * time.Hour

// dateFormats are tried in order by ParseDate. Feeds around town publish
// dates in most of these at one point or another.
var dateFormats = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"Monday, January 2, 2006",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
}

// yearlessFormats are tried last; the current year is assumed, rolling to
// next year if the resulting date has already passed.
var yearlessFormats = []string{
	"January 2",
	"Jan 2",
}

// ParseDate attempts to parse free-text date text into a time.Time.
// Returns the zero time if nothing matches.
func ParseDate(text string) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, text); err == nil {
			return t
		}
	}

	now := time.Now()
	for _, format := range yearlessFormats {
		if t, err := time.Parse(format, text); err == nil {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if t.Before(now) {
				t = t.AddDate(1, 0, 0)
			}
			return t
		}
	}

	return time.Time{}
}

// timeRangePattern matches "7:00 PM - 9:00 PM" style ranges, tolerating
// missing minutes, en dashes, and the word "to" as a separator.
var timeRangePattern = regexp.MustCompile(
	`(?i)(\d{1,2})(?::(\d{2}))?\s*(AM|PM)?\s*(?:-|–|—|to)\s*(\d{1,2})(?::(\d{2}))?\s*(AM|PM)`)

// TimeRange is a clock-time interval extracted from free text.
type TimeRange struct {
	StartHour, StartMinute int
	EndHour, EndMinute     int
}

// ParseTimeRange extracts the first time range from text. The second return
// is false when no range is present.
func ParseTimeRange(text string) (TimeRange, bool) {
	m := timeRangePattern.FindStringSubmatch(text)
	if m == nil {
		return TimeRange{}, false
	}

	endMeridiem := strings.ToUpper(m[6])
	startMeridiem := strings.ToUpper(m[3])
	if startMeridiem == "" {
		// "6 - 8 PM" means both times share the meridiem.
		startMeridiem = endMeridiem
	}

	var tr TimeRange
	tr.StartHour = toHour24(atoi(m[1]), startMeridiem)
	tr.StartMinute = atoi(m[2])
	tr.EndHour = toHour24(atoi(m[4]), endMeridiem)
	tr.EndMinute = atoi(m[5])
	return tr, true
}

// Apply anchors the range on the given calendar date, returning start and
// end timestamps. An end at or before the start is pushed to the next day.
func (tr TimeRange) Apply(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(),
		tr.StartHour, tr.StartMinute, 0, 0, date.Location())
	end := time.Date(date.Year(), date.Month(), date.Day(),
		tr.EndHour, tr.EndMinute, 0, 0, date.Location())
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return start, end
}

func toHour24(hour int, meridiem string) int {
	switch meridiem {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
