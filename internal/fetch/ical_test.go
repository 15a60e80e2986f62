package fetch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Stoneham Public Library//Events//EN
BEGIN:VEVENT
UID:storytime-weekly
SUMMARY:Preschool Storytime
DESCRIPTION:Stories and songs for ages 3-5.
LOCATION:Children's Room
DTSTART:20260903T140000Z
DTEND:20260903T150000Z
RRULE:FREQ=WEEKLY
END:VEVENT
BEGIN:VEVENT
UID:book-sale-2026
SUMMARY:Friends of the Library Book Sale
DTSTART:20260912T130000Z
END:VEVENT
BEGIN:VEVENT
UID:old-lecture
SUMMARY:History Lecture
DTSTART:20250101T190000Z
DTEND:20250101T200000Z
END:VEVENT
END:VCALENDAR`

func fixedNow() time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
}

func TestICalRecurrenceExpansion(t *testing.T) {
	f := NewICal(testProxy(t, sampleICS))
	f.now = fixedNow

	events := f.Fetch(context.Background(), testSource("icalendar"))

	var occurrences int
	for _, evt := range events {
		if evt.Title == "Preschool Storytime" {
			occurrences++
			if evt.StartDate.Weekday() != time.Thursday {
				t.Errorf("weekly rule should stay on Thursday, got %v", evt.StartDate)
			}
			if got := evt.EndDate.Sub(evt.StartDate); got != time.Hour {
				t.Errorf("occurrence should carry the declared duration, got %v", got)
			}
		}
	}

	// ~6 months of weekly occurrences, well under the cap.
	if occurrences < 20 || occurrences > 30 {
		t.Errorf("expected roughly 26 weekly occurrences, got %d", occurrences)
	}
}

func TestICalRecurrenceCapAndHorizon(t *testing.T) {
	hourly := strings.Replace(sampleICS, "RRULE:FREQ=WEEKLY", "RRULE:FREQ=HOURLY", 1)
	f := NewICal(testProxy(t, hourly))
	f.now = fixedNow

	events := f.Fetch(context.Background(), testSource("icalendar"))

	horizon := fixedNow().Add(recurrenceHorizon)
	var occurrences int
	for _, evt := range events {
		if evt.Title != "Preschool Storytime" {
			continue
		}
		occurrences++
		if evt.StartDate.After(horizon) {
			t.Errorf("occurrence past the horizon: %v", evt.StartDate)
		}
	}

	if occurrences > maxOccurrences {
		t.Errorf("expansion exceeded cap: %d > %d", occurrences, maxOccurrences)
	}
	if occurrences != maxOccurrences {
		t.Errorf("hourly rule should hit the cap exactly, got %d", occurrences)
	}
}

func TestICalSecondlyRuleStopsAtCap(t *testing.T) {
	// A sub-minute frequency over the six-month horizon describes millions
	// of instants; expansion must stop at the cap without walking them all.
	secondly := strings.Replace(sampleICS, "RRULE:FREQ=WEEKLY", "RRULE:FREQ=SECONDLY", 1)
	f := NewICal(testProxy(t, secondly))
	f.now = fixedNow

	done := make(chan []event.Event, 1)
	go func() {
		done <- f.Fetch(context.Background(), testSource("icalendar"))
	}()

	var events []event.Event
	select {
	case events = <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("secondly rule expansion did not finish promptly")
	}

	var occurrences int
	for _, evt := range events {
		if evt.Title == "Preschool Storytime" {
			occurrences++
		}
	}
	if occurrences != maxOccurrences {
		t.Errorf("expected expansion capped at %d, got %d", maxOccurrences, occurrences)
	}
}

func TestICalInstanceIDsDistinctAndStable(t *testing.T) {
	f := NewICal(testProxy(t, sampleICS))
	f.now = fixedNow

	first := f.Fetch(context.Background(), testSource("icalendar"))
	second := f.Fetch(context.Background(), testSource("icalendar"))

	seen := make(map[string]bool)
	for _, evt := range first {
		if seen[evt.ID] {
			t.Errorf("duplicate ID %s", evt.ID)
		}
		seen[evt.ID] = true
	}
	for _, evt := range second {
		if !seen[evt.ID] {
			t.Errorf("ID %s not stable across fetches", evt.ID)
		}
	}
}

func TestICalSingleEventFutureOnly(t *testing.T) {
	f := NewICal(testProxy(t, sampleICS))
	f.now = fixedNow

	events := f.Fetch(context.Background(), testSource("icalendar"))

	var sawBookSale bool
	for _, evt := range events {
		switch evt.Title {
		case "Friends of the Library Book Sale":
			sawBookSale = true
			// No DTEND: default duration synthesized.
			if got := evt.EndDate.Sub(evt.StartDate); got != time.Hour {
				t.Errorf("expected 1h default duration, got %v", got)
			}
		case "History Lecture":
			t.Error("past single event should be excluded")
		}
	}
	if !sawBookSale {
		t.Error("future single event missing")
	}
}

func TestICalParseFailure(t *testing.T) {
	f := NewICal(testProxy(t, "not an ics payload"))
	f.now = fixedNow

	if events := f.Fetch(context.Background(), testSource("icalendar")); len(events) != 0 {
		t.Errorf("whole-feed parse failure should yield empty result, got %d", len(events))
	}
}

func TestICalRateLimited(t *testing.T) {
	f := NewICal(rateLimitedProxy(t))
	if events := f.Fetch(context.Background(), testSource("icalendar")); events != nil {
		t.Errorf("rate limiting should yield empty result, got %v", events)
	}
}
