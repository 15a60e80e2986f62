package fetch

import (
	"context"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

// Manual serves a small in-memory event list: town staples that never make
// it into any feed. The list is process-lifetime data; Fetch filters it to
// future events and stamps the source metadata.
type Manual struct {
	events []event.Event
	now    func() time.Time
}

// NewManual creates a manual fetcher over the given list.
func NewManual(events []event.Event) *Manual {
	return &Manual{events: events, now: time.Now}
}

// Fetch returns the future subset of the static list, normalized under src.
func (m *Manual) Fetch(_ context.Context, src event.Source) []event.Event {
	now := m.now()
	out := make([]event.Event, 0, len(m.events))

	for _, evt := range m.events {
		if evt.StartDate.Before(now) {
			continue
		}
		if evt.ID == "" {
			evt.ID = event.GenerateInstanceID(src.ID, evt.Title, evt.StartDate)
		}
		if evt.Title == "" {
			evt.Title = event.UntitledTitle
		}
		if evt.EndDate.Before(evt.StartDate) || evt.EndDate.IsZero() {
			evt.EndDate = evt.StartDate.Add(event.DefaultDuration)
		}
		if len(evt.Tags) == 0 {
			evt.Tags = tagsFor(src.Tag, evt.Title, evt.Description, evt.Location)
		}
		if evt.ImageURL == "" {
			evt.ImageURL = src.DefaultImageURL
		}
		evt.Source = src
		out = append(out, evt)
	}

	return out
}

// DefaultManualEvents returns the built-in list of recurring town staples.
// Dates are computed relative to the current date so the list never goes
// stale.
func DefaultManualEvents() []event.Event {
	return []event.Event{
		{
			Title:       "Stoneham Farmers Market",
			Description: "Local produce, baked goods, and crafts on the Town Common.",
			StartDate:   nextWeekday(time.Saturday, 9, 0),
			EndDate:     nextWeekday(time.Saturday, 13, 0),
			Location:    "Town Common",
			URL:         "https://www.stonehamfarmersmarket.org",
			Tags:        []string{"community"},
		},
		{
			Title:       "Recycling Center Open Hours",
			Description: "Drop-off for yard waste, electronics, and rigid plastics. Resident sticker required.",
			StartDate:   nextWeekday(time.Saturday, 8, 0),
			EndDate:     nextWeekday(time.Saturday, 14, 0),
			Location:    "Stevens Street Recycling Center",
			Tags:        []string{"town"},
		},
		{
			Title:       "Select Board Meeting",
			Description: "Regular public meeting. Agenda posted 48 hours in advance on the town website.",
			StartDate:   nextWeekday(time.Tuesday, 19, 0),
			EndDate:     nextWeekday(time.Tuesday, 21, 0),
			Location:    "Town Hall, 35 Central Street",
			URL:         "https://www.stoneham-ma.gov/select-board",
			Tags:        []string{"government"},
		},
	}
}

// nextWeekday returns the next occurrence of the weekday at the given local
// clock time, at least one day ahead.
func nextWeekday(day time.Weekday, hour, minute int) time.Time {
	now := time.Now()
	days := (int(day) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	d := now.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.Local)
}
