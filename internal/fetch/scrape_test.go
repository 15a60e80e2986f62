package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/proxy"
)

const jsonLDPage = `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Event",
  "name": "Taste of Stoneham",
  "description": "<p>Annual food festival featuring local restaurants.</p>",
  "startDate": "2026-10-03T17:00:00Z",
  "endDate": "2026-10-03T21:00:00Z",
  "location": {"@type": "Place", "name": "Town Common", "address": "Main Street"},
  "url": "/events/taste-of-stoneham",
  "image": ["https://photos.s3.amazonaws.com/taste.jpg"]
}
</script>
</head><body><div class="gz-events-card"><h3 class="gz-event-title">Ignored Card</h3></div></body></html>`

func TestChamberPrefersJSONLD(t *testing.T) {
	f := NewChamber(testProxy(t, jsonLDPage))
	events := f.Fetch(context.Background(), testSource("chamber-html"))

	if len(events) != 1 {
		t.Fatalf("expected 1 structured-data event, got %d", len(events))
	}

	evt := events[0]
	if evt.Title != "Taste of Stoneham" {
		t.Errorf("unexpected title %q", evt.Title)
	}
	want := time.Date(2026, 10, 3, 17, 0, 0, 0, time.UTC)
	if !evt.StartDate.Equal(want) {
		t.Errorf("expected start %v, got %v", want, evt.StartDate)
	}
	if evt.Location != "Town Common" {
		t.Errorf("place name should beat address, got %q", evt.Location)
	}
	if evt.URL != "https://www.stoneham-ma.gov/events/taste-of-stoneham" {
		t.Errorf("relative URL not absolutized: %q", evt.URL)
	}
	if evt.ImageURL == "https://photos.s3.amazonaws.com/taste.jpg" {
		t.Error("object-storage image should be rewritten through the image proxy")
	}
}

const jsonLDDurationPage = `<html><head>
<script type="application/ld+json">
[{
  "@type": "MusicEvent",
  "name": "Jazz Night",
  "startDate": "2026-10-10T19:00:00Z",
  "endDate": "2026-10-11T02:00:00Z",
  "duration": "PT5400S"
}]
</script>
</head><body></body></html>`

func TestJSONLDDurationBeatsEndDate(t *testing.T) {
	f := NewChamber(testProxy(t, jsonLDDurationPage))
	events := f.Fetch(context.Background(), testSource("chamber-html"))

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if got := events[0].EndDate.Sub(events[0].StartDate); got != 90*time.Minute {
		t.Errorf("duration should beat endDate: got %v, want 90m", got)
	}
}

const jsonLDDateOnlyPage = `<html><head>
<script type="application/ld+json">
{"@type": "Event", "name": "Sidewalk Sale", "startDate": "2026-10-17"}
</script>
</head><body>
<p>Join us downtown from 9:00 AM - 3:00 PM for the annual sidewalk sale.</p>
</body></html>`

func TestJSONLDDateOnlyMinesPageTextForTime(t *testing.T) {
	f := NewChamber(testProxy(t, jsonLDDateOnlyPage))
	events := f.Fetch(context.Background(), testSource("chamber-html"))

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].StartDate.Hour() != 9 {
		t.Errorf("expected time mined from page text, got %v", events[0].StartDate)
	}
	if events[0].EndDate.Hour() != 15 {
		t.Errorf("expected end from mined range, got %v", events[0].EndDate)
	}
}

const chamberCardPage = `<html><body>
<div class="gz-events-card">
  <div class="gz-event-date"><span class="month">Oct</span><span class="day">21</span></div>
  <h3 class="gz-event-title">Business After Hours</h3>
  <span class="gz-event-category">Networking</span>
  <div class="gz-event-details">Wednesday, October 21, 2026
5:30 PM - 7:30 PM
Stoneham Bank Community Room
Monthly networking mixer with member businesses.</div>
  <a href="/events/after-hours"></a>
</div>
</body></html>`

func TestChamberCardFallback(t *testing.T) {
	f := NewChamber(testProxy(t, chamberCardPage))
	f.now = fixedNow

	events := f.Fetch(context.Background(), testSource("chamber-html"))
	if len(events) != 1 {
		t.Fatalf("expected 1 card event, got %d", len(events))
	}

	evt := events[0]
	if evt.Title != "Business After Hours" {
		t.Errorf("unexpected title %q", evt.Title)
	}
	if evt.StartDate.Hour() != 17 || evt.StartDate.Minute() != 30 {
		t.Errorf("expected 5:30 PM start, got %v", evt.StartDate)
	}
	if evt.StartDate.Month() != time.October || evt.StartDate.Day() != 21 {
		t.Errorf("expected October 21, got %v", evt.StartDate)
	}
	if evt.Location != "Stoneham Bank Community Room" {
		t.Errorf("first leftover line should be location, got %q", evt.Location)
	}
	if evt.Description == "" {
		t.Error("remaining lines should become the description")
	}
	if evt.PrimaryTag() != "networking" {
		t.Errorf("card category should win, got %q", evt.PrimaryTag())
	}
}

const genericPage = `<html><body>
<li class="event"><h4>Community Garden Workday</h4>
<span class="date">2026-10-24</span>
<span class="location">Rear of High School</span>
<a href="https://stonehamcan.org/garden"></a></li>
</body></html>`

func TestCommunityGenericFallback(t *testing.T) {
	f := NewCommunity(testProxy(t, genericPage))
	f.now = fixedNow

	events := f.Fetch(context.Background(), testSource("community-html"))
	if len(events) != 1 {
		t.Fatalf("expected 1 heuristic event, got %d", len(events))
	}
	evt := events[0]
	if evt.Title != "Community Garden Workday" {
		t.Errorf("unexpected title %q", evt.Title)
	}
	if evt.StartDate.Year() != 2026 || evt.StartDate.Month() != time.October {
		t.Errorf("expected parsed date, got %v", evt.StartDate)
	}
	if evt.Location != "Rear of High School" {
		t.Errorf("unexpected location %q", evt.Location)
	}
}

func TestGenericFallbackIDsSurviveReordering(t *testing.T) {
	workday := `<li class="event"><h4>Community Garden Workday</h4>
<span class="date">2026-10-24</span></li>`
	cleanup := `<li class="event"><h4>Park Cleanup</h4>
<span class="date">2026-10-31</span></li>`

	f := NewCommunity(testProxy(t, "<html><body>"+workday+"</body></html>"))
	f.now = fixedNow
	alone := f.Fetch(context.Background(), testSource("community-html"))
	if len(alone) != 1 {
		t.Fatalf("expected 1 event, got %d", len(alone))
	}

	// The same listing with a new event inserted above it.
	f = NewCommunity(testProxy(t, "<html><body>"+cleanup+workday+"</body></html>"))
	f.now = fixedNow
	both := f.Fetch(context.Background(), testSource("community-html"))
	if len(both) != 2 {
		t.Fatalf("expected 2 events, got %d", len(both))
	}

	var workdayID string
	for _, evt := range both {
		if evt.Title == "Community Garden Workday" {
			workdayID = evt.ID
		}
	}
	if workdayID != alone[0].ID {
		t.Errorf("ID changed when a sibling was inserted: %s vs %s", workdayID, alone[0].ID)
	}
	if both[0].ID == both[1].ID {
		t.Error("distinct events share an ID")
	}
}

func TestGenericFallbackDefaultsDateToNow(t *testing.T) {
	page := `<html><body><li class="event"><h4>Pop-up Event</h4></li></body></html>`
	f := NewCommunity(testProxy(t, page))
	f.now = fixedNow

	events := f.Fetch(context.Background(), testSource("community-html"))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].StartDate.Equal(fixedNow()) {
		t.Errorf("missing date should default to now, got %v", events[0].StartDate)
	}
}

func TestScraperExhaustedStagesYieldEmpty(t *testing.T) {
	f := NewChamber(testProxy(t, "<html><body><p>Nothing here.</p></body></html>"))
	if events := f.Fetch(context.Background(), testSource("chamber-html")); len(events) != 0 {
		t.Errorf("expected empty result, got %d events", len(events))
	}
}

func TestScraperLocalDevShortCircuit(t *testing.T) {
	f := NewChamber(proxy.NewClient(""))
	if events := f.Fetch(context.Background(), testSource("chamber-html")); events != nil {
		t.Errorf("unavailable proxy should short-circuit to empty, got %v", events)
	}
}
