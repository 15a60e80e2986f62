package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
	"github.com/explorestoneham/explorestoneham-sub000/internal/search"
)

func outputFixture() []event.Event {
	start := time.Date(2026, time.September, 10, 19, 0, 0, 0, time.UTC)
	return []event.Event{
		{
			ID:        "e1",
			Title:     "Town Meeting",
			StartDate: start,
			EndDate:   start.Add(2 * time.Hour),
			Location:  "Town Hall",
			Tags:      []string{"government"},
			Source:    event.Source{Name: "Town of Stoneham"},
		},
	}
}

func TestWriteEventsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, outputFixture(), FormatText); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"1 upcoming events", "Town Meeting", "at Town Hall", "[government]"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteEventsTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, nil, FormatText); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if !strings.Contains(buf.String(), "No upcoming events") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteEventsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, outputFixture(), FormatJSON); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}

	var out EventsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.EventCount != 1 || len(out.Events) != 1 || out.Events[0].Title != "Town Meeting" {
		t.Errorf("decoded output = %+v", out)
	}
}

func TestWriteEventsICS(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEvents(&buf, outputFixture(), FormatICS); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "SUMMARY:Town Meeting") {
		t.Errorf("ICS output missing calendar fields:\n%s", out)
	}
}

func TestWriteEventsUnknownFormat(t *testing.T) {
	if err := WriteEvents(&bytes.Buffer{}, nil, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteSearchResults(t *testing.T) {
	results := []search.Result{
		{Event: outputFixture()[0], Score: 6.6, MatchedFields: []string{"title"}},
	}

	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, "meeting", results, FormatText); err != nil {
		t.Fatalf("WriteSearchResults: %v", err)
	}
	if !strings.Contains(buf.String(), "Town Meeting") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if err := WriteSearchResults(&buf, "meeting", results, FormatJSON); err != nil {
		t.Fatalf("WriteSearchResults json: %v", err)
	}
	var out SearchOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Query != "meeting" || out.ResultCount != 1 {
		t.Errorf("decoded output = %+v", out)
	}
}

func TestWriteUniversalResultsText(t *testing.T) {
	evt := outputFixture()[0]
	resp := search.UniversalResponse{
		Query: "meeting",
		Results: []search.UniversalResult{
			{Item: search.Item{Type: search.ItemEvent, Event: &evt}, Score: 3.3},
		},
		ByType: map[search.ItemType][]search.UniversalResult{
			search.ItemEvent: {{Item: search.Item{Type: search.ItemEvent, Event: &evt}, Score: 3.3}},
		},
		ResultCounts: map[search.ItemType]int{search.ItemEvent: 1},
	}

	var buf bytes.Buffer
	if err := WriteUniversalResults(&buf, resp, FormatText); err != nil {
		t.Fatalf("WriteUniversalResults: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "event (1):") || !strings.Contains(out, "Town Meeting") {
		t.Errorf("output = %q", out)
	}
}

func TestWriteSources(t *testing.T) {
	sources := []event.Source{
		{ID: "town-calendar", Type: event.TypeRSS, URL: "https://example.org/feed", Enabled: true},
		{ID: "chamber-events", Type: event.TypeChamber, URL: "https://example.org/events", Enabled: false},
	}

	var buf bytes.Buffer
	if err := WriteSources(&buf, sources, FormatText); err != nil {
		t.Fatalf("WriteSources: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "town-calendar") || !strings.Contains(out, "disabled") {
		t.Errorf("output = %q", out)
	}
}

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("2026-09-10")
	if err != nil || got == nil {
		t.Fatalf("parseDateFlag: %v, %v", got, err)
	}
	if !got.Equal(time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parsed = %v", got)
	}

	if got, err := parseDateFlag(""); err != nil || got != nil {
		t.Errorf("empty flag = %v, %v; want nil, nil", got, err)
	}

	if _, err := parseDateFlag("next tuesday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}
