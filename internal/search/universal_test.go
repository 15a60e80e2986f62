package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/directory"
	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

var universalNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func universalCorpus() Corpus {
	return Corpus{
		Events: []event.Event{
			{
				ID:        "e1",
				Title:     "Library Book Sale",
				StartDate: universalNow.Add(5 * 24 * time.Hour),
				Location:  "Stoneham Public Library",
				Tags:      []string{"library"},
			},
			{
				ID:          "e2",
				Title:       "Winter Concert",
				Description: "Holiday music at the library auditorium.",
				StartDate:   universalNow.Add(100 * 24 * time.Hour),
			},
		},
		Attractions: []directory.Attraction{
			{
				ID:          "fells",
				Name:        "Middlesex Fells Reservation",
				Description: "Hiking trails near the library trailhead parking.",
				Category:    "outdoors",
			},
		},
		Businesses: []directory.Business{
			{
				ID:       "book-oasis",
				Name:     "The Book Oasis",
				Features: []string{"library of used books"},
				Rating:   4.8,
			},
		},
		Services: []directory.Service{
			{
				ID:       "public-library",
				Name:     "Stoneham Public Library",
				Category: "education",
			},
		},
	}
}

func TestSearchAllPartition(t *testing.T) {
	resp := SearchAll(universalCorpus(), "library", UniversalOptions{Now: universalNow})

	total := 0
	for typ, count := range resp.ResultCounts {
		total += count
		if len(resp.ByType[typ]) != count {
			t.Errorf("count for %s = %d but bucket has %d", typ, count, len(resp.ByType[typ]))
		}
		for _, r := range resp.ByType[typ] {
			if r.Item.Type != typ {
				t.Errorf("bucket %s contains item of type %s", typ, r.Item.Type)
			}
		}
	}
	if total != len(resp.Results) {
		t.Errorf("counts sum to %d, flat list has %d", total, len(resp.Results))
	}
	if len(resp.Results) != 5 {
		t.Errorf("got %d results, want all 5 corpus items to match", len(resp.Results))
	}
}

func TestSearchAllNoHardGate(t *testing.T) {
	// Only the description mentions the query, far below the event-search
	// filters, but universal search admits anything above the floor.
	resp := SearchAll(universalCorpus(), "auditorium", UniversalOptions{Now: universalNow})
	if len(resp.Results) != 1 || resp.Results[0].Item.Event == nil || resp.Results[0].Item.Event.ID != "e2" {
		t.Errorf("got %+v, want only the description match", resp.Results)
	}
}

func TestSearchAllRecencyBoost(t *testing.T) {
	soon := universalNow.Add(10 * 24 * time.Hour)
	later := universalNow.Add(60 * 24 * time.Hour)
	past := universalNow.Add(-24 * time.Hour)
	corpus := Corpus{Events: []event.Event{
		{ID: "later", Title: "Harvest Supper", StartDate: later},
		{ID: "soon", Title: "Harvest Supper", StartDate: soon},
		{ID: "past", Title: "Harvest Supper", StartDate: past},
	}}

	resp := SearchAll(corpus, "harvest", UniversalOptions{Now: universalNow})
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	if resp.Results[0].Item.Event.ID != "soon" {
		t.Errorf("top result = %q, want the boosted upcoming event", resp.Results[0].Item.Event.ID)
	}
	if resp.Results[2].Item.Event.ID != "past" {
		t.Errorf("last result = %q, want the penalized past event", resp.Results[2].Item.Event.ID)
	}
}

func TestSearchAllRatingBoost(t *testing.T) {
	corpus := Corpus{Businesses: []directory.Business{
		{ID: "low", Name: "Main Street Diner", Rating: 3.5},
		{ID: "high", Name: "Main Street Diner", Rating: 4.5},
	}}

	resp := SearchAll(corpus, "diner", UniversalOptions{})
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(resp.Results))
	}
	if resp.Results[0].Item.Business.ID != "high" {
		t.Errorf("top result = %q, want the highly rated business", resp.Results[0].Item.Business.ID)
	}
	if resp.Results[0].Score <= resp.Results[1].Score {
		t.Errorf("rating boost missing: %v <= %v", resp.Results[0].Score, resp.Results[1].Score)
	}
}

func TestSearchAllMinScoreFloor(t *testing.T) {
	resp := SearchAll(universalCorpus(), "library", UniversalOptions{MinScore: 100, Now: universalNow})
	if len(resp.Results) != 0 {
		t.Errorf("got %d results above an unreachable floor", len(resp.Results))
	}

	resp = SearchAll(universalCorpus(), "", UniversalOptions{Now: universalNow})
	if len(resp.Results) != 0 {
		t.Errorf("empty query returned %d results, want none above the floor", len(resp.Results))
	}
}

func TestSearchAllMaxResults(t *testing.T) {
	resp := SearchAll(universalCorpus(), "library", UniversalOptions{MaxResults: 2, Now: universalNow})
	if len(resp.Results) != 2 {
		t.Errorf("got %d results, want cap of 2", len(resp.Results))
	}
	total := 0
	for _, count := range resp.ResultCounts {
		total += count
	}
	if total != 2 {
		t.Errorf("counts sum to %d after truncation, want 2", total)
	}
}

func TestSearchAllDefaultCapAndUnlimited(t *testing.T) {
	corpus := Corpus{}
	for i := 0; i < DefaultMaxResults+10; i++ {
		corpus.Events = append(corpus.Events, event.Event{
			Title:     fmt.Sprintf("Library Program %d", i),
			StartDate: universalNow.Add(time.Duration(i) * time.Hour),
		})
	}

	resp := SearchAll(corpus, "library", UniversalOptions{Now: universalNow})
	if len(resp.Results) != DefaultMaxResults {
		t.Errorf("unset MaxResults should fall back to the default cap, got %d", len(resp.Results))
	}

	resp = SearchAll(corpus, "library", UniversalOptions{MaxResults: Unlimited, Now: universalNow})
	if len(resp.Results) != DefaultMaxResults+10 {
		t.Errorf("Unlimited should return every match, got %d", len(resp.Results))
	}
}

func TestItemName(t *testing.T) {
	corpus := universalCorpus()
	tests := []struct {
		item Item
		want string
	}{
		{Item{Type: ItemEvent, Event: &corpus.Events[0]}, "Library Book Sale"},
		{Item{Type: ItemAttraction, Attraction: &corpus.Attractions[0]}, "Middlesex Fells Reservation"},
		{Item{Type: ItemBusiness, Business: &corpus.Businesses[0]}, "The Book Oasis"},
		{Item{Type: ItemService, Service: &corpus.Services[0]}, "Stoneham Public Library"},
	}
	for _, tt := range tests {
		if got := tt.item.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestSuggestAll(t *testing.T) {
	got := SuggestAll(universalCorpus(), "midd", 5)
	if len(got) != 1 || got[0] != "Middlesex" {
		t.Errorf("SuggestAll = %v, want [Middlesex]", got)
	}

	if got := SuggestAll(universalCorpus(), "", 5); got != nil {
		t.Errorf("empty partial returned %v", got)
	}
}
