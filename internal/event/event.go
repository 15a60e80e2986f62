package event

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SourceType selects which fetcher handles a source.
type SourceType string

const (
	TypeManual    SourceType = "manual"
	TypeRSS       SourceType = "rss"
	TypeICalendar SourceType = "icalendar"
	TypeChamber   SourceType = "chamber-html"
	TypeCommunity SourceType = "community-html"
)

// GenericTag is the catch-all category assigned to sources that carry every
// kind of town event. Events from such sources go through keyword
// auto-categorization instead of inheriting the tag verbatim.
const GenericTag = "events"

// Source describes a configured remote origin of event data. Sources are
// constructed once from configuration; only Enabled changes at runtime.
type Source struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name"`
	Type            SourceType `json:"type" yaml:"type"`
	URL             string     `json:"url" yaml:"url"`
	Tag             string     `json:"tag" yaml:"tag"`
	Color           string     `json:"color,omitempty" yaml:"color,omitempty"`
	DefaultImageURL string     `json:"default_image_url,omitempty" yaml:"default_image_url,omitempty"`
	Enabled         bool       `json:"enabled" yaml:"enabled"`
}

// Event is the canonical normalized record produced by every fetcher.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Location    string    `json:"location,omitempty"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Source      Source    `json:"source"`
	Tags        []string  `json:"tags"`
}

// UntitledTitle is substituted when a source omits the event title.
const UntitledTitle = "Untitled Event"

// GenerateID creates a deterministic ID for an event from its source and a
// stable seed (feed GUID, iCal UID, link, or raw scraped text).
func GenerateID(sourceID, seed string) string {
	h := sha1.New()
	h.Write([]byte(sourceID + "|" + seed))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// GenerateInstanceID creates an ID for one occurrence of a recurring event.
// The start timestamp keeps expanded instances distinct while staying stable
// across fetches.
func GenerateInstanceID(sourceID, seed string, start time.Time) string {
	return GenerateID(sourceID, fmt.Sprintf("%s|%d", seed, start.Unix()))
}

// PrimaryTag returns the tag used for display. The first tag is primary.
func (e *Event) PrimaryTag() string {
	if len(e.Tags) == 0 {
		return ""
	}
	return e.Tags[0]
}

// HasTag reports whether the event carries the given tag (case-insensitive).
func (e *Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// DedupKey identifies "the same event" across sources: case-insensitive
// title plus calendar date, start time, and case-insensitive location.
func (e *Event) DedupKey() string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(e.Title)),
		e.StartDate.Format("2006-01-02"),
		e.StartDate.Format("15:04"),
		strings.ToLower(strings.TrimSpace(e.Location)),
	}, "|")
}

// Merge folds other into e. Tags are unioned preserving insertion order;
// each optional field keeps e's value when present, otherwise takes other's.
// Earlier sources win ties, so callers must merge in source order.
func (e *Event) Merge(other Event) {
	for _, tag := range other.Tags {
		if !e.HasTag(tag) {
			e.Tags = append(e.Tags, tag)
		}
	}
	if e.Description == "" {
		e.Description = other.Description
	}
	if e.Location == "" {
		e.Location = other.Location
	}
	if e.URL == "" {
		e.URL = other.URL
	}
	if e.ImageURL == "" {
		e.ImageURL = other.ImageURL
	}
}

// Dedupe collapses events sharing a DedupKey into single merged records.
// Input order is preserved for first occurrences, which makes the operation
// idempotent: deduping an already-deduped list returns it unchanged.
func Dedupe(events []Event) []Event {
	index := make(map[string]int, len(events))
	out := make([]Event, 0, len(events))

	for _, evt := range events {
		key := evt.DedupKey()
		if i, seen := index[key]; seen {
			out[i].Merge(evt)
			continue
		}
		index[key] = len(out)
		out = append(out, evt)
	}

	return out
}

// SortByStart orders events ascending by start time, in place.
func SortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})
}

// FilterUpcoming returns only events starting at or after now.
func FilterUpcoming(events []Event, now time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, evt := range events {
		if !evt.StartDate.Before(now) {
			out = append(out, evt)
		}
	}
	return out
}
