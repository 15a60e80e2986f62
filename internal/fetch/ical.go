package fetch

import (
	"context"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
	"github.com/explorestoneham/explorestoneham-sub000/internal/proxy"
)

const (
	// recurrenceHorizon bounds how far ahead recurring events are expanded.
	recurrenceHorizon = 6 * 30 * 24 * time.Hour
	// maxOccurrences caps expansion per event so a pathological rule
	// (sub-minute frequency, no UNTIL) cannot blow up the calendar.
	maxOccurrences = 50
	// icalDefaultDuration is synthesized when a VEVENT has no usable DTEND.
	icalDefaultDuration = time.Hour
)

// ICal fetches an iCalendar feed and expands recurring events into concrete
// occurrences.
type ICal struct {
	client *proxy.Client
	now    func() time.Time
}

// NewICal creates an iCalendar fetcher using the shared proxy client.
func NewICal(client *proxy.Client) *ICal {
	return &ICal{client: client, now: time.Now}
}

// Fetch retrieves and normalizes the feed. A parse failure on the whole feed
// yields an empty result, never partial garbled events.
func (f *ICal) Fetch(ctx context.Context, src event.Source) []event.Event {
	body, err := f.client.FetchText(ctx, src.URL)
	if err != nil {
		if errors.Is(err, proxy.ErrRateLimited) {
			logger.Info("ical feed rate limited", logger.Fields{"source": src.ID})
			return nil
		}
		logger.Error("ical fetch failed", logger.Fields{"source": src.ID, "url": src.URL}, err)
		return nil
	}

	cal, err := ical.ParseCalendar(strings.NewReader(body))
	if err != nil {
		logger.Error("ical parse failed", logger.Fields{"source": src.ID, "url": src.URL}, err)
		return nil
	}

	events := f.normalizeCalendar(src, cal)
	logger.Info("ical feed fetched", logger.Fields{"source": src.ID, "events": len(events)})
	logger.IncrCounter("fetch."+src.ID+".events", int64(len(events)))
	return events
}

func (f *ICal) normalizeCalendar(src event.Source, cal *ical.Calendar) []event.Event {
	now := f.now()
	horizon := now.Add(recurrenceHorizon)

	var events []event.Event
	for _, ve := range cal.Events() {
		events = append(events, f.normalizeVEvent(src, ve, now, horizon)...)
	}
	return events
}

// normalizeVEvent turns one VEVENT into zero or more normalized events:
// one per future occurrence for recurring events, at most one otherwise.
func (f *ICal) normalizeVEvent(src event.Source, ve *ical.VEvent, now, horizon time.Time) []event.Event {
	uid := propertyValue(ve, ical.ComponentPropertyUniqueId)
	if uid == "" {
		return nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		logger.Warn("ical event has unparseable DTSTART", logger.Fields{"source": src.ID, "uid": uid})
		return nil
	}

	duration := icalDefaultDuration
	if end, err := ve.GetEndAt(); err == nil && end.After(start) {
		duration = end.Sub(start)
	}

	base := event.Event{
		Title:       event.StripHTML(propertyValue(ve, ical.ComponentPropertySummary)),
		Description: event.StripHTML(propertyValue(ve, ical.ComponentPropertyDescription)),
		Location:    propertyValue(ve, ical.ComponentPropertyLocation),
		URL:         propertyValue(ve, ical.ComponentPropertyUrl),
		Source:      src,
	}
	if base.Title == "" {
		base.Title = event.UntitledTitle
	}
	base.Tags = tagsFor(src.Tag, base.Title, base.Description, base.Location)
	if base.ImageURL == "" {
		base.ImageURL = src.DefaultImageURL
	}

	rawRRule := propertyValue(ve, ical.ComponentPropertyRrule)
	if rawRRule == "" {
		// Single event: future-only, UID-stable ID.
		if start.Before(now) {
			return nil
		}
		base.ID = event.GenerateID(src.ID, uid)
		base.StartDate = start
		base.EndDate = start.Add(duration)
		return []event.Event{base}
	}

	rule, err := rrule.StrToRRule(rawRRule)
	if err != nil {
		logger.Warn("ical event has unparseable RRULE", logger.Fields{"source": src.ID, "uid": uid, "rrule": rawRRule})
		return nil
	}
	rule.DTStart(start)

	// Walk the rule lazily so a pathological frequency stops at the cap
	// instead of materializing the whole window.
	var occurrences []time.Time
	next := rule.Iterator()
	for {
		occ, ok := next()
		if !ok || occ.After(horizon) {
			break
		}
		if occ.Before(now) {
			continue
		}
		occurrences = append(occurrences, occ)
		if len(occurrences) == maxOccurrences {
			break
		}
	}

	out := make([]event.Event, 0, len(occurrences))
	for _, occ := range occurrences {
		evt := base
		evt.ID = event.GenerateInstanceID(src.ID, uid, occ)
		evt.StartDate = occ
		evt.EndDate = occ.Add(duration)
		out = append(out, evt)
	}
	return out
}

func propertyValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}
