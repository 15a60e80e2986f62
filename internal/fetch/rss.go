package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
	"github.com/explorestoneham/explorestoneham-sub000/internal/proxy"
)

// calendarExtension is the custom namespace the town's CivicPlus feed uses
// for structured event fields alongside the standard RSS item elements.
// gofeed lowercases namespace prefixes when it indexes extensions.
const calendarExtension = "calendarevent"

// RSS fetches and parses the town calendar RSS feed.
type RSS struct {
	client *proxy.Client
	parser *gofeed.Parser
	now    func() time.Time
}

// NewRSS creates an RSS fetcher using the shared proxy client.
func NewRSS(client *proxy.Client) *RSS {
	return &RSS{
		client: client,
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

// Fetch retrieves and normalizes the feed. Failures degrade to an empty
// result; rate limiting is expected behavior, logged at info level.
func (f *RSS) Fetch(ctx context.Context, src event.Source) []event.Event {
	body, err := f.client.FetchText(ctx, src.URL)
	if err != nil {
		if errors.Is(err, proxy.ErrRateLimited) {
			logger.Info("rss feed rate limited", logger.Fields{"source": src.ID})
			return nil
		}
		logger.Error("rss fetch failed", logger.Fields{"source": src.ID, "url": src.URL}, err)
		return nil
	}

	feed, err := f.parser.ParseString(body)
	if err != nil {
		logger.Error("rss parse failed", logger.Fields{"source": src.ID, "url": src.URL}, err)
		return nil
	}

	events := make([]event.Event, 0, len(feed.Items))
	for _, item := range feed.Items {
		events = append(events, f.normalizeItem(src, item))
	}

	logger.Info("rss feed fetched", logger.Fields{"source": src.ID, "events": len(events)})
	logger.IncrCounter("fetch."+src.ID+".events", int64(len(events)))
	return events
}

func (f *RSS) normalizeItem(src event.Source, item *gofeed.Item) event.Event {
	title := event.StripHTML(item.Title)
	if title == "" {
		title = event.UntitledTitle
	}

	dateText := extensionValue(item, "EventDates")
	timeText := extensionValue(item, "EventTimes")
	// A dedicated Location field beats the street Address when both exist.
	location := event.StripHTML(extensionValue(item, "Location"))
	if location == "" {
		location = event.StripHTML(extensionValue(item, "Address"))
	}

	start, end := f.resolveTimes(dateText, timeText, item)

	description := event.CleanDescription(item.Description)

	evt := event.Event{
		ID:          event.GenerateID(src.ID, itemSeed(item)),
		Title:       title,
		Description: description,
		StartDate:   start,
		EndDate:     end,
		Location:    location,
		URL:         resolveURL(src.URL, item.Link),
		Source:      src,
		Tags:        tagsFor(src.Tag, title, description, location),
	}

	if item.Image != nil && item.Image.URL != "" {
		evt.ImageURL = f.client.RewriteImageURL(item.Image.URL)
	} else {
		evt.ImageURL = src.DefaultImageURL
	}

	return evt
}

// resolveTimes derives start/end from the structured date field (pubDate as
// fallback) and an optional "7:00 PM - 9:00 PM" style time-range string.
func (f *RSS) resolveTimes(dateText, timeText string, item *gofeed.Item) (time.Time, time.Time) {
	date := event.ParseDate(dateText)
	if date.IsZero() && item.PublishedParsed != nil {
		date = *item.PublishedParsed
	}
	if date.IsZero() {
		date = event.ParseDate(item.Published)
	}
	if date.IsZero() {
		// Nothing to anchor on; keep the item rather than dropping it.
		date = f.now()
	}

	if tr, ok := event.ParseTimeRange(timeText); ok {
		return tr.Apply(date)
	}
	return date, date.Add(event.DefaultDuration)
}

// itemSeed picks the most stable identifier available for an item.
func itemSeed(item *gofeed.Item) string {
	switch {
	case item.GUID != "":
		return item.GUID
	case item.Link != "":
		return item.Link
	default:
		return item.Title + "|" + item.Published
	}
}

// extensionValue returns the first value of a custom-namespaced field.
func extensionValue(item *gofeed.Item, field string) string {
	ns, ok := item.Extensions[calendarExtension]
	if !ok {
		return ""
	}
	exts, ok := ns[field]
	if !ok || len(exts) == 0 {
		return ""
	}
	return exts[0].Value
}
