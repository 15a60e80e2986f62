package fetch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
	"github.com/explorestoneham/explorestoneham-sub000/internal/proxy"
)

// Chamber scrapes the chamber of commerce event calendar. The vendor embeds
// schema.org Event structured data on most pages; selector scraping of the
// known card markup is the fallback, generic heuristics the last resort.
type Chamber struct {
	client *proxy.Client
	now    func() time.Time
}

// NewChamber creates the chamber calendar scraper.
func NewChamber(client *proxy.Client) *Chamber {
	return &Chamber{client: client, now: time.Now}
}

// Fetch scrapes the chamber calendar. Outside the deployed environment the
// proxy is unavailable and the scraper short-circuits to an empty result.
func (f *Chamber) Fetch(ctx context.Context, src event.Source) []event.Event {
	doc := fetchDocument(ctx, f.client, src)
	if doc == nil {
		return nil
	}

	if events := extractJSONLD(doc, src, f.client); len(events) > 0 {
		logger.Info("chamber events from structured data", logger.Fields{"source": src.ID, "events": len(events)})
		return events
	}

	if events := f.scrapeCards(doc, src); len(events) > 0 {
		logger.Info("chamber events from card markup", logger.Fields{"source": src.ID, "events": len(events)})
		return events
	}

	events := scrapeGeneric(doc, src, f.now())
	logger.Info("chamber events from generic scrape", logger.Fields{"source": src.ID, "events": len(events)})
	return events
}

// monthsByName maps the card markup's abbreviated month element text.
var monthsByName = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// scrapeCards handles the vendor's month/day card layout.
func (f *Chamber) scrapeCards(doc *goquery.Document, src event.Source) []event.Event {
	now := f.now()
	var events []event.Event

	doc.Find(".gz-events-card, .card-event, .mn-listing").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(".gz-event-title, .card-title, h3").First().Text())
		if title == "" {
			return
		}

		month := strings.ToLower(strings.TrimSpace(card.Find(".gz-event-date .month, .date-month").First().Text()))
		day := strings.TrimSpace(card.Find(".gz-event-date .day, .date-day").First().Text())

		date := cardDate(month, day, now)
		details := card.Find(".gz-event-details, .card-text, .mn-event-content").Text()

		start, end, location, description := classifyDetails(details, date)

		category := strings.TrimSpace(card.Find(".gz-event-category, .card-category").First().Text())
		tags := tagsFor(src.Tag, title, description, location)
		if category != "" {
			tags = []string{strings.ToLower(category)}
		}

		href, _ := card.Find("a").First().Attr("href")
		img, _ := card.Find("img").First().Attr("src")

		events = append(events, event.Event{
			ID:          event.GenerateInstanceID(src.ID, title, start),
			Title:       event.StripHTML(title),
			Description: description,
			StartDate:   start,
			EndDate:     end,
			Location:    location,
			URL:         resolveURL(src.URL, href),
			ImageURL:    orDefault(f.client.RewriteImageURL(resolveURL(src.URL, img)), src.DefaultImageURL),
			Source:      src,
			Tags:        tags,
		})
	})

	return events
}

// cardDate builds a date from the card's month/day elements, rolling to the
// next year when the month has already passed.
func cardDate(month, day string, now time.Time) time.Time {
	m, ok := monthsByName[month]
	if !ok {
		return now
	}
	d, _ := strconv.Atoi(day)
	if d == 0 {
		d = 1
	}
	date := time.Date(now.Year(), m, d, 0, 0, 0, 0, time.Local)
	if date.Before(now.AddDate(0, 0, -1)) {
		date = date.AddDate(1, 0, 0)
	}
	return date
}

// dateLinePattern matches "Tuesday, September 15, 2026" style detail lines.
var dateLinePattern = regexp.MustCompile(
	`(?i)^(Sunday|Monday|Tuesday|Wednesday|Thursday|Friday|Saturday),?\s+` +
		`(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}$`)

// classifyDetails line-classifies a free-text details block: a date line
// updates the calendar date, a time-range line sets the clock times, and the
// remaining lines are treated as location then description in order of
// appearance.
func classifyDetails(details string, date time.Time) (start, end time.Time, location, description string) {
	start = date
	end = date.Add(event.DefaultDuration)

	var leftovers []string
	for _, line := range strings.Split(details, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if dateLinePattern.MatchString(line) {
			if d := event.ParseDate(stripWeekday(line)); !d.IsZero() {
				date = d
				start = d
				end = d.Add(event.DefaultDuration)
			}
			continue
		}
		if tr, ok := event.ParseTimeRange(line); ok {
			start, end = tr.Apply(date)
			continue
		}
		leftovers = append(leftovers, line)
	}

	if len(leftovers) > 0 {
		location = event.StripHTML(leftovers[0])
	}
	if len(leftovers) > 1 {
		description = event.CleanDescription(strings.Join(leftovers[1:], " "))
	}
	return start, end, location, description
}

func stripWeekday(line string) string {
	if i := strings.Index(line, ","); i >= 0 && i < 10 {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

// Community scrapes the community calendar site, which publishes no
// structured data and no stable markup. It runs the same JSON-LD-first
// pipeline and leans on the generic heuristic pass.
type Community struct {
	client *proxy.Client
	now    func() time.Time
}

// NewCommunity creates the community calendar scraper.
func NewCommunity(client *proxy.Client) *Community {
	return &Community{client: client, now: time.Now}
}

// Fetch scrapes the community calendar with the layered fallback chain.
func (f *Community) Fetch(ctx context.Context, src event.Source) []event.Event {
	doc := fetchDocument(ctx, f.client, src)
	if doc == nil {
		return nil
	}

	if events := extractJSONLD(doc, src, f.client); len(events) > 0 {
		logger.Info("community events from structured data", logger.Fields{"source": src.ID, "events": len(events)})
		return events
	}

	events := scrapeGeneric(doc, src, f.now())
	logger.Info("community events from generic scrape", logger.Fields{"source": src.ID, "events": len(events)})
	return events
}

// genericSelectors are tried in sequence until one yields events. This path
// is explicitly lower-fidelity: it produces minimal records from whatever
// text and attributes are present.
var genericSelectors = []string{
	"article.event, article.type-event",
	".event-item, .calendar-event, li.event",
	".tribe-events-calendar-list__event",
	"[itemtype*='schema.org/Event']",
}

// scrapeGeneric is the last-resort extraction pass shared by both site
// variants. Missing dates default to now rather than dropping the event.
func scrapeGeneric(doc *goquery.Document, src event.Source, now time.Time) []event.Event {
	var events []event.Event
	// Seeds are title+start so IDs survive reordering; only true
	// duplicates get a disambiguating suffix.
	seen := make(map[string]int)

	for _, selector := range genericSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			title := strings.TrimSpace(sel.Find("h1, h2, h3, h4, .title, .event-title").First().Text())
			if title == "" {
				title = firstLine(sel.Text())
			}
			if title == "" {
				return
			}

			text := sel.Text()
			date := event.ParseDate(strings.TrimSpace(sel.Find("time, .date, .event-date").First().Text()))
			if date.IsZero() {
				if dt, ok := sel.Find("time").First().Attr("datetime"); ok {
					date = event.ParseDate(dt)
				}
			}
			if date.IsZero() {
				date = now
			}

			start, end := date, date.Add(event.DefaultDuration)
			if tr, ok := event.ParseTimeRange(text); ok {
				start, end = tr.Apply(date)
			}

			location := strings.TrimSpace(sel.Find(".location, .venue, .event-location").First().Text())
			href, _ := sel.Find("a").First().Attr("href")

			title = event.StripHTML(title)
			seed := title
			key := fmt.Sprintf("%s|%s", title, start.Format(time.RFC3339))
			if n := seen[key]; n > 0 {
				seed = fmt.Sprintf("%s|%d", title, n)
			}
			seen[key]++
			events = append(events, event.Event{
				ID:        event.GenerateInstanceID(src.ID, seed, start),
				Title:     title,
				StartDate: start,
				EndDate:   end,
				Location:  event.StripHTML(location),
				URL:       resolveURL(src.URL, href),
				ImageURL:  src.DefaultImageURL,
				Source:    src,
				Tags:      tagsFor(src.Tag, title, "", location),
			})
		})
		if len(events) > 0 {
			break
		}
	}

	return events
}

// fetchDocument runs the shared front half of both scrapers: availability
// short-circuit, proxy fetch, HTML parse. Returns nil when any stage fails.
func fetchDocument(ctx context.Context, client *proxy.Client, src event.Source) *goquery.Document {
	if !client.Available() {
		logger.Info("proxy unavailable, skipping scrape", logger.Fields{"source": src.ID})
		return nil
	}

	body, err := client.FetchText(ctx, src.URL)
	if err != nil {
		if errors.Is(err, proxy.ErrRateLimited) {
			logger.Info("scrape target rate limited", logger.Fields{"source": src.ID})
			return nil
		}
		logger.Error("scrape fetch failed", logger.Fields{"source": src.ID, "url": src.URL}, err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		logger.Error("scrape parse failed", logger.Fields{"source": src.ID, "url": src.URL}, err)
		return nil
	}
	return doc
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
