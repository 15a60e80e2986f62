package fetch

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
	"github.com/explorestoneham/explorestoneham-sub000/internal/proxy"
)

// extractJSONLD pulls schema.org Event objects out of the page's embedded
// structured-data blocks. Structured data is always preferred over scraping
// visible markup; a page with usable JSON-LD never falls through to the
// selector-based paths.
func extractJSONLD(doc *goquery.Document, src event.Source, client *proxy.Client) []event.Event {
	pageText := doc.Find("body").Text()

	var events []event.Event
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var payload interface{}
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			return
		}
		for _, obj := range ldObjects(payload) {
			if evt, ok := parseLDEvent(obj, src, client, pageText); ok {
				events = append(events, evt)
			}
		}
	})
	return events
}

// ldObjects flattens a decoded JSON-LD payload into candidate objects:
// a bare object, a top-level array, or an @graph array.
func ldObjects(payload interface{}) []map[string]interface{} {
	var out []map[string]interface{}
	switch v := payload.(type) {
	case map[string]interface{}:
		if graph, ok := v["@graph"].([]interface{}); ok {
			for _, g := range graph {
				if m, ok := g.(map[string]interface{}); ok {
					out = append(out, m)
				}
			}
			return out
		}
		out = append(out, v)
	case []interface{}:
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// isLDEvent reports whether the object's @type names an Event (including
// subtypes like MusicEvent).
func isLDEvent(obj map[string]interface{}) bool {
	switch t := obj["@type"].(type) {
	case string:
		return strings.HasSuffix(t, "Event")
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.HasSuffix(s, "Event") {
				return true
			}
		}
	}
	return false
}

// parseLDEvent validates and narrows one structured-data object into the
// canonical event record. Untyped payload never leaks past this function.
func parseLDEvent(obj map[string]interface{}, src event.Source, client *proxy.Client, pageText string) (event.Event, bool) {
	if !isLDEvent(obj) {
		return event.Event{}, false
	}

	title := event.StripHTML(ldString(obj["name"]))
	if title == "" {
		title = event.UntitledTitle
	}

	start, hasTime := parseLDDate(ldString(obj["startDate"]))
	if start.IsZero() {
		return event.Event{}, false
	}

	// A document date with no time information falls back to mining a
	// time-range pattern from the page's visible text.
	var minedEnd time.Time
	if !hasTime {
		if tr, ok := event.ParseTimeRange(pageText); ok {
			start, minedEnd = tr.Apply(start)
		}
	}

	// An explicit duration (ISO-8601 style or bare seconds) beats the
	// declared endDate, which beats a mined page-text range.
	end := start.Add(event.DefaultDuration)
	if d, ok := parseLDDuration(obj["duration"]); ok {
		end = start.Add(d)
	} else if e, _ := parseLDDate(ldString(obj["endDate"])); !e.IsZero() && e.After(start) {
		end = e
	} else if minedEnd.After(start) {
		end = minedEnd
	}

	description := event.CleanDescription(ldString(obj["description"]))
	location := parseLDLocation(obj["location"])

	evt := event.Event{
		ID:          event.GenerateInstanceID(src.ID, title, start),
		Title:       title,
		Description: description,
		StartDate:   start,
		EndDate:     end,
		Location:    location,
		URL:         resolveURL(src.URL, ldString(obj["url"])),
		ImageURL:    client.RewriteImageURL(parseLDImage(obj["image"])),
		Source:      src,
		Tags:        tagsFor(src.Tag, title, description, location),
	}
	if evt.ImageURL == "" {
		evt.ImageURL = src.DefaultImageURL
	}
	return evt, true
}

// ldDateTimeFormats carry time-of-day information; ldDateFormats do not.
var ldDateTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// parseLDDate parses a schema.org date string. The second return reports
// whether the value carried time-of-day information.
func parseLDDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range ldDateTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, false
	}
	return time.Time{}, false
}

var isoSecondsPattern = regexp.MustCompile(`^PT(\d+)S$`)

// parseLDDuration accepts an ISO-8601 seconds duration ("PT5400S"), a bare
// numeric seconds value, or a full ISO duration parseable piecewise.
func parseLDDuration(v interface{}) (time.Duration, bool) {
	switch d := v.(type) {
	case float64:
		if d > 0 {
			return time.Duration(d) * time.Second, true
		}
	case string:
		if m := isoSecondsPattern.FindStringSubmatch(d); m != nil {
			secs, _ := strconv.Atoi(m[1])
			return time.Duration(secs) * time.Second, true
		}
	}
	return 0, false
}

// parseLDLocation accepts a string or a nested Place object, preferring the
// place name over its address.
func parseLDLocation(v interface{}) string {
	switch loc := v.(type) {
	case string:
		return event.StripHTML(loc)
	case map[string]interface{}:
		if name := ldString(loc["name"]); name != "" {
			return event.StripHTML(name)
		}
		switch addr := loc["address"].(type) {
		case string:
			return event.StripHTML(addr)
		case map[string]interface{}:
			parts := []string{}
			for _, key := range []string{"streetAddress", "addressLocality"} {
				if s := ldString(addr[key]); s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ", ")
		}
	}
	return ""
}

// parseLDImage accepts a string, an array of strings, or an ImageObject.
func parseLDImage(v interface{}) string {
	switch img := v.(type) {
	case string:
		return img
	case []interface{}:
		if len(img) > 0 {
			return parseLDImage(img[0])
		}
	case map[string]interface{}:
		return ldString(img["url"])
	}
	return ""
}

func ldString(v interface{}) string {
	s, _ := v.(string)
	return s
}
