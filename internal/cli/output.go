package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/calendar"
	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
	"github.com/explorestoneham/explorestoneham-sub000/internal/search"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// EventsOutput is the JSON shape for the events command.
type EventsOutput struct {
	GeneratedAt time.Time     `json:"generated_at"`
	EventCount  int           `json:"event_count"`
	Events      []event.Event `json:"events"`
}

// WriteEvents writes a consolidated event list in the requested format.
func WriteEvents(w io.Writer, events []event.Event, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, EventsOutput{
			GeneratedAt: time.Now().UTC(),
			EventCount:  len(events),
			Events:      events,
		})
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(events, time.Now()))
		return err
	case FormatText:
		return writeEventsText(w, events)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeEventsText(w io.Writer, events []event.Event) error {
	if len(events) == 0 {
		fmt.Fprintln(w, "No upcoming events found.")
		return nil
	}

	fmt.Fprintf(w, "%d upcoming events:\n\n", len(events))
	for _, evt := range events {
		fmt.Fprintf(w, "%s  %s\n", evt.StartDate.Format("Mon Jan 2 3:04 PM"), evt.Title)
		if evt.Location != "" {
			fmt.Fprintf(w, "    at %s\n", evt.Location)
		}
		if len(evt.Tags) > 0 {
			fmt.Fprintf(w, "    [%s]  %s\n", evt.PrimaryTag(), evt.Source.Name)
		}
	}
	return nil
}

// SearchOutput is the JSON shape for the search command.
type SearchOutput struct {
	Query       string          `json:"query"`
	ResultCount int             `json:"result_count"`
	Results     []search.Result `json:"results"`
}

// WriteSearchResults writes ranked event search results.
func WriteSearchResults(w io.Writer, query string, results []search.Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, SearchOutput{Query: query, ResultCount: len(results), Results: results})
	case FormatText:
		if len(results) == 0 {
			fmt.Fprintln(w, "No matching events found.")
			return nil
		}
		fmt.Fprintf(w, "%d matching events:\n\n", len(results))
		for _, r := range results {
			fmt.Fprintf(w, "%6.2f  %s  %s\n", r.Score, r.Event.StartDate.Format("Jan 2"), r.Event.Title)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteUniversalResults writes cross-type search results grouped by type.
func WriteUniversalResults(w io.Writer, resp search.UniversalResponse, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, resp)
	case FormatText:
		if len(resp.Results) == 0 {
			fmt.Fprintf(w, "No results for %q.\n", resp.Query)
			return nil
		}
		for _, typ := range []search.ItemType{search.ItemEvent, search.ItemAttraction, search.ItemBusiness, search.ItemService} {
			bucket := resp.ByType[typ]
			if len(bucket) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s (%d):\n", typ, len(bucket))
			for _, r := range bucket {
				fmt.Fprintf(w, "  %6.2f  %s\n", r.Score, r.Item.Name())
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteSources lists the configured source registry.
func WriteSources(w io.Writer, sources []event.Source, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, sources)
	case FormatText:
		for _, src := range sources {
			state := "enabled"
			if !src.Enabled {
				state = "disabled"
			}
			fmt.Fprintf(w, "%-18s %-14s %-8s %s\n", src.ID, src.Type, state, src.URL)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
