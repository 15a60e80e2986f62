package search

import (
	"sort"
	"strings"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

// Field weights for event scoring. The title is the most decisive signal
// of relevance, so it carries the highest weight.
const (
	weightTitle       = 3.0
	weightLocation    = 2.0
	weightTags        = 1.8
	weightDescription = 1.5
	weightSource      = 1.0
)

// filterBonus is the fixed score added for each structural filter an
// event passes, on top of its text score.
const filterBonus = 0.5

// DefaultMaxResults bounds result lists when Options.MaxResults is unset.
const DefaultMaxResults = 50

// Options narrows and ranks an event search.
//
// Query is a free-text relevance gate: when set, events with zero text
// score are excluded entirely. Tags, DateFrom/DateTo, and Location are
// hard filters that also contribute a small score bonus when they match.
// MaxResults of 0 keeps the default cap; use Unlimited for no cap.
type Options struct {
	Query      string
	Tags       []string
	DateFrom   *time.Time
	DateTo     *time.Time
	Location   string
	MaxResults int
}

// Unlimited disables result truncation when assigned to MaxResults.
const Unlimited = -1

// Result pairs an event with its relevance score and the fields that
// contributed to it.
type Result struct {
	Event         event.Event `json:"event"`
	Score         float64     `json:"score"`
	MatchedFields []string    `json:"matched_fields,omitempty"`
}

// SearchEvents ranks events against the options and returns them in
// descending score order. With no query and no filters every event passes
// through with score 1 and no matched fields.
func SearchEvents(events []event.Event, opts Options) []Result {
	scorer := newTextScorer(opts.Query)
	hasFilters := len(opts.Tags) > 0 || opts.DateFrom != nil || opts.DateTo != nil || opts.Location != ""

	var results []Result
	if scorer.empty() && !hasFilters {
		for _, evt := range events {
			results = append(results, Result{Event: evt, Score: 1})
		}
		return truncate(results, opts.MaxResults)
	}

	for _, evt := range events {
		if !matchesFilters(evt, opts) {
			continue
		}

		var score float64
		var matched []string
		if !scorer.empty() {
			score, matched = scoreEvent(scorer, evt)
			if score == 0 {
				continue
			}
		}
		score += bonusFor(evt, opts)

		results = append(results, Result{Event: evt, Score: score, MatchedFields: matched})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return truncate(results, opts.MaxResults)
}

func scoreEvent(scorer *textScorer, evt event.Event) (float64, []string) {
	var score float64
	var matched []string
	add := func(field, text string, weight float64) {
		if s := scorer.scoreField(text, weight); s > 0 {
			score += s
			matched = append(matched, field)
		}
	}

	add("title", evt.Title, weightTitle)
	add("location", evt.Location, weightLocation)
	add("tags", strings.Join(evt.Tags, " "), weightTags)
	add("description", evt.Description, weightDescription)
	add("source", evt.Source.Name, weightSource)
	return score, matched
}

func matchesFilters(evt event.Event, opts Options) bool {
	if len(opts.Tags) > 0 && !hasAnyTag(evt, opts.Tags) {
		return false
	}
	if opts.DateFrom != nil && evt.StartDate.Before(*opts.DateFrom) {
		return false
	}
	if opts.DateTo != nil && evt.StartDate.After(*opts.DateTo) {
		return false
	}
	if opts.Location != "" && !strings.Contains(strings.ToLower(evt.Location), strings.ToLower(opts.Location)) {
		return false
	}
	return true
}

func bonusFor(evt event.Event, opts Options) float64 {
	var bonus float64
	if len(opts.Tags) > 0 {
		bonus += filterBonus
	}
	if opts.DateFrom != nil || opts.DateTo != nil {
		bonus += filterBonus
	}
	if opts.Location != "" {
		bonus += filterBonus
	}
	return bonus
}

func hasAnyTag(evt event.Event, tags []string) bool {
	for _, want := range tags {
		if evt.HasTag(want) {
			return true
		}
	}
	return false
}

func truncate(results []Result, maxResults int) []Result {
	switch {
	case maxResults == Unlimited:
		return results
	case maxResults <= 0:
		maxResults = DefaultMaxResults
	}
	if len(results) > maxResults {
		return results[:maxResults]
	}
	return results
}

// SuggestEvents returns up to limit distinct words from event titles,
// locations, and tags that start with the partial query.
func SuggestEvents(events []event.Event, partial string, limit int) []string {
	prefix := strings.ToLower(strings.TrimSpace(partial))
	if prefix == "" || limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var suggestions []string
	collect := func(text string) {
		for _, word := range prefixWords(text, prefix) {
			key := strings.ToLower(word)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			suggestions = append(suggestions, word)
		}
	}

	for _, evt := range events {
		if len(suggestions) >= limit {
			break
		}
		collect(evt.Title)
		collect(evt.Location)
		collect(strings.Join(evt.Tags, " "))
	}
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
