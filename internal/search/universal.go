package search

import (
	"sort"
	"strings"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/directory"
	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

// ItemType discriminates the shapes a universal search result can hold.
type ItemType string

const (
	ItemEvent      ItemType = "event"
	ItemAttraction ItemType = "attraction"
	ItemBusiness   ItemType = "business"
	ItemService    ItemType = "service"
)

// Item is a tagged union over the four searchable shapes. Exactly one
// pointer is non-nil, matching Type.
type Item struct {
	Type       ItemType              `json:"type"`
	Event      *event.Event          `json:"event,omitempty"`
	Attraction *directory.Attraction `json:"attraction,omitempty"`
	Business   *directory.Business   `json:"business,omitempty"`
	Service    *directory.Service    `json:"service,omitempty"`
}

// Name returns the item's display name regardless of shape.
func (it Item) Name() string {
	switch it.Type {
	case ItemEvent:
		return it.Event.Title
	case ItemAttraction:
		return it.Attraction.Name
	case ItemBusiness:
		return it.Business.Name
	case ItemService:
		return it.Service.Name
	}
	return ""
}

// Corpus is the full searchable dataset a page has loaded.
type Corpus struct {
	Events      []event.Event
	Attractions []directory.Attraction
	Businesses  []directory.Business
	Services    []directory.Service
}

// UniversalOptions tunes a cross-type search.
type UniversalOptions struct {
	// MinScore is the inclusion floor; items scoring below it are
	// dropped. Zero uses DefaultMinScore.
	MinScore float64
	// MaxResults of 0 keeps the default cap; use Unlimited for no cap.
	MaxResults int
	// Now anchors the event recency boost. Zero means time.Now().
	Now time.Time
}

// DefaultMinScore is the score floor when UniversalOptions.MinScore is unset.
const DefaultMinScore = 0.1

// Recency and quality boosts.
const (
	recencyWindow   = 30 * 24 * time.Hour
	upcomingBoost   = 1.2
	pastPenalty     = 0.8
	ratingBoost     = 1.1
	ratingThreshold = 4.0
	weightFeatures  = 1.8
	weightCategory  = 2.0
	weightAddress   = 1.0
)

// UniversalResult is one scored item.
type UniversalResult struct {
	Item          Item     `json:"item"`
	Score         float64  `json:"score"`
	MatchedFields []string `json:"matched_fields,omitempty"`
}

// UniversalResponse carries both presentation shapes of the same ranked
// results: a flat merged list and a per-type partition.
type UniversalResponse struct {
	Query        string                         `json:"query"`
	Results      []UniversalResult              `json:"results"`
	ByType       map[ItemType][]UniversalResult `json:"by_type"`
	ResultCounts map[ItemType]int               `json:"result_counts"`
}

// SearchAll scores every item in the corpus against the query and returns
// those at or above the score floor. There is no hard gate: an empty query
// simply yields no results above the floor.
func SearchAll(corpus Corpus, query string, opts UniversalOptions) UniversalResponse {
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	scorer := newTextScorer(query)

	var results []UniversalResult
	add := func(item Item, score float64, matched []string) {
		if score >= opts.MinScore {
			results = append(results, UniversalResult{Item: item, Score: score, MatchedFields: matched})
		}
	}

	for i := range corpus.Events {
		evt := &corpus.Events[i]
		score, matched := scoreUniversalEvent(scorer, evt, now)
		add(Item{Type: ItemEvent, Event: evt}, score, matched)
	}
	for i := range corpus.Attractions {
		a := &corpus.Attractions[i]
		score, matched := scoreAttraction(scorer, a)
		add(Item{Type: ItemAttraction, Attraction: a}, score, matched)
	}
	for i := range corpus.Businesses {
		b := &corpus.Businesses[i]
		score, matched := scoreBusiness(scorer, b)
		add(Item{Type: ItemBusiness, Business: b}, score, matched)
	}
	for i := range corpus.Services {
		svc := &corpus.Services[i]
		score, matched := scoreService(scorer, svc)
		add(Item{Type: ItemService, Service: svc}, score, matched)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	max := opts.MaxResults
	switch {
	case max == Unlimited:
	case max <= 0:
		max = DefaultMaxResults
	}
	if max != Unlimited && len(results) > max {
		results = results[:max]
	}

	resp := UniversalResponse{
		Query:        query,
		Results:      results,
		ByType:       make(map[ItemType][]UniversalResult),
		ResultCounts: make(map[ItemType]int),
	}
	for _, r := range results {
		resp.ByType[r.Item.Type] = append(resp.ByType[r.Item.Type], r)
		resp.ResultCounts[r.Item.Type]++
	}
	return resp
}

func scoreUniversalEvent(scorer *textScorer, evt *event.Event, now time.Time) (float64, []string) {
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

	// Soon-starting events surface above long-off or already-past ones.
	switch {
	case evt.StartDate.Before(now):
		score *= pastPenalty
	case evt.StartDate.Sub(now) <= recencyWindow:
		score *= upcomingBoost
	}
	return score, matched
}

func scoreAttraction(scorer *textScorer, a *directory.Attraction) (float64, []string) {
	var score float64
	var matched []string
	add := func(field, text string, weight float64) {
		if s := scorer.scoreField(text, weight); s > 0 {
			score += s
			matched = append(matched, field)
		}
	}

	add("name", a.Name, weightTitle)
	add("category", a.Category, weightCategory)
	add("tags", strings.Join(a.Tags, " "), weightTags)
	add("description", a.Description, weightDescription)
	add("address", a.Address, weightAddress)
	return score, matched
}

func scoreBusiness(scorer *textScorer, b *directory.Business) (float64, []string) {
	var score float64
	var matched []string
	add := func(field, text string, weight float64) {
		if s := scorer.scoreField(text, weight); s > 0 {
			score += s
			matched = append(matched, field)
		}
	}

	add("name", b.Name, weightTitle)
	add("category", b.Category, weightCategory)
	add("features", strings.Join(b.Features, " "), weightFeatures)
	add("description", b.Description, weightDescription)
	add("address", b.Address, weightAddress)

	if b.Rating >= ratingThreshold {
		score *= ratingBoost
	}
	return score, matched
}

func scoreService(scorer *textScorer, svc *directory.Service) (float64, []string) {
	var score float64
	var matched []string
	add := func(field, text string, weight float64) {
		if s := scorer.scoreField(text, weight); s > 0 {
			score += s
			matched = append(matched, field)
		}
	}

	add("name", svc.Name, weightTitle)
	add("category", svc.Category, weightCategory)
	add("description", svc.Description, weightDescription)
	add("address", svc.Address, weightAddress)
	return score, matched
}

// SuggestAll returns up to limit distinct prefix-matching words drawn
// uniformly from every collection's names, categories, and tags.
func SuggestAll(corpus Corpus, partial string, limit int) []string {
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

	for _, evt := range corpus.Events {
		collect(evt.Title)
		collect(evt.Location)
		collect(strings.Join(evt.Tags, " "))
	}
	for _, a := range corpus.Attractions {
		collect(a.Name)
		collect(a.Category)
		collect(strings.Join(a.Tags, " "))
	}
	for _, b := range corpus.Businesses {
		collect(b.Name)
		collect(b.Category)
		collect(strings.Join(b.Features, " "))
	}
	for _, svc := range corpus.Services {
		collect(svc.Name)
		collect(svc.Category)
	}

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
