// Package event provides the normalized calendar event model shared by every
// fetcher and by the aggregation and search layers.
//
// Events from heterogeneous sources (town RSS feeds, library iCalendar
// subscriptions, scraped chamber pages, the manual list) are all reduced to
// the Event type defined here. Each event carries a deterministic SHA1-based
// ID derived from its source and a stable per-source seed, so the same
// logical event resolves to the same ID across fetches. The package also owns
// the cross-source deduplication key and the merge rules applied when two
// sources describe the same physical event.
package event
