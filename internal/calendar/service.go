package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
	"github.com/explorestoneham/explorestoneham-sub000/internal/fetch"
	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
)

const (
	// DefaultRefreshInterval is the cache TTL: how long a source's events
	// are served without refetching.
	DefaultRefreshInterval = 30 * time.Minute
	// DefaultMaxEventsPerSource truncates oversized feeds.
	DefaultMaxEventsPerSource = 100
)

// Config tunes the orchestrator.
type Config struct {
	RefreshInterval    time.Duration
	MaxEventsPerSource int
	// SnapshotDir enables disk persistence of per-source results when
	// non-empty, letting a fresh process serve stale data immediately.
	SnapshotDir string
}

// Service aggregates events across all configured sources.
type Service struct {
	mu        sync.Mutex
	sources   []event.Source
	cache     *Cache
	fetchers  *fetch.Registry
	snapshots *SnapshotStore
	maxEvents int
	now       func() time.Time

	refreshMu  sync.Mutex
	inFlight   bool
	cronRunner cronStopper
}

type cronStopper interface{ Stop() context.Context }

// New creates a calendar service over the given fetcher registry and
// initial source list.
func New(fetchers *fetch.Registry, sources []event.Source, cfg Config) (*Service, error) {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.MaxEventsPerSource <= 0 {
		cfg.MaxEventsPerSource = DefaultMaxEventsPerSource
	}

	s := &Service{
		sources:   append([]event.Source(nil), sources...),
		cache:     NewCache(cfg.RefreshInterval),
		fetchers:  fetchers,
		maxEvents: cfg.MaxEventsPerSource,
		now:       time.Now,
	}

	if cfg.SnapshotDir != "" {
		store, err := NewSnapshotStore(cfg.SnapshotDir)
		if err != nil {
			return nil, fmt.Errorf("opening snapshot store: %w", err)
		}
		s.snapshots = store
		s.warmFromSnapshots()
	}

	return s, nil
}

// warmFromSnapshots pre-populates the cache from disk so the first
// consolidation can serve stale data while live fetches run.
func (s *Service) warmFromSnapshots() {
	for _, src := range s.Sources() {
		events, savedAt, err := s.snapshots.Load(src.ID)
		if err != nil {
			continue
		}
		s.cache.SetAt(src.ID, events, savedAt)
	}
}

// FetchEvents returns one source's events: fresh cache if available,
// otherwise a live fetch. A failed fetch falls back to the stale cache
// entry, or an empty list when none exists.
func (s *Service) FetchEvents(ctx context.Context, src event.Source) []event.Event {
	if events, ok := s.cache.Get(src.ID); ok {
		return events
	}

	fetcher := s.fetchers.ForSource(src)
	if fetcher == nil {
		logger.Warn("no fetcher for source type", logger.Fields{"source": src.ID, "type": string(src.Type)})
		return nil
	}

	events := fetcher.Fetch(ctx, src)
	if len(events) == 0 {
		// The fetcher swallowed a failure (or the feed is empty). Prefer
		// whatever we had before over surfacing an empty calendar.
		if stale, ok := s.cache.GetStale(src.ID); ok && len(stale) > 0 {
			logger.Warn("serving stale events after fetch failure", logger.Fields{"source": src.ID, "events": len(stale)})
			return stale
		}
	}

	if len(events) > s.maxEvents {
		events = events[:s.maxEvents]
	}

	s.cache.Set(src.ID, events)
	if s.snapshots != nil {
		if err := s.snapshots.Save(src.ID, events, s.now()); err != nil {
			logger.Warn("snapshot save failed", logger.Fields{"source": src.ID, "error": err.Error()})
		}
	}
	return events
}

// ConsolidateEvents fetches all enabled sources in parallel and returns the
// merged, deduplicated, future-only event list sorted by start time. When
// sources is non-empty it restricts the fan-out to that subset.
func (s *Service) ConsolidateEvents(ctx context.Context, sources ...event.Source) []event.Event {
	started := s.now()

	if len(sources) == 0 {
		sources = s.enabledSources()
	}

	// One goroutine per source; results keep registry order so merge
	// conflicts resolve in favor of earlier-listed sources.
	results := make([][]event.Event, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src event.Source) {
			defer wg.Done()
			results[i] = s.FetchEvents(ctx, src)
		}(i, src)
	}
	wg.Wait()

	var all []event.Event
	for _, events := range results {
		all = append(all, events...)
	}

	merged := event.Dedupe(all)
	event.SortByStart(merged)
	upcoming := event.FilterUpcoming(merged, s.now())

	logger.RecordTiming("calendar.consolidate", time.Since(started))
	logger.Info("events consolidated", logger.Fields{
		"sources":  len(sources),
		"fetched":  len(all),
		"upcoming": len(upcoming),
	})
	return upcoming
}

// RefreshEvents clears the cache and consolidates from scratch.
func (s *Service) RefreshEvents(ctx context.Context) []event.Event {
	s.cache.Clear()
	return s.ConsolidateEvents(ctx)
}

// Sources returns a copy of the registry.
func (s *Service) Sources() []event.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Source(nil), s.sources...)
}

func (s *Service) enabledSources() []event.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Source, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out
}

// AddSource appends a source to the registry.
func (s *Service) AddSource(src event.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, src)
}

// RemoveSource deletes a source and evicts its cache entry.
func (s *Service) RemoveSource(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, src := range s.sources {
		if src.ID == id {
			s.sources = append(s.sources[:i], s.sources[i+1:]...)
			s.cache.Evict(id)
			return true
		}
	}
	return false
}

// EnableSource marks a source enabled.
func (s *Service) EnableSource(id string) bool { return s.setEnabled(id, true) }

// DisableSource marks a source disabled. Its cache entry is kept so
// re-enabling does not force an immediate refetch.
func (s *Service) DisableSource(id string) bool { return s.setEnabled(id, false) }

func (s *Service) setEnabled(id string, enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sources {
		if s.sources[i].ID == id {
			s.sources[i].Enabled = enabled
			return true
		}
	}
	return false
}
