package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
)

// StartAutoRefresh schedules a background refresh at the given interval.
// Overlapping runs are skipped rather than queued. Returns an error if a
// refresher is already running.
func (s *Service) StartAutoRefresh(interval time.Duration) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.cronRunner != nil {
		return fmt.Errorf("auto-refresh already running")
	}
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), s.refreshTick); err != nil {
		return fmt.Errorf("scheduling refresh: %w", err)
	}
	c.Start()
	s.cronRunner = c

	logger.Info("auto-refresh started", logger.Fields{"interval": interval.String()})
	return nil
}

// StopAutoRefresh halts the background refresher and waits for any
// in-progress run to finish.
func (s *Service) StopAutoRefresh() {
	s.refreshMu.Lock()
	runner := s.cronRunner
	s.cronRunner = nil
	s.refreshMu.Unlock()

	if runner == nil {
		return
	}
	<-runner.Stop().Done()
	logger.Info("auto-refresh stopped", nil)
}

func (s *Service) refreshTick() {
	s.refreshMu.Lock()
	if s.inFlight {
		s.refreshMu.Unlock()
		logger.Warn("refresh still in progress, skipping tick", nil)
		return
	}
	s.inFlight = true
	s.refreshMu.Unlock()

	defer func() {
		s.refreshMu.Lock()
		s.inFlight = false
		s.refreshMu.Unlock()
	}()

	events := s.RefreshEvents(context.Background())
	logger.IncrCounter("calendar.auto_refresh", 1)
	logger.Info("background refresh complete", logger.Fields{"events": len(events)})
}
