package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

// SnapshotStore persists per-source fetch results as JSON files so a fresh
// process can serve yesterday's calendar while live fetches run.
type SnapshotStore struct {
	dataDir string
}

// snapshot is the on-disk format for one source's events.
type snapshot struct {
	SourceID string        `json:"sourceId"`
	SavedAt  string        `json:"savedAt"`
	Events   []event.Event `json:"events"`
}

var snapshotIDPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// NewSnapshotStore opens (creating if needed) a snapshot directory.
func NewSnapshotStore(dataDir string) (*SnapshotStore, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	return &SnapshotStore{dataDir: dataDir}, nil
}

func (s *SnapshotStore) path(sourceID string) string {
	name := snapshotIDPattern.ReplaceAllString(sourceID, "_")
	return filepath.Join(s.dataDir, fmt.Sprintf("snapshot_%s.json", name))
}

// Save writes one source's events to disk.
func (s *SnapshotStore) Save(sourceID string, events []event.Event, at time.Time) error {
	snap := snapshot{
		SourceID: sourceID,
		SavedAt:  at.UTC().Format(time.RFC3339),
		Events:   events,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := os.WriteFile(s.path(sourceID), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load reads one source's events back, along with when they were saved.
// A missing snapshot is reported as an error.
func (s *SnapshotStore) Load(sourceID string) ([]event.Event, time.Time, error) {
	data, err := os.ReadFile(s.path(sourceID))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, time.Time{}, fmt.Errorf("parsing snapshot: %w", err)
	}

	savedAt, err := time.Parse(time.RFC3339, snap.SavedAt)
	if err != nil {
		savedAt = time.Time{}
	}
	return snap.Events, savedAt, nil
}
