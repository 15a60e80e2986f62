// Package config loads the application configuration: proxy endpoint,
// refresh cadence, snapshot location, and the calendar source registry
// that decides which remote systems are contacted.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

// Config is the top-level application configuration.
type Config struct {
	// ProxyBaseURL is the deployed content-proxy endpoint all non-manual
	// fetchers route through. Empty means local development: fetchers
	// short-circuit to empty results.
	ProxyBaseURL string `yaml:"proxy_base_url" json:"proxy_base_url"`

	// RefreshMinutes is the cache TTL and auto-refresh cadence.
	RefreshMinutes int `yaml:"refresh_minutes" json:"refresh_minutes"`

	// MaxEventsPerSource truncates oversized feeds.
	MaxEventsPerSource int `yaml:"max_events_per_source" json:"max_events_per_source"`

	// SnapshotDir enables on-disk persistence of fetch results when set.
	SnapshotDir string `yaml:"snapshot_dir,omitempty" json:"snapshot_dir,omitempty"`

	// DirectoryFile points at a YAML attractions/businesses/services
	// dataset. Empty uses the built-in one.
	DirectoryFile string `yaml:"directory_file,omitempty" json:"directory_file,omitempty"`

	// Sources is the calendar source registry.
	Sources []event.Source `yaml:"sources" json:"sources"`
}

// RefreshInterval returns the refresh cadence as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMinutes) * time.Minute
}

// DefaultConfig returns the built-in Stoneham setup.
func DefaultConfig() *Config {
	return &Config{
		RefreshMinutes:     30,
		MaxEventsPerSource: 100,
		Sources: []event.Source{
			{
				ID:      "town-calendar",
				Name:    "Town of Stoneham",
				Type:    event.TypeRSS,
				URL:     "https://www.stoneham-ma.gov/RSSFeed.aspx?ModID=58&CID=All-calendar.xml",
				Tag:     "government",
				Color:   "#1d4ed8",
				Enabled: true,
			},
			{
				ID:      "library-events",
				Name:    "Stoneham Public Library",
				Type:    event.TypeICalendar,
				URL:     "https://stoneham.noblenet.org/events/feed/ical",
				Tag:     "library",
				Color:   "#047857",
				Enabled: true,
			},
			{
				ID:      "chamber-events",
				Name:    "Stoneham Chamber of Commerce",
				Type:    event.TypeChamber,
				URL:     "https://www.stonehamchamber.org/events/",
				Tag:     "business",
				Color:   "#b45309",
				Enabled: true,
			},
			{
				ID:      "can-events",
				Name:    "Stoneham Community Alliance Network",
				Type:    event.TypeCommunity,
				URL:     "https://www.stonehamcan.org/events",
				Tag:     "events",
				Color:   "#7c3aed",
				Enabled: true,
			},
			{
				ID:      "town-highlights",
				Name:    "Community Highlights",
				Type:    event.TypeManual,
				Tag:     "community",
				Color:   "#be185d",
				Enabled: true,
			},
		},
	}
}

// Normalize fills missing or zero values so partially-filled configs
// still behave.
func (c *Config) Normalize() {
	if c.RefreshMinutes <= 0 {
		c.RefreshMinutes = 30
	}
	if c.MaxEventsPerSource <= 0 {
		c.MaxEventsPerSource = 100
	}
	if c.Sources == nil {
		c.Sources = DefaultConfig().Sources
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// default configuration rather than an error; anything else fails.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration to a YAML file, creating parent
// directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
