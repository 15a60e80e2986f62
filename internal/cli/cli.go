package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/explorestoneham/explorestoneham-sub000/internal/calendar"
	"github.com/explorestoneham/explorestoneham-sub000/internal/config"
	"github.com/explorestoneham/explorestoneham-sub000/internal/directory"
	"github.com/explorestoneham/explorestoneham-sub000/internal/fetch"
	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
	"github.com/explorestoneham/explorestoneham-sub000/internal/proxy"
	"github.com/explorestoneham/explorestoneham-sub000/internal/search"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagFormat  string
	flagVerbose bool

	flagTags     []string
	flagFrom     string
	flagTo       string
	flagLocation string
	flagMax      int
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "townevents",
		Short: "Aggregate and search Stoneham community events",
		Long: `Aggregates events from the town calendar, library, chamber of commerce,
and community feeds into one deduplicated list, and searches across
events and the local directory.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
			}
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (default: built-in sources)")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json (events also supports ics)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newEventsCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newFindCmd())
	cmd.AddCommand(newSourcesCmd())
	cmd.AddCommand(newRefreshCmd())
	return cmd
}

// buildService wires config, proxy client, fetchers, and the calendar
// service together.
func buildService() (*calendar.Service, *config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	client := proxy.NewClient(cfg.ProxyBaseURL)
	registry := fetch.NewRegistry(client, nil)
	svc, err := calendar.New(registry, cfg.Sources, calendar.Config{
		RefreshInterval:    cfg.RefreshInterval(),
		MaxEventsPerSource: cfg.MaxEventsPerSource,
		SnapshotDir:        cfg.SnapshotDir,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing calendar: %w", err)
	}
	return svc, cfg, nil
}

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Fetch and print the consolidated upcoming event list",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := buildService()
			if err != nil {
				return err
			}

			events := svc.ConsolidateEvents(cmd.Context())
			return WriteEvents(os.Stdout, events, OutputFormat(flagFormat))
		},
	}
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search upcoming events by text, tags, dates, and location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := buildService()
			if err != nil {
				return err
			}

			opts := search.Options{
				Tags:       flagTags,
				Location:   flagLocation,
				MaxResults: flagMax,
			}
			if len(args) > 0 {
				opts.Query = args[0]
			}
			if opts.DateFrom, err = parseDateFlag(flagFrom); err != nil {
				return err
			}
			if opts.DateTo, err = parseDateFlag(flagTo); err != nil {
				return err
			}

			events := svc.ConsolidateEvents(cmd.Context())
			results := search.SearchEvents(events, opts)
			return WriteSearchResults(os.Stdout, opts.Query, results, OutputFormat(flagFormat))
		},
	}

	cmd.Flags().StringSliceVar(&flagTags, "tags", nil, "Only events carrying one of these tags")
	cmd.Flags().StringVar(&flagFrom, "from", "", "Earliest start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagTo, "to", "", "Latest start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagLocation, "location", "", "Only events whose location contains this text")
	cmd.Flags().IntVar(&flagMax, "max", 0, "Maximum results (0 = default cap)")
	return cmd
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Search events, attractions, businesses, and services together",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := buildService()
			if err != nil {
				return err
			}

			dir := directory.Builtin()
			if cfg.DirectoryFile != "" {
				if dir, err = directory.Load(cfg.DirectoryFile); err != nil {
					return err
				}
			}

			corpus := search.Corpus{
				Events:      svc.ConsolidateEvents(cmd.Context()),
				Attractions: dir.Attractions,
				Businesses:  dir.Businesses,
				Services:    dir.Services,
			}
			resp := search.SearchAll(corpus, args[0], search.UniversalOptions{})
			return WriteUniversalResults(os.Stdout, resp, OutputFormat(flagFormat))
		},
	}
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured calendar sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := buildService()
			if err != nil {
				return err
			}
			return WriteSources(os.Stdout, svc.Sources(), OutputFormat(flagFormat))
		},
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a full refetch of every source",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := buildService()
			if err != nil {
				return err
			}

			events := svc.RefreshEvents(cmd.Context())
			fmt.Fprintf(os.Stdout, "Refreshed %d upcoming events.\n", len(events))
			return nil
		},
	}
}

func parseDateFlag(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return &t, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
