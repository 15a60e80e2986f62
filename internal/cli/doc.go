// Package cli implements the command-line interface for townevents.
//
// The cli package provides the Cobra-based CLI with subcommands for
// consolidating events, searching them, cross-searching the local
// directory, listing sources, and forcing refreshes. It coordinates the
// config, fetch, calendar, and search packages and formats output as
// text, JSON, or an iCalendar feed.
package cli
