// Package calendar orchestrates event aggregation across all configured
// sources.
//
// The Service fans fetches out in parallel, caches per-source results with a
// TTL, merges and deduplicates the union, and serves stale data in
// preference to nothing when a source fails. It also owns runtime source
// management, the optional periodic auto-refresh, disk snapshots, and ICS
// export of the consolidated calendar.
package calendar
