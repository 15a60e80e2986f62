// Package search ranks events and directory items against free-text
// queries. Both entry points are pure functions of their inputs: callers
// pass whatever dataset they have already loaded, and no index or state
// persists between calls.
//
// SearchEvents treats the query as a hard gate and its structural filters
// (tags, date range, location) as hard exclusions with a small score
// bonus. SearchAll has no gate: every item scoring at or above a floor is
// returned, both as a flat ranked list and partitioned by item type.
package search
