// Package fetch translates each configured source type's raw payload into
// normalized events.
//
// One fetcher exists per source type: the manual in-memory list, the town's
// RSS feed, iCalendar subscriptions with recurrence expansion, and two
// HTML-scraped calendar sites. Every fetcher honors the same contract:
// Fetch never propagates an error past its own boundary. Remote failures,
// rate limits, and malformed payloads are logged and degrade to an empty
// result so that one broken feed can never take down the aggregated
// calendar.
package fetch
