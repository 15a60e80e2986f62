// Package proxy implements both halves of the content-proxy boundary.
//
// The browser-facing site and the Go fetchers cannot pull third-party feed
// and calendar content directly: the remote sites do not send CORS headers
// and some of them rate-limit unfamiliar clients. All remote content
// therefore flows through two small relay endpoints with fixed hostname
// allow-lists: a generic text proxy (HTML, RSS XML, iCalendar) and a binary
// image proxy.
//
// Server carries the relay handlers; Client is the typed consumer used by
// the fetchers, with retry on transient upstream failures.
package proxy
