package fetch

import (
	"context"
	"net/url"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
	"github.com/explorestoneham/explorestoneham-sub000/internal/proxy"
)

// Fetcher turns one source into normalized events. Implementations never
// return an error: failures are logged and yield an empty slice.
type Fetcher interface {
	Fetch(ctx context.Context, src event.Source) []event.Event
}

// Registry maps source types to their fetchers.
type Registry struct {
	fetchers map[event.SourceType]Fetcher
}

// NewRegistry builds the standard fetcher set on top of a shared proxy
// client. manualEvents seeds the manual fetcher; nil uses the built-in list.
func NewRegistry(client *proxy.Client, manualEvents []event.Event) *Registry {
	if manualEvents == nil {
		manualEvents = DefaultManualEvents()
	}
	return &Registry{
		fetchers: map[event.SourceType]Fetcher{
			event.TypeManual:    NewManual(manualEvents),
			event.TypeRSS:       NewRSS(client),
			event.TypeICalendar: NewICal(client),
			event.TypeChamber:   NewChamber(client),
			event.TypeCommunity: NewCommunity(client),
		},
	}
}

// Register installs or replaces the fetcher for a source type.
func (r *Registry) Register(t event.SourceType, f Fetcher) {
	r.fetchers[t] = f
}

// ForSource returns the fetcher handling the source's type, or nil when the
// type is unknown.
func (r *Registry) ForSource(src event.Source) Fetcher {
	return r.fetchers[src.Type]
}

// resolveURL absolutizes ref against the source's site root. Already
// absolute URLs pass through; unparseable input returns "".
func resolveURL(siteURL, ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(siteURL)
	if err != nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	return u.String()
}
