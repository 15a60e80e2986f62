package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrRateLimited reports that the upstream source throttled the proxy.
// Fetchers treat it as "no data this cycle", not as a hard failure.
var ErrRateLimited = errors.New("proxy: upstream rate limited")

// ErrUnavailable reports that no proxy base URL is configured. This is the
// normal state in local development, where the relay is not deployed.
var ErrUnavailable = errors.New("proxy: no proxy configured")

// proxiedImageHosts are object-storage domains whose assets must be routed
// through the image proxy before a browser can load them.
var proxiedImageHosts = []string{
	"s3.amazonaws.com",
	"storage.googleapis.com",
	"lh3.googleusercontent.com",
}

// Client fetches remote text content through the content proxy.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
}

// NewClient creates a proxy client. An empty baseURL yields a client whose
// Available method reports false and whose fetches fail with ErrUnavailable.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxRetries: 2,
	}
}

// Available reports whether a proxy is configured for this environment.
func (c *Client) Available() bool {
	return c.baseURL != ""
}

// envelope is the content proxy's JSON response shape.
type envelope struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Contents   string `json:"contents"`
	Error      string `json:"error,omitempty"`
	Details    string `json:"details,omitempty"`
}

// FetchText retrieves the target URL's decoded body through the content
// proxy, retrying transient failures with exponential backoff. Rate limiting
// is surfaced as ErrRateLimited without retrying.
func (c *Client) FetchText(ctx context.Context, target string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	reqURL := fmt.Sprintf("%s/proxy?url=%s", c.baseURL, url.QueryEscape(target))

	var contents string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("proxy request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading proxy response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return backoff.Permanent(ErrRateLimited)
		case resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(fmt.Errorf("proxy refused %s: %s", target, string(body)))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("proxy returned status %d", resp.StatusCode)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding proxy envelope: %w", err))
		}
		if env.Status == http.StatusTooManyRequests {
			return backoff.Permanent(ErrRateLimited)
		}
		contents = env.Contents
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return contents, nil
}

// RewriteImageURL routes images on known object-storage hosts through the
// image proxy. Other URLs pass through unchanged.
func (c *Client) RewriteImageURL(raw string) string {
	if raw == "" || !c.Available() {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if !hostMatches(u.Hostname(), proxiedImageHosts) {
		return raw
	}
	return fmt.Sprintf("%s/image-proxy?url=%s", c.baseURL, url.QueryEscape(raw))
}

// hostMatches reports whether host equals, or is a subdomain of, any entry.
func hostMatches(host string, allowed []string) bool {
	host = strings.ToLower(host)
	for _, a := range allowed {
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}
