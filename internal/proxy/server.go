package proxy

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"

	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
)

// ServerConfig holds the relay's allow-lists and upstream timeouts.
type ServerConfig struct {
	// AllowedHosts may be fetched through the content proxy. Subdomains of
	// each entry are allowed as well.
	AllowedHosts []string
	// ImageHosts may be fetched through the image proxy.
	ImageHosts   []string
	Timeout      time.Duration
	ImageTimeout time.Duration
}

// DefaultServerConfig returns the production allow-lists: the municipal
// site, the calendar vendors the town's organizations publish through, and
// the image hosts their feeds reference.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		AllowedHosts: []string{
			"stoneham-ma.gov",
			"stonehamchamber.org",
			"stonehamcan.org",
			"noblenet.org",
			"eventkeeper.com",
			"google.com",
			"googleapis.com",
			"calendar.google.com",
		},
		ImageHosts: []string{
			"s3.amazonaws.com",
			"storage.googleapis.com",
			"lh3.googleusercontent.com",
			"googleusercontent.com",
			"stoneham-ma.gov",
			"stonehamchamber.org",
		},
		Timeout:      10 * time.Second,
		ImageTimeout: 15 * time.Second,
	}
}

// Server implements the two relay endpoints.
type Server struct {
	cfg         ServerConfig
	client      *http.Client
	imageClient *http.Client
}

// NewServer creates a relay server with the given configuration.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ImageTimeout == 0 {
		cfg.ImageTimeout = 15 * time.Second
	}
	return &Server{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		imageClient: &http.Client{
			Timeout: cfg.ImageTimeout,
			// Redirects are followed manually so the target can be
			// re-validated against the allow-list.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Routes returns the relay's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.HandleFunc("/proxy", s.handleContent)
	r.HandleFunc("/image-proxy", s.handleImage)
	return r
}

// corsMiddleware allows all origins and short-circuits preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// validateTarget runs the checks shared by both endpoints. It returns the
// target URL, or "" after having written the error response.
func validateTarget(w http.ResponseWriter, r *http.Request, allowed []string) string {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return ""
	}
	target := r.URL.Query().Get("url")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing url parameter"})
		return ""
	}
	if !targetAllowed(target, allowed) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "Domain not allowed"})
		return ""
	}
	return target
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	target := validateTarget(w, r, s.cfg.AllowedHosts)
	if target == "" {
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Invalid target URL", Details: err.Error()})
		return
	}
	// Some calendar vendors serve different markup (or nothing) to
	// non-browser user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Referer", "https://www.stoneham-ma.gov/")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error("content proxy upstream failed", logger.Fields{"url": target}, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Upstream request failed", Details: err.Error()})
		return
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Reading upstream body failed", Details: err.Error()})
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Upstream returned error status",
			Details: resp.Status,
		})
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Contents:   decodeBody(raw, resp.Header.Get("Content-Encoding")),
	})
}

// decodeBody decompresses raw according to encoding, falling back to the raw
// bytes as text when decompression fails.
func decodeBody(raw []byte, encoding string) string {
	var reader io.Reader
	switch encoding {
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return string(raw)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(bytes.NewReader(raw))
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(bytes.NewReader(raw))
	default:
		return string(raw)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
