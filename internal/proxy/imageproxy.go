package proxy

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/explorestoneham/explorestoneham-sub000/internal/logger"
)

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	target := validateTarget(w, r, s.cfg.ImageHosts)
	if target == "" {
		return
	}

	resp, err := s.fetchImage(r, target)
	if err != nil {
		logger.Error("image proxy upstream failed", logger.Fields{"url": target}, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Upstream request failed", Details: err.Error()})
		return
	}
	defer resp.Body.Close()

	// One manual redirect hop, re-validated against the allow-list.
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		resp.Body.Close()
		if location == "" {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Redirect without location"})
			return
		}
		if !targetAllowed(location, s.cfg.ImageHosts) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "Domain not allowed"})
			return
		}
		resp, err = s.fetchImage(r, location)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Upstream request failed", Details: err.Error()})
			return
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Upstream returned error status",
			Details: resp.Status,
		})
		return
	}

	w.Header().Set("Content-Type", imageContentType(resp, target))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, resp.Body)
}

func (s *Server) fetchImage(r *http.Request, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")
	return s.imageClient.Do(req)
}

// imageContentType infers the response content type: upstream header first,
// then the URL's file extension, then image/jpeg.
func imageContentType(resp *http.Response, target string) string {
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if u, err := url.Parse(target); err == nil {
		if ct := mime.TypeByExtension(path.Ext(u.Path)); ct != "" {
			return ct
		}
	}
	return "image/jpeg"
}

// targetAllowed parses the target and checks its hostname against allowed.
// Unparseable URLs are rejected.
func targetAllowed(target string, allowed []string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" {
		return false
	}
	return hostMatches(u.Hostname(), allowed)
}
