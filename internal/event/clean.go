package event

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

var whitespacePattern = regexp.MustCompile(`\s+`)

// StripHTML removes all markup from s and collapses whitespace.
func StripHTML(s string) string {
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// redundantLabels are feed boilerplate echoed inside descriptions; the same
// information already lives in the structured fields.
var redundantLabels = regexp.MustCompile(
	`(?i)(Event date[s]?:|Event time[s]?:|Date:|Time:|Location:|Address:)\s*`)

// trivialDescriptions add nothing over the title and are dropped outright.
var trivialDescriptions = map[string]bool{
	"event":   true,
	"events":  true,
	"meeting": true,
	"n/a":     true,
	"tbd":     true,
}

// CleanDescription strips HTML and feed boilerplate from a description,
// returning "" when what remains carries no information.
func CleanDescription(s string) string {
	s = StripHTML(s)
	s = redundantLabels.ReplaceAllString(s, "")

	// Drop empty pipe-separated segments ("7:00 PM | | Town Hall").
	parts := strings.Split(s, "|")
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	s = strings.Join(kept, " | ")
	s = strings.TrimSpace(s)

	if len(s) < 4 || trivialDescriptions[strings.ToLower(s)] {
		return ""
	}
	return s
}
