package fetch

import (
	"strings"

	"github.com/explorestoneham/explorestoneham-sub000/internal/event"
)

// categoryKeywords drive auto-categorization for sources whose configured
// tag is the generic catch-all. Order matters: the first category with a
// keyword hit wins.
var categoryKeywords = []struct {
	tag      string
	keywords []string
}{
	{"recreation", []string{
		"recreation", "sports", "hike", "hiking", "swim", "pool", "golf",
		"skating", "fitness", "yoga", "playground", "field", "league",
	}},
	{"government", []string{
		"select board", "town meeting", "board of", "committee", "commission",
		"hearing", "town hall", "zoning", "planning", "election", "ballot",
	}},
	{"schools", []string{
		"school", "pta", "pto", "student", "kindergarten", "graduation",
		"back to school",
	}},
	{"community", []string{
		"farmers market", "volunteer", "fundraiser", "food drive", "senior",
		"library", "storytime", "book club", "blood drive", "community",
	}},
	{"arts", []string{
		"concert", "music", "theater", "theatre", "art", "gallery", "band",
		"chorus", "dance", "film", "craft",
	}},
}

// fallbackTag applies when no keyword set matches.
const fallbackTag = "town"

// Categorize inspects an event's text and assigns a category tag. Only used
// for sources carrying the generic tag; specific source tags pass through
// untouched upstream of this call.
func Categorize(title, description, location string) string {
	text := strings.ToLower(title + " " + description + " " + location)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				return c.tag
			}
		}
	}
	return fallbackTag
}

// tagsFor resolves an event's tags: a specific source tag is used verbatim,
// the generic catch-all triggers keyword categorization.
func tagsFor(srcTag, title, description, location string) []string {
	if srcTag != "" && srcTag != event.GenericTag {
		return []string{srcTag}
	}
	return []string{Categorize(title, description, location)}
}
