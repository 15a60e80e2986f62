// Package directory holds the static local-knowledge dataset: attractions,
// businesses, and community services around town. Pages feed these
// collections to the universal search alongside live calendar events.
package directory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Attraction is a point of interest: parks, trails, landmarks, museums.
type Attraction struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Address     string   `json:"address,omitempty" yaml:"address,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Business is a local commercial listing.
type Business struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty"`
	Address     string   `json:"address,omitempty" yaml:"address,omitempty"`
	Phone       string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`
	Rating      float64  `json:"rating,omitempty" yaml:"rating,omitempty"`
	Features    []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// Service is a municipal or community service listing.
type Service struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Address     string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Directory bundles the three collections.
type Directory struct {
	Attractions []Attraction `json:"attractions" yaml:"attractions"`
	Businesses  []Business   `json:"businesses" yaml:"businesses"`
	Services    []Service    `json:"services" yaml:"services"`
}

// Load reads a directory dataset from a YAML file.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory file: %w", err)
	}

	var dir Directory
	if err := yaml.Unmarshal(data, &dir); err != nil {
		return nil, fmt.Errorf("parsing directory file: %w", err)
	}
	return &dir, nil
}

// Builtin returns the built-in Stoneham dataset, used when no directory
// file is configured.
func Builtin() *Directory {
	return &Directory{
		Attractions: []Attraction{
			{
				ID:          "stone-zoo",
				Name:        "Stone Zoo",
				Description: "26-acre zoo on the shore of Spot Pond with animals from around the world.",
				Category:    "family",
				Address:     "149 Pond St, Stoneham, MA 02180",
				URL:         "https://www.zoonewengland.org/stone-zoo",
				Tags:        []string{"family", "outdoors"},
			},
			{
				ID:          "middlesex-fells",
				Name:        "Middlesex Fells Reservation",
				Description: "Over 2,500 acres of hiking trails, ponds, and scenic overlooks.",
				Category:    "outdoors",
				Address:     "4 Woodland Rd, Stoneham, MA 02180",
				URL:         "https://www.mass.gov/locations/middlesex-fells-reservation",
				Tags:        []string{"outdoors", "hiking", "trails"},
			},
			{
				ID:          "spot-pond",
				Name:        "Spot Pond",
				Description: "Reservoir popular for sailing, kayaking, and shoreline walks.",
				Category:    "outdoors",
				Address:     "Woodland Rd, Stoneham, MA 02180",
				Tags:        []string{"outdoors", "boating"},
			},
			{
				ID:          "town-common",
				Name:        "Stoneham Town Common",
				Description: "Historic town green hosting concerts, markets, and seasonal festivals.",
				Category:    "community",
				Address:     "Main St, Stoneham, MA 02180",
				Tags:        []string{"community", "history"},
			},
		},
		Businesses: []Business{
			{
				ID:          "stoneham-theatre",
				Name:        "Greater Boston Stage Company",
				Description: "Professional regional theatre presenting plays and musicals year-round.",
				Category:    "arts",
				Address:     "395 Main St, Stoneham, MA 02180",
				URL:         "https://www.greaterbostonstage.org",
				Rating:      4.7,
				Features:    []string{"live performances", "youth programs"},
			},
			{
				ID:          "book-oasis",
				Name:        "The Book Oasis",
				Description: "Independent bookstore with new and used titles and author events.",
				Category:    "retail",
				Address:     "311 Main St, Stoneham, MA 02180",
				Rating:      4.8,
				Features:    []string{"used books", "author events"},
			},
			{
				ID:          "farm-hill-market",
				Name:        "Farm Hill Market",
				Description: "Neighborhood grocery with local produce and prepared foods.",
				Category:    "food",
				Address:     "92 Franklin St, Stoneham, MA 02180",
				Rating:      4.2,
				Features:    []string{"local produce"},
			},
		},
		Services: []Service{
			{
				ID:          "public-library",
				Name:        "Stoneham Public Library",
				Description: "Town library with collections, meeting rooms, and weekly programs.",
				Category:    "education",
				Address:     "431 Main St, Stoneham, MA 02180",
				Phone:       "781-438-1324",
				URL:         "https://www.stonehamlibrary.org",
			},
			{
				ID:          "senior-center",
				Name:        "Stoneham Senior Center",
				Description: "Programs, meals, and transportation for residents 60 and over.",
				Category:    "community",
				Address:     "136 Elm St, Stoneham, MA 02180",
				Phone:       "781-438-1157",
			},
			{
				ID:          "recreation-dept",
				Name:        "Stoneham Recreation Department",
				Description: "Youth sports leagues, summer camps, and field permits.",
				Category:    "recreation",
				Address:     "35 Central St, Stoneham, MA 02180",
				Phone:       "781-279-2640",
			},
		},
	}
}
