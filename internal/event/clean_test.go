package event

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "tags removed",
			input: "<p>Concert on the <b>Common</b></p>",
			want:  "Concert on the Common",
		},
		{
			name:  "entities decoded",
			input: "Arts &amp; Crafts Fair",
			want:  "Arts & Crafts Fair",
		},
		{
			name:  "whitespace collapsed",
			input: "Town\n\n  Meeting",
			want:  "Town Meeting",
		},
		{
			name:  "plain text untouched",
			input: "Recycling Center open house",
			want:  "Recycling Center open house",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "labels stripped",
			input: "Event date: September 15 Time: 7:00 PM Location: Town Hall — public hearing on zoning",
			want:  "September 15 7:00 PM Town Hall — public hearing on zoning",
		},
		{
			name:  "empty pipe segments dropped",
			input: "7:00 PM | | Town Hall",
			want:  "7:00 PM | Town Hall",
		},
		{
			name:  "bare event label collapses to empty",
			input: "<div>Event</div>",
			want:  "",
		},
		{
			name:  "bare meeting collapses to empty",
			input: "Meeting",
			want:  "",
		},
		{
			name:  "too short collapses to empty",
			input: "tbd",
			want:  "",
		},
		{
			name:  "real content survives",
			input: "<p>Annual tree lighting with carols and hot chocolate.</p>",
			want:  "Annual tree lighting with carols and hot chocolate.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanDescription(tt.input); got != tt.want {
				t.Errorf("CleanDescription(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
