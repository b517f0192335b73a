package transcript

import (
	"strings"
	"testing"
)

func TestIsValidEarningsCallTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Q1 2024 Earnings Call", true},
		{"q1 2024 earnings call", true}, // case-insensitive
		{"Q4 2023 Earnings Call", true},
		{"Q1 2024 Earnings Call Transcript", false}, // extra words
		{"Full Year 2024 Earnings Call", false},
		{"Q1 2024 Conference Presentation", false},
		{"Earnings Call Q1 2024", false}, // wrong ordering
		{"Q5 2024 Earnings Call", false},
		{"Q1 1999 Earnings Call", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidEarningsCallTitle(tt.title); got != tt.want {
			t.Errorf("IsValidEarningsCallTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func xmlWithTitle(title string) []byte {
	return []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript><meta><title>` + title + `</title><date>2024-02-28</date></meta>
<body><section>...</section></body></transcript>`)
}

func TestExtractTitlePeriod(t *testing.T) {
	tests := []struct {
		name             string
		xml              []byte
		wantQ, wantY     string
		wantTitlePrefix  string
	}{
		{
			name:  "earnings call title",
			xml:   xmlWithTitle("Q1 2024 Earnings Call"),
			wantQ: "Q1", wantY: "2024",
			wantTitlePrefix: "Q1 2024 Earnings Call",
		},
		{
			name:  "period embedded in longer title",
			xml:   xmlWithTitle("Royal Bank Q3 2023 Analyst Day"),
			wantQ: "Q3", wantY: "2023",
			wantTitlePrefix: "Royal Bank Q3 2023 Analyst Day",
		},
		{
			name:  "no period in title",
			xml:   xmlWithTitle("Annual Shareholder Meeting"),
			wantQ: UnknownPeriod, wantY: UnknownPeriod,
			wantTitlePrefix: "Annual Shareholder Meeting",
		},
		{
			name:  "unparseable document",
			xml:   []byte("this is not xml"),
			wantQ: UnknownPeriod, wantY: UnknownPeriod,
			wantTitlePrefix: "Error parsing:",
		},
		{
			name:  "missing title element",
			xml:   []byte(`<transcript><meta><date>2024-01-01</date></meta></transcript>`),
			wantQ: UnknownPeriod, wantY: UnknownPeriod,
			wantTitlePrefix: "No title found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, y, title := ExtractTitlePeriod(tt.xml)
			if q != tt.wantQ || y != tt.wantY {
				t.Errorf("period = %s/%s, want %s/%s", q, y, tt.wantQ, tt.wantY)
			}
			if !strings.HasPrefix(title, tt.wantTitlePrefix) {
				t.Errorf("title = %q, want prefix %q", title, tt.wantTitlePrefix)
			}
		})
	}
}

func TestExtractTitlePeriodNamespaced(t *testing.T) {
	doc := []byte(`<?xml version="1.0"?>
<transcript xmlns="http://example.com/transcripts/v1">
  <meta><title>Q2 2025 Earnings Call</title></meta>
</transcript>`)
	q, y, title := ExtractTitlePeriod(doc)
	if q != "Q2" || y != "2025" {
		t.Errorf("period = %s/%s, want Q2/2025", q, y)
	}
	if title != "Q2 2025 Earnings Call" {
		t.Errorf("title = %q", title)
	}
}
