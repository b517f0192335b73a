package transcript

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

const (
	// UnknownPeriod marks a quarter or year that could not be extracted
	// from the document title.
	UnknownPeriod = "Unknown"

	// RejectionReason is recorded in the invalid-document ledger when a
	// title fails validation.
	RejectionReason = "Title format not 'Qx 20xx Earnings Call'"
)

var (
	periodPattern     = regexp.MustCompile(`(?i)Q([1-4])\s+(20\d{2})`)
	validTitlePattern = regexp.MustCompile(`(?i)^Q[1-4]\s+20\d{2}\s+Earnings\s+Call$`)
)

type transcriptDoc struct {
	Meta struct {
		Title string `xml:"title"`
	} `xml:"meta"`
}

// ExtractTitlePeriod parses the transcript document's embedded title and
// returns the fiscal quarter, year, and the raw title text. Quarter and year
// come from the first "Qx 20xx" occurrence anywhere in the title; both are
// UnknownPeriod when no such occurrence exists. Any parse failure is a
// recoverable per-document condition: the error text is returned in place
// of the title and both period fields are UnknownPeriod.
func ExtractTitlePeriod(xmlContent []byte) (quarter, year, title string) {
	var doc transcriptDoc
	if err := xml.Unmarshal(xmlContent, &doc); err != nil {
		return UnknownPeriod, UnknownPeriod, fmt.Sprintf("Error parsing: %v", err)
	}

	title = strings.TrimSpace(doc.Meta.Title)
	if title == "" {
		return UnknownPeriod, UnknownPeriod, "No title found"
	}

	m := periodPattern.FindStringSubmatch(title)
	if m == nil {
		return UnknownPeriod, UnknownPeriod, title
	}
	return "Q" + m[1], m[2], title
}

// IsValidEarningsCallTitle reports whether title is exactly of the form
// "Qx 20xx Earnings Call" (case-insensitive). The check is intentionally
// narrow: it excludes conference presentations, M&A calls, and other
// non-earnings documents the source query cannot filter out directly.
func IsValidEarningsCallTitle(title string) bool {
	return validTitlePattern.MatchString(title)
}
