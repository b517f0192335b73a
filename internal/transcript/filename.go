package transcript

import (
	"fmt"
	"strings"
)

// ParsedFilename holds the six fields decoded from a canonical transcript
// filename.
type ParsedFilename struct {
	Ticker         string
	Quarter        string
	Year           string
	TranscriptType string
	EventID        string
	VersionID      string
}

// EncodeFilename builds the canonical transcript filename
// {ticker}_{quarter}_{year}_{type}_{eventId}_{versionId}.xml.
// No field may itself contain an underscore; upstream identifiers are
// trusted to satisfy that.
func EncodeFilename(ticker, quarter, year, transcriptType, eventID, versionID string) string {
	return fmt.Sprintf("%s_%s_%s_%s_%s_%s.xml",
		ticker, quarter, year, transcriptType, eventID, versionID)
}

// DecodeFilename parses a canonical transcript filename. It returns nil if
// the name does not end in .xml, does not split into exactly six
// underscore-separated parts, or has an empty ticker, quarter, or year.
func DecodeFilename(filename string) *ParsedFilename {
	base, ok := strings.CutSuffix(filename, ".xml")
	if !ok {
		return nil
	}

	parts := strings.Split(base, "_")
	if len(parts) != 6 {
		return nil
	}

	p := &ParsedFilename{
		Ticker:         parts[0],
		Quarter:        parts[1],
		Year:           parts[2],
		TranscriptType: parts[3],
		EventID:        parts[4],
		VersionID:      parts[5],
	}
	if p.Ticker == "" || p.Quarter == "" || p.Year == "" {
		return nil
	}
	return p
}
