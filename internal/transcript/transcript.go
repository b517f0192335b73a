// Package transcript holds the core domain types for earnings-call
// transcripts: source references, stored records, the canonical filename
// codec, and title validation.
package transcript

import "time"

// Ref identifies one transcript version as reported by the source API.
// Within a single run, (EventID, VersionID, TranscriptType) uniquely
// identifies a distinct transcript object.
type Ref struct {
	Ticker         string
	TranscriptType string // e.g. "Corrected", "Final"
	EventID        string // stable across versions of the same event
	VersionID      string // changes when the source revises a transcript
	EventDate      time.Time
	DownloadLink   string
	// PrimaryIDs is the set of identifiers the source associates with the
	// event. A transcript is only filed under a ticker when PrimaryIDs is
	// exactly that single ticker.
	PrimaryIDs []string
}

// Stored describes a transcript already persisted in the blob store,
// reconstructed by decoding its canonical filename. FiscalYear and
// FiscalQuarter come from the storage location and may be "Unknown" when
// period extraction failed at write time.
type Stored struct {
	FiscalYear     string
	FiscalQuarter  string
	CompanyType    string
	CompanyDir     string
	Ticker         string
	TranscriptType string
	EventID        string
	VersionID      string
	Filename       string
	FullPath       string
}
