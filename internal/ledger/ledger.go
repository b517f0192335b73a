// Package ledger persists the exclusion list of transcripts rejected for
// non-conforming titles. The ledger is consulted before any download attempt
// so known-bad documents are never fetched twice.
package ledger

import (
	"time"

	"transcriptsync/internal/blobstore"
)

// SheetName is the single worksheet holding ledger rows.
const SheetName = "Invalid_Transcripts"

// FileName is the ledger workbook name inside the InvalidTranscripts
// directory.
const FileName = "invalid_transcripts.xlsx"

// columns is the fixed header row, matching the Entry fields in order.
var columns = []string{
	"ticker",
	"institution_name",
	"event_id",
	"version_id",
	"title_found",
	"event_date",
	"transcript_type",
	"reason",
	"date_added",
}

// Entry is one rejected transcript.
type Entry struct {
	Ticker          string
	InstitutionName string
	EventID         string
	VersionID       string
	TitleFound      string
	EventDate       string
	TranscriptType  string
	Reason          string
	DateAdded       string
}

// NewEntry builds a ledger entry stamped with the current time.
func NewEntry(ticker, institutionName, eventID, versionID, title, eventDate, transcriptType, reason string) Entry {
	return Entry{
		Ticker:          ticker,
		InstitutionName: institutionName,
		EventID:         eventID,
		VersionID:       versionID,
		TitleFound:      title,
		EventDate:       eventDate,
		TranscriptType:  transcriptType,
		Reason:          reason,
		DateAdded:       time.Now().Format(time.RFC3339),
	}
}

// Table is an immutable snapshot of the ledger. Append returns a new Table;
// existing snapshots are never mutated, so callers can hold a pre-append
// view safely.
type Table struct {
	entries []Entry
	index   map[string]struct{}
}

// NewTable builds a table from entries.
func NewTable(entries []Entry) Table {
	idx := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		idx[key(e.EventID, e.VersionID)] = struct{}{}
	}
	return Table{entries: entries, index: idx}
}

func key(eventID, versionID string) string {
	return eventID + "\x00" + versionID
}

// Contains reports whether the (eventId, versionId) pair is already in the
// ledger. Both identifiers are compared in string form.
func (t Table) Contains(eventID, versionID string) bool {
	_, ok := t.index[key(eventID, versionID)]
	return ok
}

// Append returns a new table with entry added. Duplicate pairs are accepted
// here; Save deduplicates when persisting.
func (t Table) Append(entry Entry) Table {
	entries := make([]Entry, 0, len(t.entries)+1)
	entries = append(entries, t.entries...)
	entries = append(entries, entry)
	return NewTable(entries)
}

// Len returns the number of entries in the table.
func (t Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table's entries.
func (t Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Path returns the canonical ledger location under the store base path:
// InvalidTranscripts/invalid_transcripts.xlsx.
func Path(basePath string) string {
	return blobstore.Join(basePath, "InvalidTranscripts", FileName)
}

// Dir returns the ledger's parent directory under the store base path.
func Dir(basePath string) string {
	return blobstore.Join(basePath, "InvalidTranscripts")
}

func entryRow(e Entry) []any {
	return []any{
		e.Ticker, e.InstitutionName, e.EventID, e.VersionID,
		e.TitleFound, e.EventDate, e.TranscriptType, e.Reason, e.DateAdded,
	}
}

func entryFromRow(row []string) Entry {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Entry{
		Ticker:          get(0),
		InstitutionName: get(1),
		EventID:         get(2),
		VersionID:       get(3),
		TitleFound:      get(4),
		EventDate:       get(5),
		TranscriptType:  get(6),
		Reason:          get(7),
		DateAdded:       get(8),
	}
}

// dedupe keeps the first occurrence of each (eventId, versionId) pair.
// Repeated runs sharing a pre-loaded snapshot can otherwise accumulate
// duplicate rows in the persisted workbook.
func dedupe(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	var out []Entry
	for _, e := range entries {
		k := key(e.EventID, e.VersionID)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}

func headerMatches(row []string) bool {
	if len(row) < len(columns) {
		return false
	}
	for i, c := range columns {
		if row[i] != c {
			return false
		}
	}
	return true
}
