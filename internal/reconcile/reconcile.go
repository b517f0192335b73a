// Package reconcile compares the source's current transcript listing for an
// institution against the stored inventory and the invalid-document ledger,
// producing a minimal download plan.
package reconcile

import (
	"transcriptsync/internal/transcript"
)

// Decision classifies one source transcript against the known state.
type Decision int

const (
	// SkipInvalid: the (eventId, versionId) pair is in the invalid ledger.
	SkipInvalid Decision = iota
	// SkipUnchanged: an identical version is already stored.
	SkipUnchanged
	// DownloadNewEvent: no stored record shares this eventId.
	DownloadNewEvent
	// DownloadNewType: the event is stored, but not this transcript type.
	DownloadNewType
	// DownloadVersionUpdate: the stored version differs; the source version
	// is authoritative. The stale stored file is kept (archival policy).
	DownloadVersionUpdate
)

func (d Decision) String() string {
	switch d {
	case SkipInvalid:
		return "skip_invalid"
	case SkipUnchanged:
		return "skip_unchanged"
	case DownloadNewEvent:
		return "download_new_event"
	case DownloadNewType:
		return "download_new_type"
	case DownloadVersionUpdate:
		return "download_version_update"
	}
	return "unknown"
}

// IsDownload reports whether the decision produces a planned fetch.
func (d Decision) IsDownload() bool {
	switch d {
	case DownloadNewEvent, DownloadNewType, DownloadVersionUpdate:
		return true
	}
	return false
}

// Ledger is the membership test the engine consults before anything else.
type Ledger interface {
	Contains(eventID, versionID string) bool
}

// Record pairs a source transcript with its decision.
type Record struct {
	Ref      transcript.Ref
	Decision Decision
}

// Plan is the engine's output for one institution.
type Plan struct {
	ToDownload []transcript.Ref
	Decisions  []Record

	// Counters summarizing the run, logged per institution.
	NewEvents             int
	NewTypes              int
	VersionUpdates        int
	Unchanged             int
	SkippedInvalid        int
	ContaminationRejected int
}

// FilterContaminated keeps only transcripts whose primary-ID set is exactly
// the singleton {ticker}. The source's free-text search can return
// transcripts where the institution is a secondary participant; those must
// never be filed under the institution's own archive.
func FilterContaminated(refs []transcript.Ref, ticker string) (kept []transcript.Ref, rejected int) {
	for _, ref := range refs {
		if len(ref.PrimaryIDs) == 1 && ref.PrimaryIDs[0] == ticker {
			kept = append(kept, ref)
		} else {
			rejected++
		}
	}
	return kept, rejected
}

// Compare produces the download plan for one institution. The decision order
// per candidate is fixed: ledger membership short-circuits everything, then
// event novelty, then type novelty, then version comparison. Decisions are
// independent per transcript, so the plan is idempotent for a given
// (source, stored, ledger) snapshot.
func Compare(source []transcript.Ref, stored []transcript.Stored, ledger Ledger, ticker string) *Plan {
	p := &Plan{}

	filtered, rejected := FilterContaminated(source, ticker)
	p.ContaminationRejected = rejected

	storedByEvent := make(map[string][]transcript.Stored)
	for _, rec := range stored {
		storedByEvent[rec.EventID] = append(storedByEvent[rec.EventID], rec)
	}

	for _, ref := range filtered {
		d := decide(ref, storedByEvent, ledger)
		p.Decisions = append(p.Decisions, Record{Ref: ref, Decision: d})

		switch d {
		case SkipInvalid:
			p.SkippedInvalid++
		case SkipUnchanged:
			p.Unchanged++
		case DownloadNewEvent:
			p.NewEvents++
		case DownloadNewType:
			p.NewTypes++
		case DownloadVersionUpdate:
			p.VersionUpdates++
		}
		if d.IsDownload() {
			p.ToDownload = append(p.ToDownload, ref)
		}
	}

	return p
}

func decide(ref transcript.Ref, storedByEvent map[string][]transcript.Stored, ledger Ledger) Decision {
	if ledger.Contains(ref.EventID, ref.VersionID) {
		return SkipInvalid
	}

	versions, ok := storedByEvent[ref.EventID]
	if !ok {
		return DownloadNewEvent
	}

	for _, rec := range versions {
		if rec.TranscriptType == ref.TranscriptType && rec.Ticker == ref.Ticker {
			if rec.VersionID != ref.VersionID {
				return DownloadVersionUpdate
			}
			return SkipUnchanged
		}
	}
	return DownloadNewType
}
