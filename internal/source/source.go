// Package source adapts the vendor events-and-transcripts API into the
// transcript types the rest of the system uses. The wire format is decoded
// once at this boundary; nothing downstream guards against missing fields.
package source

import (
	"context"
	"time"

	"transcriptsync/internal/transcript"
)

// Source lists and downloads transcripts for one institution.
type Source interface {
	// FetchTranscripts returns all transcript versions the vendor reports
	// for the ticker within the window, already narrowed to the configured
	// transcript types.
	FetchTranscripts(ctx context.Context, ticker string, w Window) ([]transcript.Ref, error)
	// Download fetches the raw XML document for a transcript reference.
	Download(ctx context.Context, ref transcript.Ref) ([]byte, error)
}

// Window bounds a source query in time.
type Window struct {
	Start time.Time
	End   time.Time
}

// ComputeWindow returns the query window: from January 1 of startYear when a
// fixed start year is configured (non-zero), otherwise now minus exactly
// three years.
func ComputeWindow(startYear int, now time.Time) Window {
	end := now
	if startYear > 0 {
		return Window{
			Start: time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   end,
		}
	}
	return Window{Start: now.AddDate(-3, 0, 0), End: end}
}
