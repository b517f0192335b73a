// Package sync orchestrates a full reconciliation run: inventory the blob
// store once, then for each monitored institution query the source, compare
// against stored state and the invalid-document ledger, and download what is
// missing. Institutions are processed strictly in configuration order; a
// failure in one never aborts the run.
package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"transcriptsync/internal/blobstore"
	"transcriptsync/internal/config"
	"transcriptsync/internal/inventory"
	"transcriptsync/internal/ledger"
	"transcriptsync/internal/reconcile"
	"transcriptsync/internal/runlog"
	"transcriptsync/internal/source"
	"transcriptsync/internal/transcript"
)

// State is the orchestrator's position in the per-institution sequence.
type State string

const (
	StateQuerying         State = "querying"
	StateFiltering        State = "filtering"
	StateComparing        State = "comparing"
	StateDownloading      State = "downloading"
	StatePersistingLedger State = "persisting_ledger"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// ErrorRecord is a structured, non-fatal error captured during a run.
type ErrorRecord struct {
	Kind    string // "query", "download", "store", "ledger_save"
	Ticker  string
	Message string
}

// InstitutionResult summarizes one institution's pass through the run.
type InstitutionResult struct {
	Ticker string
	Name   string
	Type   string
	State  State

	SourceCount           int
	ContaminationRejected int
	NewEvents             int
	NewTypes              int
	VersionUpdates        int
	Unchanged             int
	SkippedInvalid        int
	Downloaded            int
	Rejected              int

	Errors []ErrorRecord
	Err    error
}

// Summary is the outcome of a full run.
type Summary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Window     source.Window
	DryRun     bool

	StoredFound int
	Unparseable int

	Downloaded     int
	Rejected       int
	SkippedInvalid int
	Unchanged      int
	Failed         int

	Results []InstitutionResult
	Errors  []ErrorRecord
}

// Duration is the wall-clock time of the run.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// RunRecord converts the summary into run-history rows for persistence.
func (s *Summary) RunRecord() (runlog.Run, []runlog.RunError) {
	status := "completed"
	if s.Failed == len(s.Results) && len(s.Results) > 0 {
		status = "failed"
	}
	run := runlog.Run{
		StartedAt:       s.StartedAt.Format(time.RFC3339),
		FinishedAt:      s.FinishedAt.Format(time.RFC3339),
		Status:          status,
		Institutions:    len(s.Results),
		StoredFound:     s.StoredFound,
		Unparseable:     s.Unparseable,
		Downloaded:      s.Downloaded,
		Rejected:        s.Rejected,
		SkippedInvalid:  s.SkippedInvalid,
		WindowStart:     s.Window.Start.Format(time.RFC3339),
		WindowEnd:       s.Window.End.Format(time.RFC3339),
		DurationSeconds: s.Duration().Seconds(),
	}
	errs := make([]runlog.RunError, 0, len(s.Errors))
	for _, e := range s.Errors {
		errs = append(errs, runlog.RunError{
			Kind:    e.Kind,
			Ticker:  e.Ticker,
			Message: e.Message,
		})
	}
	return run, errs
}

// Options tunes a run.
type Options struct {
	// BasePath is the archive root inside the blob store. Empty means the
	// store's own root.
	BasePath string
	// DryRun reports the plan without downloading or writing anything.
	DryRun bool
}

// Orchestrator drives the sequential sync.
type Orchestrator struct {
	cfg   *config.Config
	store blobstore.Store
	src   source.Source
	opts  Options
	log   zerolog.Logger

	// injectable for tests
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates an orchestrator over the given store and source.
func New(cfg *config.Config, store blobstore.Store, src source.Source, opts Options, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		store: store,
		src:   src,
		opts:  opts,
		log:   log,
		sleep: time.Sleep,
		now:   time.Now,
	}
}

// Run executes the full sync. The returned error covers only run-level
// failures (inventory scan, ledger load); per-institution and per-transcript
// failures are recorded in the summary and never abort the run.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	s := &Summary{StartedAt: o.now(), DryRun: o.opts.DryRun}
	s.Window = source.ComputeWindow(o.cfg.Sync.StartYear, s.StartedAt)

	o.log.Info().
		Time("windowStart", s.Window.Start).
		Time("windowEnd", s.Window.End).
		Int("institutions", len(o.cfg.Institutions)).
		Bool("dryRun", o.opts.DryRun).
		Msg("starting sync run")

	inv, err := inventory.NewScanner(o.store, o.log).Scan(o.opts.BasePath)
	if err != nil {
		return nil, fmt.Errorf("scanning inventory: %w", err)
	}
	s.StoredFound = len(inv.Records)
	s.Unparseable = len(inv.Unparseable)

	table, err := ledger.Load(o.store, o.opts.BasePath, o.log)
	if err != nil {
		return nil, fmt.Errorf("loading invalid-transcript ledger: %w", err)
	}

	retry := source.RetryPolicy{
		MaxAttempts: o.cfg.API.MaxRetries,
		Delay:       o.cfg.RetryDelay(),
		Exponential: o.cfg.API.UseExponentialBackoff,
		MaxDelay:    o.cfg.MaxBackoffDelay(),
	}

	for i, inst := range o.cfg.Institutions {
		res, updated := o.syncInstitution(ctx, inst, inv, table, retry, s.Window)
		table = updated

		s.Results = append(s.Results, res)
		s.Downloaded += res.Downloaded
		s.Rejected += res.Rejected
		s.SkippedInvalid += res.SkippedInvalid
		s.Unchanged += res.Unchanged
		if res.State == StateFailed {
			s.Failed++
			s.Errors = append(s.Errors, ErrorRecord{
				Kind:    "query",
				Ticker:  inst.Ticker,
				Message: res.Err.Error(),
			})
		}
		s.Errors = append(s.Errors, res.Errors...)

		if i < len(o.cfg.Institutions)-1 {
			o.sleep(o.cfg.RequestDelay())
		}
	}

	// The ledger is saved once more regardless of per-institution outcomes,
	// so entries from a partially failed run are never lost.
	if !o.opts.DryRun {
		if err := ledger.Save(o.store, o.opts.BasePath, table, o.log); err != nil {
			s.Errors = append(s.Errors, ErrorRecord{
				Kind:    "ledger_save",
				Message: err.Error(),
			})
		}
	}

	s.FinishedAt = o.now()
	o.log.Info().
		Int("downloaded", s.Downloaded).
		Int("rejected", s.Rejected).
		Int("failed", s.Failed).
		Dur("duration", s.Duration()).
		Msg("sync run finished")
	return s, nil
}

// syncInstitution runs the state sequence for one institution. It returns
// the result and the ledger table, which grows when titles are rejected.
func (o *Orchestrator) syncInstitution(ctx context.Context, inst config.Institution, inv *inventory.Result, table ledger.Table, retry source.RetryPolicy, w source.Window) (InstitutionResult, ledger.Table) {
	log := o.log.With().Str("ticker", inst.Ticker).Str("companyType", inst.Type).Logger()
	res := InstitutionResult{Ticker: inst.Ticker, Name: inst.Name, Type: inst.Type, State: StateQuerying}

	var refs []transcript.Ref
	err := retry.Do(ctx, func() error {
		var ferr error
		refs, ferr = o.src.FetchTranscripts(ctx, inst.Ticker, w)
		return ferr
	})
	if err != nil {
		log.Error().Err(err).Msg("query failed after retries, skipping institution")
		res.State = StateFailed
		res.Err = fmt.Errorf("querying transcripts: %w", err)
		return res, table
	}
	res.SourceCount = len(refs)

	res.State = StateFiltering
	filtered, rejected := reconcile.FilterContaminated(refs, inst.Ticker)
	res.ContaminationRejected = rejected

	res.State = StateComparing
	stored := inventory.ForInstitution(inv.Records, inst.Ticker, inst.Type)
	plan := reconcile.Compare(filtered, stored, table, inst.Ticker)
	res.NewEvents = plan.NewEvents
	res.NewTypes = plan.NewTypes
	res.VersionUpdates = plan.VersionUpdates
	res.Unchanged = plan.Unchanged
	res.SkippedInvalid = plan.SkippedInvalid

	log.Info().
		Int("source", res.SourceCount).
		Int("stored", len(stored)).
		Int("toDownload", len(plan.ToDownload)).
		Int("newEvents", plan.NewEvents).
		Int("newTypes", plan.NewTypes).
		Int("versionUpdates", plan.VersionUpdates).
		Int("unchanged", plan.Unchanged).
		Int("skippedInvalid", plan.SkippedInvalid).
		Int("contaminated", rejected).
		Msg("reconciliation plan")

	if o.opts.DryRun {
		res.State = StateDone
		return res, table
	}

	res.State = StateDownloading
	for _, ref := range plan.ToDownload {
		if ctx.Err() != nil {
			res.State = StateFailed
			res.Err = ctx.Err()
			return res, table
		}

		var data []byte
		err := retry.Do(ctx, func() error {
			var derr error
			data, derr = o.src.Download(ctx, ref)
			return derr
		})
		o.sleep(o.cfg.RequestDelay())
		if err != nil {
			log.Error().Err(err).Str("eventId", ref.EventID).Str("versionId", ref.VersionID).Msg("download failed after retries")
			res.Errors = append(res.Errors, ErrorRecord{
				Kind:    "download",
				Ticker:  inst.Ticker,
				Message: fmt.Sprintf("event %s version %s: %v", ref.EventID, ref.VersionID, err),
			})
			continue
		}

		quarter, year, title := transcript.ExtractTitlePeriod(data)
		if !transcript.IsValidEarningsCallTitle(title) {
			table = table.Append(ledger.NewEntry(
				inst.Ticker, inst.Name,
				ref.EventID, ref.VersionID,
				title, ref.EventDate.Format("2006-01-02"),
				ref.TranscriptType, transcript.RejectionReason,
			))
			res.Rejected++
			log.Info().Str("eventId", ref.EventID).Str("title", title).Msg("rejected document, recording in invalid ledger")
			continue
		}

		if err := o.storeTranscript(inst, ref, quarter, year, data); err != nil {
			log.Error().Err(err).Str("eventId", ref.EventID).Msg("failed to store transcript")
			res.Errors = append(res.Errors, ErrorRecord{
				Kind:    "store",
				Ticker:  inst.Ticker,
				Message: fmt.Sprintf("event %s version %s: %v", ref.EventID, ref.VersionID, err),
			})
			continue
		}
		res.Downloaded++
		log.Debug().Str("eventId", ref.EventID).Str("versionId", ref.VersionID).Str("quarter", quarter).Str("year", year).Msg("stored transcript")
	}

	// The ledger is persisted after each institution so earlier rejections
	// survive a crash mid-run.
	if res.Rejected > 0 {
		res.State = StatePersistingLedger
		if err := ledger.Save(o.store, o.opts.BasePath, table, o.log); err != nil {
			log.Error().Err(err).Msg("incremental ledger save failed")
			res.Errors = append(res.Errors, ErrorRecord{
				Kind:    "ledger_save",
				Ticker:  inst.Ticker,
				Message: err.Error(),
			})
		}
	}

	res.State = StateDone
	return res, table
}

// storeTranscript writes the document at its canonical archive location:
// {base}/{year}/{quarter}/{companyType}/{ticker}_{sanitizedName}/{filename}.
func (o *Orchestrator) storeTranscript(inst config.Institution, ref transcript.Ref, quarter, year string, data []byte) error {
	filename := transcript.EncodeFilename(inst.Ticker, quarter, year, ref.TranscriptType, ref.EventID, ref.VersionID)
	dir := blobstore.Join(o.opts.BasePath, year, quarter, inst.Type, companyDirName(inst))
	if err := o.store.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := blobstore.Join(dir, filename)
	if err := o.store.Write(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func companyDirName(inst config.Institution) string {
	return inst.Ticker + "_" + sanitizeName(inst.Name)
}

// sanitizeName makes an institution name filesystem-safe: spaces become
// underscores, periods and commas are dropped.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ".", "")
	return strings.ReplaceAll(name, ",", "")
}
