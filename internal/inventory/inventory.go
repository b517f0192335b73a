// Package inventory reconstructs the set of already-stored transcripts by
// walking the blob store's year/quarter/type/company hierarchy.
package inventory

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"transcriptsync/internal/blobstore"
	"transcriptsync/internal/transcript"
)

// invalidLedgerDir is the reserved pseudo-year directory holding the
// invalid-document ledger; it is never part of the transcript archive.
const invalidLedgerDir = "InvalidTranscripts"

// UnparseableFile records a stored .xml file whose name does not decode as a
// canonical transcript filename. Such files are excluded from the inventory
// and left in place for the operator to resolve.
type UnparseableFile struct {
	Filename string
	FullPath string
	Location string
}

// Result holds a completed inventory scan.
type Result struct {
	Records     []transcript.Stored
	Unparseable []UnparseableFile
}

// Scanner walks the stored transcript hierarchy.
type Scanner struct {
	store blobstore.Store
	log   zerolog.Logger
}

// NewScanner creates an inventory scanner over the given store.
func NewScanner(store blobstore.Store, log zerolog.Logger) *Scanner {
	return &Scanner{store: store, log: log}
}

// Scan walks root/{fiscalYear}/{quarter}/{companyType}/{company}/*.xml and
// decodes every filename. A missing root is the expected state before the
// first sync and yields an empty inventory. Filenames that fail to decode
// are collected, never raised.
func (s *Scanner) Scan(root string) (*Result, error) {
	r := &Result{}

	if !s.store.Exists(root) {
		s.log.Info().Str("root", root).Msg("data directory does not exist, starting with empty inventory")
		return r, nil
	}

	years, err := s.store.ListDirs(root)
	if err != nil {
		return nil, fmt.Errorf("listing fiscal years: %w", err)
	}

	for _, year := range years {
		if year == invalidLedgerDir {
			continue
		}
		yearPath := blobstore.Join(root, year)

		quarters, err := s.store.ListDirs(yearPath)
		if err != nil {
			return nil, fmt.Errorf("listing quarters under %s: %w", yearPath, err)
		}

		for _, quarter := range quarters {
			quarterPath := blobstore.Join(yearPath, quarter)

			companyTypes, err := s.store.ListDirs(quarterPath)
			if err != nil {
				return nil, fmt.Errorf("listing company types under %s: %w", quarterPath, err)
			}

			for _, companyType := range companyTypes {
				typePath := blobstore.Join(quarterPath, companyType)

				companies, err := s.store.ListDirs(typePath)
				if err != nil {
					return nil, fmt.Errorf("listing companies under %s: %w", typePath, err)
				}

				for _, company := range companies {
					companyPath := blobstore.Join(typePath, company)
					if err := s.scanCompany(r, companyPath, year, quarter, companyType, company); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	s.log.Info().
		Int("records", len(r.Records)).
		Int("unparseable", len(r.Unparseable)).
		Msg("transcript inventory scan completed")

	if len(r.Unparseable) > 0 {
		sample := r.Unparseable
		if len(sample) > 5 {
			sample = sample[:5]
		}
		names := make([]string, len(sample))
		for i, u := range sample {
			names[i] = u.FullPath
		}
		s.log.Warn().
			Int("count", len(r.Unparseable)).
			Strs("sample", names).
			Msg("stored files with non-conforming filenames excluded from inventory")
	}

	return r, nil
}

func (s *Scanner) scanCompany(r *Result, companyPath, year, quarter, companyType, company string) error {
	files, err := s.store.ListFiles(companyPath)
	if err != nil {
		return fmt.Errorf("listing files under %s: %w", companyPath, err)
	}

	for _, name := range files {
		if !strings.HasSuffix(name, ".xml") {
			continue
		}
		fullPath := blobstore.Join(companyPath, name)
		parsed := transcript.DecodeFilename(name)
		if parsed == nil {
			r.Unparseable = append(r.Unparseable, UnparseableFile{
				Filename: name,
				FullPath: fullPath,
				Location: blobstore.Join(year, quarter, companyType, company),
			})
			continue
		}
		r.Records = append(r.Records, transcript.Stored{
			FiscalYear:     year,
			FiscalQuarter:  quarter,
			CompanyType:    companyType,
			CompanyDir:     company,
			Ticker:         parsed.Ticker,
			TranscriptType: parsed.TranscriptType,
			EventID:        parsed.EventID,
			VersionID:      parsed.VersionID,
			Filename:       name,
			FullPath:       fullPath,
		})
	}
	return nil
}

// ForInstitution filters records to one institution's ticker and company
// type, the slice the reconciliation engine compares against.
func ForInstitution(records []transcript.Stored, ticker, companyType string) []transcript.Stored {
	var out []transcript.Stored
	for _, rec := range records {
		if rec.Ticker == ticker && rec.CompanyType == companyType {
			out = append(out, rec)
		}
	}
	return out
}
