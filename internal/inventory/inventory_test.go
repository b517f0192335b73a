package inventory

import (
	"testing"

	"github.com/rs/zerolog"

	"transcriptsync/internal/blobstore"
)

func seedFile(t *testing.T, store *blobstore.MemStore, path string) {
	t.Helper()
	segs := blobstore.SplitPath(path)
	parent := blobstore.Join(segs[:len(segs)-1]...)
	if err := store.MkdirAll(parent); err != nil {
		t.Fatalf("MkdirAll(%s): %v", parent, err)
	}
	if err := store.Write(path, []byte("<transcript/>")); err != nil {
		t.Fatalf("Write(%s): %v", path, err)
	}
}

func TestScanMissingRootIsEmpty(t *testing.T) {
	s := NewScanner(blobstore.NewMemStore(), zerolog.Nop())
	r, err := s.Scan("data")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(r.Records) != 0 || len(r.Unparseable) != 0 {
		t.Errorf("expected empty result, got %d records, %d unparseable",
			len(r.Records), len(r.Unparseable))
	}
}

func TestScanWalksHierarchy(t *testing.T) {
	store := blobstore.NewMemStore()
	seedFile(t, store, "data/2024/Q1/Banks/RY-CA_Royal_Bank/RY-CA_Q1_2024_Corrected_100_1.xml")
	seedFile(t, store, "data/2024/Q1/Banks/RY-CA_Royal_Bank/RY-CA_Q1_2024_Final_101_2.xml")
	seedFile(t, store, "data/2023/Q4/Insurers/MFC-CA_Manulife/MFC-CA_Q4_2023_Final_55_1.xml")

	s := NewScanner(store, zerolog.Nop())
	r, err := s.Scan("data")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(r.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(r.Records))
	}

	byEvent := make(map[string]bool)
	for _, rec := range r.Records {
		byEvent[rec.EventID] = true
	}
	for _, id := range []string{"100", "101", "55"} {
		if !byEvent[id] {
			t.Errorf("missing record for event %s", id)
		}
	}

	for _, rec := range r.Records {
		if rec.EventID == "55" {
			if rec.FiscalYear != "2023" || rec.FiscalQuarter != "Q4" || rec.CompanyType != "Insurers" {
				t.Errorf("wrong location fields: %+v", rec)
			}
			if rec.FullPath != "data/2023/Q4/Insurers/MFC-CA_Manulife/MFC-CA_Q4_2023_Final_55_1.xml" {
				t.Errorf("wrong full path: %s", rec.FullPath)
			}
		}
	}
}

func TestScanSkipsInvalidTranscriptsDir(t *testing.T) {
	store := blobstore.NewMemStore()
	seedFile(t, store, "data/2024/Q1/Banks/RY-CA_Royal_Bank/RY-CA_Q1_2024_Final_1_1.xml")
	if err := store.MkdirAll("data/InvalidTranscripts"); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("data/InvalidTranscripts/invalid_transcripts.xlsx", []byte("xlsx")); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(store, zerolog.Nop())
	r, err := s.Scan("data")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(r.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(r.Records))
	}
	if len(r.Unparseable) != 0 {
		t.Errorf("ledger dir should be skipped entirely, got %v", r.Unparseable)
	}
}

func TestScanCollectsUnparseable(t *testing.T) {
	store := blobstore.NewMemStore()
	seedFile(t, store, "data/2024/Q1/Banks/RY-CA_Royal_Bank/RY-CA_Q1_2024_Final_1_1.xml")
	seedFile(t, store, "data/2024/Q1/Banks/RY-CA_Royal_Bank/notes.xml")
	seedFile(t, store, "data/2024/Q1/Banks/RY-CA_Royal_Bank/readme.txt")

	s := NewScanner(store, zerolog.Nop())
	r, err := s.Scan("data")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(r.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(r.Records))
	}
	if len(r.Unparseable) != 1 {
		t.Fatalf("expected 1 unparseable file, got %d", len(r.Unparseable))
	}
	if r.Unparseable[0].Filename != "notes.xml" {
		t.Errorf("unexpected unparseable file: %+v", r.Unparseable[0])
	}
	if r.Unparseable[0].Location != "2024/Q1/Banks/RY-CA_Royal_Bank" {
		t.Errorf("unexpected location: %s", r.Unparseable[0].Location)
	}
}

func TestForInstitution(t *testing.T) {
	store := blobstore.NewMemStore()
	seedFile(t, store, "data/2024/Q1/Banks/RY-CA_Royal_Bank/RY-CA_Q1_2024_Final_1_1.xml")
	seedFile(t, store, "data/2024/Q1/Banks/TD-CA_TD_Bank/TD-CA_Q1_2024_Final_2_1.xml")

	s := NewScanner(store, zerolog.Nop())
	r, err := s.Scan("data")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	ry := ForInstitution(r.Records, "RY-CA", "Banks")
	if len(ry) != 1 || ry[0].EventID != "1" {
		t.Errorf("expected RY-CA event 1, got %v", ry)
	}
	none := ForInstitution(r.Records, "RY-CA", "Insurers")
	if len(none) != 0 {
		t.Errorf("expected no records for wrong company type, got %v", none)
	}
}
