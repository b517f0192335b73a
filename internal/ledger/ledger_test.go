package ledger

import (
	"testing"

	"github.com/rs/zerolog"

	"transcriptsync/internal/blobstore"
)

func testEntry(eventID, versionID string) Entry {
	return NewEntry("RY-CA", "Royal Bank of Canada", eventID, versionID,
		"Annual Shareholder Meeting", "2024-04-11", "Corrected",
		"Title format not 'Qx 20xx Earnings Call'")
}

func TestTableContains(t *testing.T) {
	table := NewTable([]Entry{testEntry("100", "1")})

	if !table.Contains("100", "1") {
		t.Error("expected table to contain (100, 1)")
	}
	if table.Contains("100", "2") {
		t.Error("did not expect table to contain (100, 2)")
	}
	if table.Contains("", "") {
		t.Error("did not expect table to contain empty pair")
	}
}

func TestTableAppendIsImmutable(t *testing.T) {
	before := NewTable(nil)
	after := before.Append(testEntry("200", "1"))

	if before.Len() != 0 {
		t.Errorf("original table mutated: len = %d", before.Len())
	}
	if before.Contains("200", "1") {
		t.Error("original table gained an entry")
	}
	if after.Len() != 1 || !after.Contains("200", "1") {
		t.Error("appended table missing entry")
	}
}

func TestLoadMissingLedgerIsEmpty(t *testing.T) {
	store := blobstore.NewMemStore()
	table, err := Load(store, "base", zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Len() != 0 {
		t.Errorf("expected empty table, got %d entries", table.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := blobstore.NewMemStore()
	log := zerolog.Nop()

	table := NewTable(nil).
		Append(testEntry("100", "1")).
		Append(testEntry("200", "3"))

	if err := Save(store, "base", table, log); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists("base/InvalidTranscripts/invalid_transcripts.xlsx") {
		t.Fatal("ledger file not written at canonical path")
	}

	loaded, err := Load(store, "base", log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", loaded.Len())
	}
	if !loaded.Contains("100", "1") || !loaded.Contains("200", "3") {
		t.Error("reloaded table missing entries")
	}

	entries := loaded.Entries()
	if entries[0].Ticker != "RY-CA" || entries[0].Reason != "Title format not 'Qx 20xx Earnings Call'" {
		t.Errorf("entry fields lost in round trip: %+v", entries[0])
	}
}

func TestSaveDeduplicates(t *testing.T) {
	store := blobstore.NewMemStore()
	log := zerolog.Nop()

	first := testEntry("100", "1")
	first.TitleFound = "first occurrence"
	second := testEntry("100", "1")
	second.TitleFound = "second occurrence"

	table := NewTable([]Entry{first, second, testEntry("200", "1")})
	if err := Save(store, "base", table, log); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(store, "base", log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("expected dedup to 2 entries, got %d", loaded.Len())
	}
	for _, e := range loaded.Entries() {
		if e.EventID == "100" && e.TitleFound != "first occurrence" {
			t.Errorf("expected first occurrence to win, got %q", e.TitleFound)
		}
	}
}

func TestSaveOverwritesPriorVersion(t *testing.T) {
	store := blobstore.NewMemStore()
	log := zerolog.Nop()

	if err := Save(store, "base", NewTable([]Entry{testEntry("1", "1")}), log); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	bigger := NewTable([]Entry{testEntry("1", "1"), testEntry("2", "1")})
	if err := Save(store, "base", bigger, log); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := Load(store, "base", log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected 2 entries after overwrite, got %d", loaded.Len())
	}
}
