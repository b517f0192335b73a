package ledger

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"transcriptsync/internal/blobstore"
)

// Load reads the persisted ledger workbook from the blob store. An absent
// file is the expected first-run condition and yields an empty table, not an
// error. A corrupt workbook is an error: silently starting empty would
// re-download every previously rejected document.
func Load(store blobstore.Store, basePath string, log zerolog.Logger) (Table, error) {
	path := Path(basePath)
	if !store.Exists(path) {
		log.Info().Str("path", path).Msg("no invalid transcript ledger found, starting empty")
		return NewTable(nil), nil
	}

	data, err := store.Read(path)
	if err != nil {
		return Table{}, fmt.Errorf("reading ledger: %w", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("opening ledger workbook: %w", err)
	}
	defer wb.Close()

	sheet := SheetName
	if idx, _ := wb.GetSheetIndex(sheet); idx < 0 {
		sheet = wb.GetSheetName(0)
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("reading ledger rows: %w", err)
	}

	var entries []Entry
	for i, row := range rows {
		if i == 0 && headerMatches(row) {
			continue
		}
		if len(row) == 0 {
			continue
		}
		entries = append(entries, entryFromRow(row))
	}

	log.Info().Int("entries", len(entries)).Msg("loaded invalid transcript ledger")
	return NewTable(entries), nil
}

// Save serializes the table to a single-sheet workbook and overwrites the
// persisted ledger. Entries are deduplicated on (eventId, versionId), first
// occurrence wins.
func Save(store blobstore.Store, basePath string, table Table, log zerolog.Logger) error {
	entries := dedupe(table.entries)

	wb := excelize.NewFile()
	defer wb.Close()

	if _, err := wb.NewSheet(SheetName); err != nil {
		return fmt.Errorf("creating ledger sheet: %w", err)
	}
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := wb.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing ledger header: %w", err)
	}
	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := entryRow(e)
		if err := wb.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing ledger row %d: %w", i+1, err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("serializing ledger: %w", err)
	}

	if err := store.MkdirAll(Dir(basePath)); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	if err := store.Write(Path(basePath), buf.Bytes()); err != nil {
		return fmt.Errorf("uploading ledger: %w", err)
	}

	log.Info().Int("entries", len(entries)).Str("path", Path(basePath)).
		Msg("saved invalid transcript ledger")
	return nil
}
