// Command seedmakes converts a vehicle make/model Excel file into a SQL
// seed file for the reference table behind the record editor's typeahead.
// The first sheet is read with Make in column A and Model in column B,
// data starting after the header row.
// Usage: go run ./cmd/seedmakes [vehicle_makes.xlsx]
// Output: db/seeds/vehicle_makes.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

const batchSize = 500

type makeEntry struct {
	make  string
	model string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "vehicle_makes.xlsx"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	outPath := "db/seeds/vehicle_makes.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseMakeSheet(f)
	if err != nil {
		return fmt.Errorf("parse make sheet: %w", err)
	}
	log.Printf("make sheet: %d entries", len(entries))

	// Write SQL file with batched multi-row INSERTs.
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Vehicle make/model seed data generated from Excel.",
		fmt.Sprintf("-- %d entries in batches of %d.", len(entries), batchSize),
		"-- Run: make seed-makes",
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}

	log.Printf("Generated %d total entries (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, outPath)
	return nil
}

// parseMakeSheet reads the first sheet. Column A(0)=make, B(1)=model,
// data starts at row index 1. Rows with a make but no model seed the
// make alone so make-only typeahead still matches.
func parseMakeSheet(f *excelize.File) ([]makeEntry, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []makeEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]

		mk := strings.TrimSpace(cellVal(row, 0))
		if mk == "" {
			continue
		}
		model := strings.TrimSpace(cellVal(row, 1))

		key := strings.ToLower(mk) + "|" + strings.ToLower(model)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, makeEntry{make: mk, model: model})
	}
	return entries, nil
}

func writeBatch(out *os.File, batch []makeEntry) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO vehicle_makes (make, model) VALUES\n")

	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s')", escapeSQL(e.make), escapeSQL(e.model))
	}

	b.WriteString("\nON CONFLICT (make, model) DO NOTHING;\n")

	_, err := out.WriteString(b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
