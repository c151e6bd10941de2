package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleRow() Row {
	return Row{
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Protocol:   "rcx",
		ThreadsNb:  8,
		DurationMs: 1000,
		IssuedOps:  100,
		SuccessOps: 90,
		UpdateOps:  20,
		FinalSize:  42,
		AbortsByName: map[string]uint64{
			"explicit":         3,
			"pointer_conflict": 1,
		},
		AbortsTotal: 4,
	}
}

func TestCSVWriterWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.WriteRow(sampleRow()); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	w2, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("reopen NewCSVWriter: %v", err)
	}
	if err := w2.WriteRow(sampleRow()); err != nil {
		t.Fatalf("second WriteRow: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open result file: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("record count = %d, want 3 (1 header + 2 rows)", len(records))
	}
	if records[0][1] != "protocol" {
		t.Errorf("header[1] = %q, want \"protocol\"", records[0][1])
	}
	if records[1][1] != "rcx" || records[2][1] != "rcx" {
		t.Errorf("row protocol column not preserved: %v / %v", records[1], records[2])
	}
}

func TestCSVWriterRejectsWriteAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.WriteRow(sampleRow()); err == nil {
		t.Fatalf("WriteRow after Close did not error")
	}
}

func TestNopWriterNeverErrors(t *testing.T) {
	var w NopWriter
	if err := w.WriteRow(sampleRow()); err != nil {
		t.Fatalf("WriteRow: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
