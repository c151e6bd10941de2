package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

var abortColumns = []string{
	"explicit", "retry_hint", "hw_conflict", "capacity", "debug",
	"nested", "double_free", "pointer_conflict", "lock_held",
}

// CSVWriter appends one row per completed run to a CSV file, creating
// the file and its header on first use if it does not already exist.
type CSVWriter struct {
	mu      sync.Mutex
	file    *os.File
	writer  *csv.Writer
	flushed bool
}

// NewCSVWriter opens (or creates) path for append, writing a header row
// only when the file is new.
func NewCSVWriter(path string) (*CSVWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: create directory %q: %w", dir, err)
	}

	exists := false
	if _, err := os.Stat(path); err == nil {
		exists = true
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("report: open csv file: %w", err)
	}

	w := csv.NewWriter(file)
	if !exists {
		if err := w.Write(header()); err != nil {
			file.Close()
			return nil, fmt.Errorf("report: write header: %w", err)
		}
		w.Flush()
	}

	return &CSVWriter{file: file, writer: w}, nil
}

func header() []string {
	h := []string{
		"timestamp", "protocol", "threads_nb", "duration_ms",
		"issued_ops", "success_ops", "update_ops", "final_size", "aborts_total",
	}
	return append(h, abortColumns...)
}

// WriteRow appends a single run summary.
func (w *CSVWriter) WriteRow(row Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.flushed {
		return fmt.Errorf("report: write on closed writer")
	}

	record := []string{
		row.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		row.Protocol,
		strconv.Itoa(row.ThreadsNb),
		strconv.FormatInt(row.DurationMs, 10),
		strconv.FormatUint(row.IssuedOps, 10),
		strconv.FormatUint(row.SuccessOps, 10),
		strconv.FormatUint(row.UpdateOps, 10),
		strconv.Itoa(row.FinalSize),
		strconv.FormatUint(row.AbortsTotal, 10),
	}
	for _, name := range abortColumns {
		record = append(record, strconv.FormatUint(row.AbortsByName[name], 10))
	}

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("report: write row: %w", err)
	}
	return nil
}

// Flush forces any buffered rows to disk.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("report: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *CSVWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.flushed {
		return nil
	}
	w.writer.Flush()
	w.flushed = true

	if err := w.writer.Error(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("report: flush on close: %w", err)
	}
	return w.file.Close()
}
