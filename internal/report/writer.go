// Package report writes one row per benchmark run to a results table,
// grounded on internal/client/tester/writer's CSVWriter/NopWriter split
// (same append-mode-with-header pattern, same Writer interface shape),
// generalized from one lookup-delay sample per row to one full run
// summary per row.
package report

import "time"

// Row is one completed benchmark run's summary: its protocol, thread
// count, measured throughput and abort-reason breakdown.
type Row struct {
	Timestamp    time.Time
	Protocol     string
	ThreadsNb    int
	DurationMs   int64
	IssuedOps    uint64
	SuccessOps   uint64
	UpdateOps    uint64
	FinalSize    int
	AbortsByName map[string]uint64
	AbortsTotal  uint64
}

// Writer is the common interface every result sink implements.
type Writer interface {
	WriteRow(row Row) error
	Flush() error
	Close() error
}
