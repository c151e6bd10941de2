// Package trace generates and carries the run ID that tags every span
// and log line produced by a single benchmark invocation, grounded on
// the donor's per-RPC trace ID helper (GenerateTraceID/AttachTraceID/
// GetTraceID) but generalized from one ID per lookup to one ID for the
// whole run.
package trace

import (
	"context"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

type runKey struct{}

// GenerateRunID returns a fresh ULID string. ULIDs sort lexicographically
// by creation time.
func GenerateRunID() string {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// AttachRunID generates a run ID and stores it in ctx, returning both.
func AttachRunID(ctx context.Context) (context.Context, string) {
	id := GenerateRunID()
	return context.WithValue(ctx, runKey{}, id), id
}

// RunID retrieves the run ID attached to ctx, or "" if none is present.
func RunID(ctx context.Context) string {
	if v := ctx.Value(runKey{}); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
