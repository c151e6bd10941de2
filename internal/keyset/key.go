// Package keyset implements a concurrent ordered set of integer keys: a
// hash table of buckets, each bucket a sorted singly-linked list bounded
// by sentinel nodes, protected by one of several interchangeable
// synchronization protocols.
package keyset

import "math"

// Key is the element type stored in a Set. It mirrors the original
// module's signed 32-bit val_t.
type Key int32

// minKey and maxKey bound every bucket list; no caller may ever insert
// them, and they are never unlinked.
const (
	minKey Key = math.MinInt32
	maxKey Key = math.MaxInt32
)

// AddResult reports the outcome of an Add attempt.
type AddResult int

const (
	// Added means the key was not present and has been inserted.
	Added AddResult = iota
	// AlreadyPresent means the key was already present; no change was made.
	AlreadyPresent
	// Conflict means the attempt could not complete: a try-lock failed to
	// acquire, a speculative transaction aborted with no further retry
	// budget, or a deadline-bound retry loop ran out of time. The caller
	// may retry the whole operation.
	Conflict
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case AlreadyPresent:
		return "already_present"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// RemoveResult reports the outcome of a Remove attempt.
type RemoveResult int

const (
	// Removed means the key was present and has been unlinked.
	Removed RemoveResult = iota
	// NotFound means the key was not present; no change was made.
	NotFound
	// RemoveConflict mirrors AddResult's Conflict for remove attempts.
	RemoveConflict
)

func (r RemoveResult) String() string {
	switch r {
	case Removed:
		return "removed"
	case NotFound:
		return "not_found"
	case RemoveConflict:
		return "conflict"
	default:
		return "unknown"
	}
}
