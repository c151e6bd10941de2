// Package htm models the hardware-transactional-memory contract that
// spec.md treats as an external service: begin/abort/end a speculative
// region, and a nine-category abort-reason accounting matching
// original_source/rtm_debug.{h,c}.
//
// Go cannot reach real CPU transactional-memory instructions without
// cgo, which this project does not use. This package is therefore a
// software model, not a hardware binding: a Region serializes the
// transactions scoped to it with a real mutex instead of relying on
// hardware conflict detection across cache lines. The six hardware-
// detected abort reasons (explicit/retry/conflict/capacity/debug/nested)
// can therefore never actually report hardware-conflict, capacity, debug
// or nested aborts -- those have no software analogue -- but the three application-
// defined reasons (double-free, pointer-conflict, lock-held) are fully
// exercised, because they come from the same explicit validation checks
// the original source performs inside its transactions.
package htm

// Reason enumerates all nine abort causes the original module tallies.
// A single abort can set more than one reason at once -- record_abort in
// the original increments every matching counter for one abort event,
// not just one -- so Reason values are used as a bitmask-free list
// rather than mutually exclusive categories.
type Reason int

const (
	ReasonExplicit Reason = iota
	ReasonRetryHint
	ReasonHWConflict
	ReasonCapacity
	ReasonDebug
	ReasonNested
	ReasonDoubleFree
	ReasonPointerConflict
	ReasonLockHeld
	reasonCount
)

var reasonNames = [reasonCount]string{
	"explicit", "retry_hint", "hw_conflict", "capacity", "debug",
	"nested", "double_free", "pointer_conflict", "lock_held",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Code identifies why an application explicitly aborted a transaction,
// mirroring the original's ABORT_DOUBLE_FREE/ABORT_CONFLICT/ABORT_LF_CONFLICT.
type Code int

const (
	CodeDoubleFree Code = iota
	CodePointerConflict
	CodeLockHeld
)

// AbortStatus is the outcome of an aborted transaction: which code ended
// it, and whether a retry is plausibly worth attempting (the software
// stand-in for the hardware's _XABORT_RETRY hint bit, consumed by the
// "hwa" fallback policy).
type AbortStatus struct {
	Code      Code
	RetryHint bool
}

func (s AbortStatus) reasons() []Reason {
	reasons := []Reason{ReasonExplicit}
	if s.RetryHint {
		reasons = append(reasons, ReasonRetryHint)
	}
	switch s.Code {
	case CodeDoubleFree:
		reasons = append(reasons, ReasonDoubleFree)
	case CodePointerConflict:
		reasons = append(reasons, ReasonPointerConflict)
	case CodeLockHeld:
		reasons = append(reasons, ReasonLockHeld)
	}
	return reasons
}

// abortSignal is the panic payload Tx.Abort throws, unwinding the
// transaction body the way the x86 xabort instruction unwinds execution
// to just past the matching xbegin.
type abortSignal struct{ status AbortStatus }

// Tx is the handle a transaction body uses to abort itself.
type Tx struct{}

// Abort unwinds the enclosing transaction with the given code. RetryHint
// is set for every code except CodeDoubleFree: a pointer-conflict or a
// lock observed held are transient conditions a retry can plausibly
// clear, but a double-free means the node is permanently gone from this
// operation's point of view.
func (tx *Tx) Abort(code Code) {
	panic(abortSignal{AbortStatus{Code: code, RetryHint: code != CodeDoubleFree}})
}

// RecordDirect accounts for an abort observed outside any transaction --
// the htmlock/hhtmlock protocols validate and commit in plain code after
// their flag-acquisition transaction has already ended, so a validation
// failure there calls record_abort directly rather than through _xabort.
func RecordDirect(code Code) {
	Record(AbortStatus{Code: code, RetryHint: code != CodeDoubleFree})
}
