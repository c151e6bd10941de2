package htm

import "sync"

// Region is the transactional-memory fabric scoped to one list: the
// thing overlapping speculative attempts would conflict through on real
// hardware. It is backed by a real mutex because Go has no access to
// actual transactional CPU instructions (see package doc).
type Region struct {
	mu sync.Mutex
}

// NewRegion returns a ready-to-use Region.
func NewRegion() *Region { return &Region{} }

// Held reports, without blocking, whether the region is currently inside
// a transaction. The lock-fallback and hardware-advised abort policies do
// not call it: they peek the bucket's coarse lock via keyset's
// list.spinHeld instead.
func (r *Region) Held() bool {
	if r.mu.TryLock() {
		r.mu.Unlock()
		return false
	}
	return true
}

// Run executes body as one speculative transaction. A nil return means
// the transaction committed; otherwise it aborted with the returned
// status, which has already been tallied via Record.
func (r *Region) Run(body func(tx *Tx)) *AbortStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return runBody(body)
}

func runBody(body func(tx *Tx)) (status *AbortStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			sig, ok := rec.(abortSignal)
			if !ok {
				panic(rec)
			}
			s := sig.status
			Record(s)
			status = &s
		}
	}()
	body(&Tx{})
	return nil
}
