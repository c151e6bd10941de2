package keyset

import (
	"context"

	"rcuhashlist/internal/htm"
)

// One-shot and retrying HTM-backed protocols, grounded on
// original_source/rcx-hash-list.c's rcx_list_add/_lf_add/_fb1_add and
// their _remove counterparts. All four share the same lock-free
// traversal and the same validate-then-commit transaction shape; they
// differ only in what happens after an abort:
//
//   - forgive: report the abort to the caller and give up immediately
//     (rcx_hash_list_try_add is byte-identical to rcx_list_add).
//   - retry: keep re-attempting until it commits or the caller's
//     context is done (rcx_hash_list_retry_add / benchmark_endtime).
//   - lf ("lock fallback"): re-attempt up to a fixed number of times,
//     then fall back to the coarse lock for this call.
//   - hwa ("hardware abort"): re-attempt as long as the abort carries a
//     retry hint, otherwise fall back to the coarse lock for this call.

const lfRetryLimit = 10

// rcxTryAdd performs one speculative insert attempt: validate that the
// predecessor still points at the located successor and that neither
// has been removed, then publish. A non-nil AbortStatus means the
// attempt aborted and nothing was inserted.
func rcxTryAdd(l *list, key Key) (AddResult, *htm.AbortStatus) {
	prev, next := l.find(key)
	if next.key == key {
		return AlreadyPresent, nil
	}
	n := newNode(key, l.numaNodes)
	n.storeNext(next)

	status := l.region.Run(func(tx *htm.Tx) {
		if prev.loadNext() != next {
			tx.Abort(htm.CodePointerConflict)
		}
		if prev.removed.Load() || next.removed.Load() {
			tx.Abort(htm.CodeDoubleFree)
		}
		prev.storeNext(n)
	})
	if status != nil {
		return Conflict, status
	}
	return Added, nil
}

func rcxTryRemove(l *list, key Key) (RemoveResult, *htm.AbortStatus) {
	prev, target := l.find(key)
	if target.key != key {
		return NotFound, nil
	}
	succ := target.loadNext()

	status := l.region.Run(func(tx *htm.Tx) {
		if prev.removed.Load() || target.removed.Load() || succ.removed.Load() {
			tx.Abort(htm.CodeDoubleFree)
		}
		if prev.loadNext() != target || target.loadNext() != succ {
			tx.Abort(htm.CodePointerConflict)
		}
		prev.storeNext(succ)
		target.removed.Store(true)
	})
	if status != nil {
		return RemoveConflict, status
	}
	return Removed, nil
}

func forgiveAdd(l *list, key Key) AddResult {
	result, _ := rcxTryAdd(l, key)
	return result
}

func forgiveRemove(l *list, key Key) RemoveResult {
	result, _ := rcxTryRemove(l, key)
	return result
}

func retryAdd(ctx context.Context, l *list, key Key) AddResult {
	for {
		result, status := rcxTryAdd(l, key)
		if status == nil {
			return result
		}
		select {
		case <-ctx.Done():
			return Conflict
		default:
		}
	}
}

func retryRemove(ctx context.Context, l *list, key Key) RemoveResult {
	for {
		result, status := rcxTryRemove(l, key)
		if status == nil {
			return result
		}
		select {
		case <-ctx.Done():
			return RemoveConflict
		default:
		}
	}
}

// rcxTryAddLF and rcxTryRemoveLF additionally treat the coarse lock
// being held by a concurrent fallback attempt as an abort reason,
// mirroring the spin_is_locked(&rcuspin) check the original performs
// both before and inside the transaction.
func rcxTryAddLF(l *list, key Key) (AddResult, *htm.AbortStatus) {
	prev, next := l.find(key)
	if next.key == key {
		return AlreadyPresent, nil
	}
	n := newNode(key, l.numaNodes)
	n.storeNext(next)

	for l.spinHeld() {
	}

	status := l.region.Run(func(tx *htm.Tx) {
		if l.spinHeld() {
			tx.Abort(htm.CodeLockHeld)
		}
		if prev.loadNext() != next {
			tx.Abort(htm.CodePointerConflict)
		}
		if prev.removed.Load() || next.removed.Load() {
			tx.Abort(htm.CodeDoubleFree)
		}
		prev.storeNext(n)
	})
	if status != nil {
		return Conflict, status
	}
	return Added, nil
}

func rcxTryRemoveLF(l *list, key Key) (RemoveResult, *htm.AbortStatus) {
	prev, target := l.find(key)
	if target.key != key {
		return NotFound, nil
	}
	succ := target.loadNext()

	for l.spinHeld() {
	}

	status := l.region.Run(func(tx *htm.Tx) {
		if l.spinHeld() {
			tx.Abort(htm.CodeLockHeld)
		}
		if prev.removed.Load() || target.removed.Load() || succ.removed.Load() {
			tx.Abort(htm.CodeDoubleFree)
		}
		if prev.loadNext() != target || target.loadNext() != succ {
			tx.Abort(htm.CodePointerConflict)
		}
		prev.storeNext(succ)
		target.removed.Store(true)
	})
	if status != nil {
		return RemoveConflict, status
	}
	return Removed, nil
}

func lfAdd(l *list, key Key) AddResult {
	for retries := 0; ; retries++ {
		if retries >= lfRetryLimit {
			l.coarse.Lock()
			defer l.coarse.Unlock()
			return insertLocked(l, key)
		}
		if result, status := rcxTryAddLF(l, key); status == nil {
			return result
		}
	}
}

func lfRemove(l *list, key Key) RemoveResult {
	for retries := 0; ; retries++ {
		if retries >= lfRetryLimit {
			l.coarse.Lock()
			defer l.coarse.Unlock()
			return removeLocked(l, key)
		}
		if result, status := rcxTryRemoveLF(l, key); status == nil {
			return result
		}
	}
}

// hwaAdd and hwaRemove keep re-attempting the speculative path only as
// long as the abort's retry hint says it is worth it; once it is not,
// they fall back to the coarse lock for this call only, as lf does once
// its retry limit is reached.
func hwaAdd(l *list, key Key) AddResult {
	for {
		result, status := rcxTryAddLF(l, key)
		if status == nil {
			return result
		}
		if status.RetryHint {
			continue
		}
		l.coarse.Lock()
		defer l.coarse.Unlock()
		return insertLocked(l, key)
	}
}

func hwaRemove(l *list, key Key) RemoveResult {
	for {
		result, status := rcxTryRemoveLF(l, key)
		if status == nil {
			return result
		}
		if status.RetryHint {
			continue
		}
		l.coarse.Lock()
		defer l.coarse.Unlock()
		return removeLocked(l, key)
	}
}
