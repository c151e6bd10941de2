package keyset

import "rcuhashlist/internal/htm"

// HTM-as-lock protocols, grounded on original_source/rcx-hash-list.c's
// rcx_list_htmlock_*, rcx_list_hhtmlock_* and rcx_list_numa_* families.
// Unlike rcx.go's plain transactions, these never validate-and-commit
// inside a transaction: the transaction's only job is to atomically set
// a pair (or triple) of per-node flags, which then stand in for a real
// lock held by plain, non-transactional code that does the actual
// validate-and-commit. A validation failure here is therefore recorded
// directly (htm.RecordDirect), not via Tx.Abort -- there is no open
// transaction left to abort by the time validation runs.

// htmlockAdd/htmlockRemove use a single flat per-node flag
// (node.htmFlag), grounded on rcx_list_htmlock_add/_remove.
func htmlockAdd(l *list, key Key) AddResult {
	for {
		prev, next := l.find(key)
		if next.key == key {
			return AlreadyPresent
		}
		n := newNode(key, l.numaNodes)
		n.storeNext(next)

		if !acquireFlagPair(l, prev, next) {
			continue
		}

		if prev.removed.Load() || next.removed.Load() {
			htm.RecordDirect(htm.CodeDoubleFree)
			next.clearFlag()
			prev.clearFlag()
			continue
		}
		if prev.loadNext() != next {
			htm.RecordDirect(htm.CodePointerConflict)
			next.clearFlag()
			prev.clearFlag()
			continue
		}

		prev.storeNext(n)
		next.clearFlag()
		prev.clearFlag()
		return Added
	}
}

func htmlockRemove(l *list, key Key) RemoveResult {
	for {
		prev, target := l.find(key)
		if target.key != key {
			return NotFound
		}
		succ := target.loadNext()

		if !acquireFlagTriple(l, prev, target, succ) {
			continue
		}

		if prev.removed.Load() || target.removed.Load() || succ.removed.Load() {
			htm.RecordDirect(htm.CodeDoubleFree)
			succ.clearFlag()
			target.clearFlag()
			prev.clearFlag()
			continue
		}
		if prev.loadNext() != target || target.loadNext() != succ {
			htm.RecordDirect(htm.CodePointerConflict)
			succ.clearFlag()
			target.clearFlag()
			prev.clearFlag()
			continue
		}

		prev.storeNext(succ)
		target.removed.Store(true)

		succ.clearFlag()
		target.clearFlag()
		prev.clearFlag()
		return Removed
	}
}

// acquireFlagPair/acquireFlagTriple spin until neither node's flag is
// held, then run a short transaction that re-checks and sets all flags
// together, mirroring "while (htmlock(p)==1 ...) ; tx_stat=_xbegin(); if
// (any held) abort(CONFLICT); set all; _xend();". false means the
// transaction aborted and the caller should restart its own traversal.
func acquireFlagPair(l *list, a, b *node) bool {
	for a.flagHeld() || b.flagHeld() {
	}
	status := l.region.Run(func(tx *htm.Tx) {
		if a.flagHeld() || b.flagHeld() {
			tx.Abort(htm.CodePointerConflict)
		}
		a.htmFlag.Store(true)
		b.htmFlag.Store(true)
	})
	return status == nil
}

func acquireFlagTriple(l *list, a, b, c *node) bool {
	for a.flagHeld() || b.flagHeld() || c.flagHeld() {
	}
	status := l.region.Run(func(tx *htm.Tx) {
		if a.flagHeld() || b.flagHeld() || c.flagHeld() {
			tx.Abort(htm.CodePointerConflict)
		}
		a.htmFlag.Store(true)
		b.htmFlag.Store(true)
		c.htmFlag.Store(true)
	})
	return status == nil
}

func acquireNumaFlagPair(l *list, numaNode int, a, b *node) bool {
	for a.numaFlagHeld(numaNode) || b.numaFlagHeld(numaNode) {
	}
	status := l.region.Run(func(tx *htm.Tx) {
		if a.numaFlagHeld(numaNode) || b.numaFlagHeld(numaNode) {
			tx.Abort(htm.CodePointerConflict)
		}
		a.numaFlags[numaNode].Store(true)
		b.numaFlags[numaNode].Store(true)
	})
	return status == nil
}

func acquireNumaFlagTriple(l *list, numaNode int, a, b, c *node) bool {
	for a.numaFlagHeld(numaNode) || b.numaFlagHeld(numaNode) || c.numaFlagHeld(numaNode) {
	}
	status := l.region.Run(func(tx *htm.Tx) {
		if a.numaFlagHeld(numaNode) || b.numaFlagHeld(numaNode) || c.numaFlagHeld(numaNode) {
			tx.Abort(htm.CodePointerConflict)
		}
		a.numaFlags[numaNode].Store(true)
		b.numaFlags[numaNode].Store(true)
		c.numaFlags[numaNode].Store(true)
	})
	return status == nil
}

// hhtmlockAdd/hhtmlockRemove acquire a per-NUMA-node flag tier first,
// then the flat global flag tier, releasing in the reverse order:
// global first, NUMA-node second. Grounded on
// rcx_list_hhtmlock_add/_remove.
func hhtmlockAdd(l *list, key Key, numaNode int) AddResult {
	for {
		prev, next := l.find(key)
		if next.key == key {
			return AlreadyPresent
		}
		n := newNode(key, l.numaNodes)
		n.storeNext(next)

		if !acquireNumaFlagPair(l, numaNode, prev, next) {
			continue
		}
		for !acquireFlagPair(l, prev, next) {
		}

		if prev.removed.Load() || next.removed.Load() {
			htm.RecordDirect(htm.CodeDoubleFree)
			next.clearFlag()
			prev.clearFlag()
			next.clearNumaFlag(numaNode)
			prev.clearNumaFlag(numaNode)
			continue
		}
		if prev.loadNext() != next {
			htm.RecordDirect(htm.CodePointerConflict)
			next.clearFlag()
			prev.clearFlag()
			next.clearNumaFlag(numaNode)
			prev.clearNumaFlag(numaNode)
			continue
		}

		prev.storeNext(n)

		next.clearFlag()
		prev.clearFlag()
		next.clearNumaFlag(numaNode)
		prev.clearNumaFlag(numaNode)
		return Added
	}
}

func hhtmlockRemove(l *list, key Key, numaNode int) RemoveResult {
	for {
		prev, target := l.find(key)
		if target.key != key {
			return NotFound
		}
		succ := target.loadNext()

		if !acquireNumaFlagTriple(l, numaNode, prev, target, succ) {
			continue
		}
		for !acquireFlagTriple(l, prev, target, succ) {
		}

		if prev.removed.Load() || target.removed.Load() || succ.removed.Load() {
			htm.RecordDirect(htm.CodeDoubleFree)
			succ.clearFlag()
			target.clearFlag()
			prev.clearFlag()
			succ.clearNumaFlag(numaNode)
			target.clearNumaFlag(numaNode)
			prev.clearNumaFlag(numaNode)
			continue
		}
		if prev.loadNext() != target || target.loadNext() != succ {
			htm.RecordDirect(htm.CodePointerConflict)
			succ.clearFlag()
			target.clearFlag()
			prev.clearFlag()
			succ.clearNumaFlag(numaNode)
			target.clearNumaFlag(numaNode)
			prev.clearNumaFlag(numaNode)
			continue
		}

		prev.storeNext(succ)
		target.removed.Store(true)

		succ.clearFlag()
		target.clearFlag()
		prev.clearFlag()
		succ.clearNumaFlag(numaNode)
		target.clearNumaFlag(numaNode)
		prev.clearNumaFlag(numaNode)
		return Removed
	}
}

// rcxNumaAdd/rcxNumaRemove are the final combined design ("rcx"): a
// per-NUMA-node flag transaction stands in for the cheap node-local HTM
// lock, but the actual validate-and-commit runs under the node's real
// mutex (node.lock) rather than a second flag transaction -- grounded on
// rcx_list_numa_add/_remove, which acquire pnodelock via a transaction
// and then RCU_WRITER_LOCK(global_lock) via a real spinlock for the
// commit itself.
func rcxNumaAdd(l *list, key Key, numaNode int) AddResult {
	for {
		prev, next := l.find(key)
		if next.key == key {
			return AlreadyPresent
		}
		n := newNode(key, l.numaNodes)
		n.storeNext(next)

		if !acquireNumaFlagPair(l, numaNode, prev, next) {
			continue
		}

		prev.lock.Lock()
		next.lock.Lock()

		if prev.loadNext() != next {
			htm.RecordDirect(htm.CodePointerConflict)
			next.lock.Unlock()
			prev.lock.Unlock()
			next.clearNumaFlag(numaNode)
			prev.clearNumaFlag(numaNode)
			continue
		}
		if prev.removed.Load() || next.removed.Load() {
			htm.RecordDirect(htm.CodeDoubleFree)
			next.lock.Unlock()
			prev.lock.Unlock()
			next.clearNumaFlag(numaNode)
			prev.clearNumaFlag(numaNode)
			continue
		}

		prev.storeNext(n)

		next.lock.Unlock()
		prev.lock.Unlock()
		next.clearNumaFlag(numaNode)
		prev.clearNumaFlag(numaNode)
		return Added
	}
}

func rcxNumaRemove(l *list, key Key, numaNode int) RemoveResult {
	for {
		prev, target := l.find(key)
		if target.key != key {
			return NotFound
		}
		succ := target.loadNext()

		if !acquireNumaFlagTriple(l, numaNode, prev, target, succ) {
			continue
		}

		prev.lock.Lock()
		target.lock.Lock()
		succ.lock.Lock()

		if prev.removed.Load() || target.removed.Load() || succ.removed.Load() {
			htm.RecordDirect(htm.CodeDoubleFree)
			succ.lock.Unlock()
			target.lock.Unlock()
			prev.lock.Unlock()
			succ.clearNumaFlag(numaNode)
			target.clearNumaFlag(numaNode)
			prev.clearNumaFlag(numaNode)
			continue
		}
		if prev.loadNext() != target || target.loadNext() != succ {
			htm.RecordDirect(htm.CodePointerConflict)
			succ.lock.Unlock()
			target.lock.Unlock()
			prev.lock.Unlock()
			succ.clearNumaFlag(numaNode)
			target.clearNumaFlag(numaNode)
			prev.clearNumaFlag(numaNode)
			continue
		}

		prev.storeNext(succ)
		target.removed.Store(true)

		succ.lock.Unlock()
		target.lock.Unlock()
		prev.lock.Unlock()
		succ.clearNumaFlag(numaNode)
		target.clearNumaFlag(numaNode)
		prev.clearNumaFlag(numaNode)
		return Removed
	}
}
