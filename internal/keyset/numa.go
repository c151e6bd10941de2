package keyset

// NUMA-aware fine-grained protocol, grounded on
// original_source/rcu-hash-list.c's rcu_list_numa_add/rcu_list_numa_remove:
// identical lock-couple-and-validate shape to fglock.go, but each node
// carries an additional per-NUMA-node lock (node.numaLocks) acquired
// before the node's own global_lock. Locks are taken prev-numa, next-numa,
// prev-global, next-global and released in exact reverse order, matching
// the original's nested spin_lock/spin_unlock sequencing.

func numaAdd(l *list, key Key, numaNode int) AddResult {
	for {
		prev, next := l.find(key)
		if next.key == key {
			return AlreadyPresent
		}

		prev.numaLocks[numaNode].Lock()
		next.numaLocks[numaNode].Lock()
		prev.lock.Lock()
		next.lock.Lock()

		if prev.loadNext() != next || prev.removed.Load() || next.removed.Load() {
			next.lock.Unlock()
			prev.lock.Unlock()
			next.numaLocks[numaNode].Unlock()
			prev.numaLocks[numaNode].Unlock()
			continue
		}

		n := newNode(key, l.numaNodes)
		n.storeNext(next)
		prev.storeNext(n)

		next.lock.Unlock()
		prev.lock.Unlock()
		next.numaLocks[numaNode].Unlock()
		prev.numaLocks[numaNode].Unlock()
		return Added
	}
}

func numaRemove(l *list, key Key, numaNode int) RemoveResult {
	for {
		prev, target := l.find(key)
		if target.key != key {
			return NotFound
		}
		succ := target.loadNext()

		prev.numaLocks[numaNode].Lock()
		target.numaLocks[numaNode].Lock()
		succ.numaLocks[numaNode].Lock()
		prev.lock.Lock()
		target.lock.Lock()
		succ.lock.Lock()

		if prev.removed.Load() || target.removed.Load() || succ.removed.Load() ||
			prev.loadNext() != target || target.loadNext() != succ {
			succ.lock.Unlock()
			target.lock.Unlock()
			prev.lock.Unlock()
			succ.numaLocks[numaNode].Unlock()
			target.numaLocks[numaNode].Unlock()
			prev.numaLocks[numaNode].Unlock()
			continue
		}

		prev.storeNext(succ)
		target.removed.Store(true)

		succ.lock.Unlock()
		target.lock.Unlock()
		prev.lock.Unlock()
		succ.numaLocks[numaNode].Unlock()
		target.numaLocks[numaNode].Unlock()
		prev.numaLocks[numaNode].Unlock()
		return Removed
	}
}
