package keyset

// Coarse RCU protocol: one writer lock per list, lock-free readers via
// list.contains. Grounded on original_source/rcu-hash-list.c's
// rcu_list_add/rcu_list_remove (coarse add/remove) and
// rcu_list_try_add/rcu_list_try_remove (the "forgive" try-lock variant).
//
// Readers never take l.coarse at all: they rely on the same lock-free
// traversal every protocol shares (list.contains), and on Go's garbage
// collector to stand in for the original's deferred kfree_rcu -- see
// DESIGN.md's Open Question on reclamation. The writer lock here exists
// only to serialize concurrent inserts/removes against each other, not
// against readers.

func coarseAdd(l *list, key Key) AddResult {
	l.coarse.Lock()
	defer l.coarse.Unlock()
	return insertLocked(l, key)
}

func coarseRemove(l *list, key Key) RemoveResult {
	l.coarse.Lock()
	defer l.coarse.Unlock()
	return removeLocked(l, key)
}

func coarseTryAdd(l *list, key Key) AddResult {
	if !l.coarse.TryLock() {
		return Conflict
	}
	defer l.coarse.Unlock()
	return insertLocked(l, key)
}

func coarseTryRemove(l *list, key Key) RemoveResult {
	if !l.coarse.TryLock() {
		return RemoveConflict
	}
	defer l.coarse.Unlock()
	return removeLocked(l, key)
}

// insertLocked performs the insert assuming l.coarse (or an equivalent
// writer-exclusion mechanism) is already held for the duration of the
// traversal and the pointer publication.
func insertLocked(l *list, key Key) AddResult {
	prev, next := l.find(key)
	if next.key == key {
		return AlreadyPresent
	}
	n := newNode(key, l.numaNodes)
	n.storeNext(next)
	prev.storeNext(n)
	return Added
}

// removeLocked performs the removal assuming a writer-exclusion
// mechanism is already held. It marks the unlinked node removed so any
// reader still holding a stale reference to it observes that it is gone,
// matching the original's "p_next->removed = 1" commit inside the same
// protected region as the pointer swing.
func removeLocked(l *list, key Key) RemoveResult {
	prev, target := l.find(key)
	if target.key != key {
		return NotFound
	}
	prev.storeNext(target.loadNext())
	target.removed.Store(true)
	return Removed
}
