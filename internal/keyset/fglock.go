package keyset

// Fine-grained lock-couple-and-validate protocol, grounded on
// original_source/rcu-hash-list.c's rcu_list_fg_add/rcu_list_fg_remove:
// traverse lock-free to find the candidate predecessor/successor, lock
// both of their node-level locks in traversal order, re-validate that
// neither pointer nor removed-flag changed underneath, then commit; on
// validation failure, unlock and restart the whole traversal.

func fineGrainedAdd(l *list, key Key) AddResult {
	for {
		prev, next := l.find(key)
		if next.key == key {
			return AlreadyPresent
		}

		prev.lock.Lock()
		next.lock.Lock()

		if prev.loadNext() != next || prev.removed.Load() || next.removed.Load() {
			next.lock.Unlock()
			prev.lock.Unlock()
			continue
		}

		n := newNode(key, l.numaNodes)
		n.storeNext(next)
		prev.storeNext(n)

		next.lock.Unlock()
		prev.lock.Unlock()
		return Added
	}
}

func fineGrainedRemove(l *list, key Key) RemoveResult {
	for {
		prev, target := l.find(key)
		if target.key != key {
			return NotFound
		}
		succ := target.loadNext()

		prev.lock.Lock()
		target.lock.Lock()
		succ.lock.Lock()

		if prev.removed.Load() || target.removed.Load() || succ.removed.Load() ||
			prev.loadNext() != target || target.loadNext() != succ {
			succ.lock.Unlock()
			target.lock.Unlock()
			prev.lock.Unlock()
			continue
		}

		prev.storeNext(succ)
		target.removed.Store(true)

		succ.lock.Unlock()
		target.lock.Unlock()
		prev.lock.Unlock()
		return Removed
	}
}
