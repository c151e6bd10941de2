package keyset

// RLU ("Read-Log-Update") stands in for the original kernel module's
// userspace RLU library integration. hash-list.h only declares the
// rlu_hash_list_* prototypes; the file that would define them is absent
// from original_source entirely, so there is no RLU-specific log/commit
// logic in the pack to port. RLU layers per-thread read/write logs and
// deferred quiescence on top of the same coarse-grained writer exclusion
// rcu.go already implements, and readers here are already lock-free via
// list.contains, so rlu and rlu-forgive simply reuse the coarse
// protocol's add/remove -- the meaningful behavioral difference the
// original exhibits (RLU's documented stall past 144 threads) is modeled
// at the driver level, not here. See DESIGN.md.

func rluAdd(l *list, key Key) AddResult {
	return coarseAdd(l, key)
}

func rluRemove(l *list, key Key) RemoveResult {
	return coarseRemove(l, key)
}

func rluTryAdd(l *list, key Key) AddResult {
	return coarseTryAdd(l, key)
}

func rluTryRemove(l *list, key Key) RemoveResult {
	return coarseTryRemove(l, key)
}
