package keyset

// Set is a hash table of buckets, each an independently synchronized
// sorted list, grounded on original_source/hash-list.h's hash_list_t and
// rcu-hash-list.c's HASH_VALUE/rcu_new_hash_list. Every bucket owns its
// own head/tail sentinels, coarse lock and HTM region: contention in one
// bucket never blocks another.
type Set struct {
	buckets []*list
}

// NewSet allocates a Set with nBuckets buckets, each sized to track
// numaNodes per-node lock/flag slots per node (see node.go).
func NewSet(nBuckets, numaNodes int) *Set {
	if nBuckets < 1 {
		nBuckets = 1
	}
	if numaNodes < 1 {
		numaNodes = 1
	}
	buckets := make([]*list, nBuckets)
	for i := range buckets {
		buckets[i] = newList(numaNodes)
	}
	return &Set{buckets: buckets}
}

// hashValue mirrors HASH_VALUE(p_hash_list, val): val % n_buckets.
// Key is signed, so negative keys are normalized into [0, n) the way
// Go's % (which keeps the dividend's sign) would not do on its own.
func (s *Set) hashValue(key Key) int {
	n := len(s.buckets)
	h := int(key) % n
	if h < 0 {
		h += n
	}
	return h
}

func (s *Set) bucket(key Key) *list {
	return s.buckets[s.hashValue(key)]
}

// Contains reports whether key is present, regardless of which
// synchronization protocol populated the set.
func (s *Set) Contains(key Key) bool {
	return s.bucket(key).contains(key)
}

// Size walks every bucket; diagnostics only, matching the original's
// hash_list_size (never called from the benchmark hot path).
func (s *Set) Size() int {
	n := 0
	for _, b := range s.buckets {
		n += b.size()
	}
	return n
}

// NumBuckets reports the bucket count the set was created with.
func (s *Set) NumBuckets() int {
	return len(s.buckets)
}

// Close releases s. The caller must ensure no concurrent Contains/Add/
// Remove is in flight -- the same precondition rcu_list_destroy and
// rcx_hash_list_destroy impose before freeing nodes directly. Unlike
// those, Close has no manual memory to free: dropping the bucket slice
// lets the Go garbage collector reclaim every node.
func (s *Set) Close() {
	s.buckets = nil
}
