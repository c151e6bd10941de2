package keyset

import (
	"sync"

	"rcuhashlist/internal/htm"
)

// list is one bucket: a sorted singly-linked list bounded by a minKey
// head sentinel and a maxKey tail sentinel, grounded on
// original_source/hash-list.h's list_t and rcu-hash-list.c's
// rcu_new_list/rcu_new_hash_list.
//
// coarse is the single writer lock shared by the coarse RCU protocols
// (rcu, rcu-forgive) and, by design, peeked and ultimately taken by the
// HTM lock-fallback policies (see rcx.go) -- exactly as the original's
// rcuspin is shared between rcu_list_add and rcx_list_lf_add/fb1_add.
//
// region is the speculative-transaction stand-in used by the plain HTM
// family (forgive/retry/hwa/rcuhtm) to validate-and-commit a pointer
// swing as one atomic step.
type list struct {
	head      *node
	coarse    sync.Mutex
	region    *htm.Region
	numaNodes int
}

func newList(numaNodes int) *list {
	head := newNode(minKey, numaNodes)
	tail := newNode(maxKey, numaNodes)
	head.storeNext(tail)
	return &list{head: head, region: htm.NewRegion(), numaNodes: numaNodes}
}

// find returns the immediate predecessor/successor pair such that
// prev.key < key <= next.key, walking lock-free via atomic loads of next.
// Shared by every protocol's traversal step and by Contains, matching
// the identical traversal loop repeated at the top of every *_list_add/
// *_list_remove function in the original source.
func (l *list) find(key Key) (prev, next *node) {
	prev = l.head
	next = prev.loadNext()
	for next.key < key {
		prev = next
		next = prev.loadNext()
	}
	return prev, next
}

// contains reports whether key is present, via the same lock-free
// traversal every protocol shares for reads (rcu_list_contains and
// rcx_list_contains are identical in the original; RLU's own contains is
// likewise a plain guarded traversal -- see rlu.go).
func (l *list) contains(key Key) bool {
	_, next := l.find(key)
	return next.key == key && !next.removed.Load()
}

// spinHeld peeks whether coarse is currently held by another goroutine,
// the Go stand-in for spin_is_locked(&p_list->rcuspin): the lf and hwa
// policies use it to detect a concurrent fallback in progress
// and treat that as an abort reason of its own.
func (l *list) spinHeld() bool {
	if l.coarse.TryLock() {
		l.coarse.Unlock()
		return false
	}
	return true
}

// size walks the full list under no lock, for diagnostics only (mirrors
// list_size in the original, used solely for reporting/debug, never on
// the hot path).
func (l *list) size() int {
	n := 0
	for cur := l.head.loadNext(); cur.key != maxKey; cur = cur.loadNext() {
		n++
	}
	return n
}
