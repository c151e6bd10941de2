package keyset

import (
	"sync"
	"sync/atomic"
)

// node is one element of a bucket's sorted singly-linked list, including
// the sentinel head (minKey) and tail (maxKey). Every field a protocol
// needs for its own synchronization discipline lives here, grounded on
// original_source/hash-list.h's node_t union:
//
//   - next is read lock-free by Contains and by every protocol's
//     traversal; it is only ever written while holding whatever lock (or
//     transaction) that protocol's commit step requires, and always via
//     an atomic store so concurrent lock-free readers see a consistent
//     pointer.
//   - removed marks a node unlinked from its list; it exists purely so a
//     reader or a racing writer that is still holding a stale reference
//     can detect that the node is gone rather than silently splicing
//     against it (see DESIGN.md's Open Question on reclamation).
//   - lock is the node's own mutex, used by the fine-grained and
//     NUMA-aware protocols as a per-node lock-couple ("global_lock" in
//     the original).
//   - numaLocks holds one lock per NUMA node, acquired before lock in
//     the NUMA-aware protocol to keep same-node contention off the
//     cross-node lock (pnd_slocks in the original).
//   - htmFlag and numaFlags stand in for the original's per-node boolean
//     "htmlock"/"pnodelock" flags used by the HTM-as-lock family: a short
//     transaction flips them instead of calling into a real lock.
type node struct {
	key     Key
	next    atomic.Pointer[node]
	removed atomic.Bool

	lock      sync.Mutex
	numaLocks []sync.Mutex

	htmFlag   atomic.Bool
	numaFlags []atomic.Bool
}

func newNode(key Key, numaNodes int) *node {
	return &node{
		key:       key,
		numaLocks: make([]sync.Mutex, numaNodes),
		numaFlags: make([]atomic.Bool, numaNodes),
	}
}

func (n *node) loadNext() *node { return n.next.Load() }

func (n *node) storeNext(next *node) { n.next.Store(next) }

// casFlag attempts to flip the node's global HTM-as-lock flag from false
// to true, the two-phase-CAS stand-in for a short hardware transaction
// that tests-and-sets the flag.
func (n *node) casFlag() bool { return n.htmFlag.CompareAndSwap(false, true) }

func (n *node) clearFlag() { n.htmFlag.Store(false) }

func (n *node) flagHeld() bool { return n.htmFlag.Load() }

func (n *node) casNumaFlag(numaNode int) bool {
	return n.numaFlags[numaNode].CompareAndSwap(false, true)
}

func (n *node) clearNumaFlag(numaNode int) { n.numaFlags[numaNode].Store(false) }

func (n *node) numaFlagHeld(numaNode int) bool { return n.numaFlags[numaNode].Load() }
