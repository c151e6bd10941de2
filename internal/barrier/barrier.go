// Package barrier provides a reusable N-party cyclic start barrier,
// grounded on original_source/sync_test.c's barrier_init/barrier_cross:
// every worker thread blocks until the configured number of parties has
// arrived, then all are released together.
package barrier

import "sync"

// Barrier releases all waiting parties once n of them have called Wait.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	n       int
	waiting int
	round   uint64
}

// New returns a Barrier for n parties. n must be > 0.
func New(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until n parties (across all goroutines sharing this
// Barrier) have called Wait, then releases them all simultaneously.
func (b *Barrier) Wait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	round := b.round
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.round++
		b.cond.Broadcast()
		return
	}
	for b.round == round {
		b.cond.Wait()
	}
}
