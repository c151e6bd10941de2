package driver

import (
	"context"
	"math/rand"
	"sync/atomic"

	"rcuhashlist/internal/barrier"
	"rcuhashlist/internal/config"
	"rcuhashlist/internal/keyset"
	"rcuhashlist/internal/numa"
)

// runWorker binds the calling goroutine to its assigned CPU (if any),
// waits at the start barrier alongside every other worker, then issues
// a mixed read/update workload against set until ctx is done, mirroring
// sync_test_thread's loop and its benchmark_endtime() check.
func runWorker(
	ctx context.Context,
	id int,
	proto *keyset.Protocol,
	set *keyset.Set,
	cfg config.BenchmarkConfig,
	a assignment,
	b *barrier.Barrier,
	issued, success, updates *uint64,
) {
	if a.cpu >= 0 {
		_ = numa.BindCurrentThread(a.cpu)
	}

	// Mirrors prandom_seed_state(&benchmark_threads[i]->rnd, i + 1): each
	// thread's RNG stream is seeded from its own id alone, independent of
	// CPU/NUMA placement, so the workload is reproducible per thread.
	rng := rand.New(rand.NewSource(int64(id + 1)))
	b.Wait()

	for ctx.Err() == nil {
		key := keyset.Key(rng.Intn(cfg.Range))

		if rng.Intn(10000) < cfg.Update {
			atomic.AddUint64(updates, 1)
			if rng.Intn(2) == 0 {
				if proto.Add(ctx, set, key, a.numaNode) == keyset.Added {
					atomic.AddUint64(success, 1)
				}
			} else {
				if proto.Del(ctx, set, key, a.numaNode) == keyset.Removed {
					atomic.AddUint64(success, 1)
				}
			}
		} else if set.Contains(key) {
			atomic.AddUint64(success, 1)
		}

		atomic.AddUint64(issued, 1)
	}
}
