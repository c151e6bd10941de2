// Package driver runs one benchmark invocation end to end: pre-fills a
// Set, spins up the configured number of worker goroutines under a
// shared start barrier, runs a mixed read/update workload for a fixed
// wall-clock duration, and aggregates the result. Grounded on
// original_source/sync_test.c's sync_test_init/sync_test_thread.
package driver

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"

	"rcuhashlist/internal/barrier"
	"rcuhashlist/internal/config"
	"rcuhashlist/internal/htm"
	"rcuhashlist/internal/keyset"
	"rcuhashlist/internal/logger"
	"rcuhashlist/internal/numa"
	"rcuhashlist/internal/report"
)

// rluStallThreshold mirrors sync_test.c's "if (!strcmp(bench->name,
// "rlu") && threads_nb >= 144)" guard: the donor RLU library is
// documented to stall indefinitely at or above 144 threads, so runs
// requesting that many threads against an rlu-family protocol are
// rejected up front rather than left to hang.
const rluStallThreshold = 144

// ErrRLUStall is returned by Run when an rlu-family protocol is
// requested with a thread count known to stall the underlying library.
var ErrRLUStall = fmt.Errorf("driver: rlu-family protocols stall at %d or more threads", rluStallThreshold)

// Result is the aggregated outcome of one completed run.
type Result struct {
	Protocol   string
	ThreadsNb  int
	DurationMs int64
	IssuedOps  uint64
	SuccessOps uint64
	UpdateOps  uint64
	FinalSize  int
	Aborts     htm.Snapshot
}

// Driver owns the dependencies a run needs beyond the Config itself.
type Driver struct {
	cfg    *config.Config
	logger logger.Logger
	topo   *numa.Topology
	writer report.Writer
}

// New constructs a Driver. writer may be report.NopWriter{} to disable
// CSV output.
func New(cfg *config.Config, lgr logger.Logger, topo *numa.Topology, writer report.Writer) *Driver {
	return &Driver{cfg: cfg, logger: lgr, topo: topo, writer: writer}
}

// Run executes one complete benchmark pass for the configured protocol
// and reports the aggregated result, writing a row to the configured
// report.Writer as a side effect.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	proto, ok := keyset.Registry[d.cfg.Benchmark.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBenchmark, d.cfg.Benchmark.Name)
	}

	threadsNb := d.cfg.Benchmark.ThreadsNb
	if strings.HasPrefix(proto.Name, "rlu") && threadsNb >= rluStallThreshold {
		return nil, ErrRLUStall
	}

	tracer := otel.Tracer("rcuhashlist/driver")
	ctx, span := tracer.Start(ctx, "benchmark_run")
	defer span.End()

	htm.Reset()

	set := keyset.NewSet(d.cfg.Benchmark.NrBuckets, d.topo.NodeCount())
	d.prefill(ctx, proto, set)

	allowedCPUs, err := numa.AllowedCPUs()
	if err != nil || len(allowedCPUs) == 0 {
		allowedCPUs = []int{0}
	}
	assignments := planAssignments(d.cfg.CPUBind.Policy, threadsNb, d.topo, allowedCPUs)

	b := barrier.New(threadsNb)
	deadline := time.Duration(d.cfg.Benchmark.Duration) * time.Millisecond
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var issued, success, updates uint64
	var wg sync.WaitGroup
	wg.Add(threadsNb - 1)

	start := time.Now()
	for i := 1; i < threadsNb; i++ {
		go func(id int) {
			defer wg.Done()
			runWorker(runCtx, id, proto, set, d.cfg.Benchmark, assignments[id], b, &issued, &success, &updates)
		}(i)
	}

	// Thread 0 is both the control thread and a worker, mirroring
	// sync_test_init running the benchmark loop on the calling thread
	// while the rest run as separate kthreads.
	runWorker(runCtx, 0, proto, set, d.cfg.Benchmark, assignments[0], b, &issued, &success, &updates)

	wg.Wait()
	durationMs := time.Since(start).Milliseconds()

	snap := htm.Take()
	result := &Result{
		Protocol:   proto.Name,
		ThreadsNb:  threadsNb,
		DurationMs: durationMs,
		IssuedOps:  atomic.LoadUint64(&issued),
		SuccessOps: atomic.LoadUint64(&success),
		UpdateOps:  atomic.LoadUint64(&updates),
		FinalSize:  set.Size(),
		Aborts:     snap,
	}

	d.logger.Info("benchmark run complete",
		logger.F("protocol", result.Protocol),
		logger.F("threads", result.ThreadsNb),
		logger.F("duration_ms", result.DurationMs),
		logger.F("issued_ops", result.IssuedOps),
		logger.F("success_ops", result.SuccessOps),
		logger.F("aborts_total", snap.Total),
	)

	row := report.Row{
		Timestamp:    start,
		Protocol:     result.Protocol,
		ThreadsNb:    result.ThreadsNb,
		DurationMs:   result.DurationMs,
		IssuedOps:    result.IssuedOps,
		SuccessOps:   result.SuccessOps,
		UpdateOps:    result.UpdateOps,
		FinalSize:    result.FinalSize,
		AbortsByName: snap.ByName,
		AbortsTotal:  snap.Total,
	}
	if err := d.writer.WriteRow(row); err != nil {
		d.logger.Warn("failed to write report row", logger.F("err", err))
	}

	return result, nil
}

// prefill half-fills set's key range before the timed phase starts.
// Every protocol uses proto.PrefillAdd, which for rcu-forgive,
// rcu-fglock and rcu-numa is the coarse rcu insert rather than the
// protocol's own insert -- see registry.go's PrefillAdd doc comment.
func (d *Driver) prefill(_ context.Context, proto *keyset.Protocol, set *keyset.Set) {
	target := d.cfg.Benchmark.Range / 2
	for i := 0; i < target; i++ {
		for {
			key := keyset.Key(rand.Intn(d.cfg.Benchmark.Range))
			if proto.PrefillAdd(set, key) == keyset.Added {
				break
			}
		}
	}
}
