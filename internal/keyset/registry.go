package keyset

import "context"

// Protocol is one synchronization strategy over a Set: how inserts and
// removes are made safe under concurrency. Contains is deliberately not
// part of this interface -- every protocol shares the exact same
// lock-free read path (Set.Contains), grounded on rcu_list_contains and
// rcx_list_contains being byte-identical in the original source.
//
// Add/Remove take a numaNode (the caller's current NUMA node, ignored by
// protocols that don't need it) and a context (honored only by the
// retry protocol, which loops until it commits or ctx is done,
// mirroring benchmark_endtime()).
type Protocol struct {
	Name string
	Add  func(ctx context.Context, s *Set, key Key, numaNode int) AddResult
	Del  func(ctx context.Context, s *Set, key Key, numaNode int) RemoveResult

	// PrefillAdd is used to half-fill the set before the measured
	// benchmark window starts. It defaults to Add with a background
	// context and node 0; rcu-forgive, rcu-fglock and rcu-numa override
	// it with the coarse rcu insert instead, matching sync_test.c's
	// prefill loop, which special-cases every benchmark name with an
	// "rcu-" prefix to call rcu_hash_list_add() directly rather than the
	// benchmark's own (try/fine-grained/NUMA) insert.
	PrefillAdd func(s *Set, key Key) AddResult
}

func ignoreCtxAdd(f func(l *list, key Key) AddResult) func(context.Context, *Set, Key, int) AddResult {
	return func(_ context.Context, s *Set, key Key, _ int) AddResult {
		return f(s.bucket(key), key)
	}
}

func ignoreCtxRemove(f func(l *list, key Key) RemoveResult) func(context.Context, *Set, Key, int) RemoveResult {
	return func(_ context.Context, s *Set, key Key, _ int) RemoveResult {
		return f(s.bucket(key), key)
	}
}

func numaAwareAdd(f func(l *list, key Key, numaNode int) AddResult) func(context.Context, *Set, Key, int) AddResult {
	return func(_ context.Context, s *Set, key Key, numaNode int) AddResult {
		return f(s.bucket(key), key, numaNode)
	}
}

func numaAwareRemove(f func(l *list, key Key, numaNode int) RemoveResult) func(context.Context, *Set, Key, int) RemoveResult {
	return func(_ context.Context, s *Set, key Key, numaNode int) RemoveResult {
		return f(s.bucket(key), key, numaNode)
	}
}

func coarsePrefill(s *Set, key Key) AddResult {
	return coarseAdd(s.bucket(key), key)
}

// Registry maps all 13 benchmark names to their protocols. It is a map
// and has no order; Names returns the names in the order
// original_source/sync_test.c's static benchmarks table declares them.
var Registry = buildRegistry()

func buildRegistry() map[string]*Protocol {
	protocols := []*Protocol{
		{
			Name: "rcu",
			Add:  ignoreCtxAdd(coarseAdd),
			Del:  ignoreCtxRemove(coarseRemove),
		},
		{
			Name:       "rcu-forgive",
			Add:        ignoreCtxAdd(coarseTryAdd),
			Del:        ignoreCtxRemove(coarseTryRemove),
			PrefillAdd: coarsePrefill,
		},
		{
			Name:       "rcu-fglock",
			Add:        ignoreCtxAdd(fineGrainedAdd),
			Del:        ignoreCtxRemove(fineGrainedRemove),
			PrefillAdd: coarsePrefill,
		},
		{
			Name:       "rcu-numa",
			Add:        numaAwareAdd(numaAdd),
			Del:        numaAwareRemove(numaRemove),
			PrefillAdd: coarsePrefill,
		},
		{
			Name: "rlu",
			Add:  ignoreCtxAdd(rluAdd),
			Del:  ignoreCtxRemove(rluRemove),
		},
		{
			Name: "rlu-forgive",
			Add:  ignoreCtxAdd(rluTryAdd),
			Del:  ignoreCtxRemove(rluTryRemove),
		},
		{
			Name: "rcuhtm",
			Add:  ignoreCtxAdd(lfAdd),
			Del:  ignoreCtxRemove(lfRemove),
		},
		{
			Name: "forgive",
			Add:  ignoreCtxAdd(forgiveAdd),
			Del:  ignoreCtxRemove(forgiveRemove),
		},
		{
			Name: "retry",
			Add: func(ctx context.Context, s *Set, key Key, _ int) AddResult {
				return retryAdd(ctx, s.bucket(key), key)
			},
			Del: func(ctx context.Context, s *Set, key Key, _ int) RemoveResult {
				return retryRemove(ctx, s.bucket(key), key)
			},
		},
		{
			Name: "hwa",
			Add:  ignoreCtxAdd(hwaAdd),
			Del:  ignoreCtxRemove(hwaRemove),
		},
		{
			Name: "rcx-htmlock",
			Add:  ignoreCtxAdd(htmlockAdd),
			Del:  ignoreCtxRemove(htmlockRemove),
		},
		{
			Name: "rcx-hhtmlock",
			Add:  numaAwareAdd(hhtmlockAdd),
			Del:  numaAwareRemove(hhtmlockRemove),
		},
		{
			Name: "rcx",
			Add:  numaAwareAdd(rcxNumaAdd),
			Del:  numaAwareRemove(rcxNumaRemove),
		},
	}

	reg := make(map[string]*Protocol, len(protocols))
	for _, p := range protocols {
		if p.PrefillAdd == nil {
			add := p.Add
			p.PrefillAdd = func(s *Set, key Key) AddResult {
				return add(context.Background(), s, key, 0)
			}
		}
		reg[p.Name] = p
	}
	return reg
}

// Names returns every registered protocol name in registry order.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for _, name := range [...]string{
		"rcu", "rcu-forgive", "rcu-fglock", "rcu-numa",
		"rlu", "rlu-forgive",
		"rcuhtm", "forgive", "retry", "hwa",
		"rcx-htmlock", "rcx-hhtmlock", "rcx",
	} {
		if _, ok := Registry[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
