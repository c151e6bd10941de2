package driver

import "rcuhashlist/internal/numa"

// assignment is one worker thread's pinning decision.
type assignment struct {
	cpu      int // -1 means unbound
	numaNode int
}

// planAssignments decides, for each of n worker threads, which CPU (if
// any) to bind it to and which NUMA node it should pass to NUMA-aware
// protocols. Grounded on sync_test.c's cpubind_seq_arr/cpubind_numa_arr:
// "sequential" walks the allowed CPU list in order, "numa" spreads
// threads round-robin across nodes before picking a CPU within the node,
// and "none" leaves every thread unbound.
func planAssignments(policy string, n int, topo *numa.Topology, allowedCPUs []int) []assignment {
	out := make([]assignment, n)

	switch policy {
	case "sequential":
		for i := 0; i < n; i++ {
			cpu := allowedCPUs[i%len(allowedCPUs)]
			out[i] = assignment{cpu: cpu, numaNode: topo.NodeOf(cpu)}
		}
	case "numa":
		nodeCount := topo.NodeCount()
		nodeCursor := make([]int, nodeCount)
		for i := 0; i < n; i++ {
			node := i % nodeCount
			cpus := topo.CPUsOf(node)
			if len(cpus) == 0 {
				out[i] = assignment{cpu: -1, numaNode: node}
				continue
			}
			cpu := cpus[nodeCursor[node]%len(cpus)]
			nodeCursor[node]++
			out[i] = assignment{cpu: cpu, numaNode: node}
		}
	default: // "none"
		for i := 0; i < n; i++ {
			out[i] = assignment{cpu: -1, numaNode: 0}
		}
	}

	return out
}
