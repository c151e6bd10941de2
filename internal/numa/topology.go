// Package numa models the NUMA topology discovery and thread-pinning
// primitives spec.md treats as an external service with a narrow
// contract. It backs them with golang.org/x/sys/unix's real affinity
// syscalls, and a best-effort read of /sys/devices/system/node for
// node/CPU grouping, falling back to a single synthetic node when that
// path is unavailable (containers, non-Linux, restricted sandboxes).
package numa

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// Topology is an immutable snapshot of which CPUs belong to which NUMA
// node, grounded on original_source/rcu-hash-list.c's
// for_each_node_with_cpus iteration.
type Topology struct {
	nodeCPUs []node
	cpuNode  map[int]int
}

type node struct {
	id   int
	cpus []int
}

// Discover builds a Topology from /sys/devices/system/node, or a single
// synthetic node covering every CPU runtime.NumCPU reports when that
// path does not exist.
func Discover() *Topology {
	if t := discoverSysfs("/sys/devices/system/node"); t != nil {
		return t
	}
	return singleNode(runtime.NumCPU())
}

func discoverSysfs(base string) *Topology {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	var nodes []node
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || !strings.HasPrefix(name, "node") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(name, "node"))
		if err != nil {
			continue
		}
		cpus, err := readCPUList(filepath.Join(base, name, "cpulist"))
		if err != nil || len(cpus) == 0 {
			continue
		}
		nodes = append(nodes, node{id: idx, cpus: cpus})
	}
	if len(nodes) == 0 {
		return nil
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	return newTopology(nodes)
}

func singleNode(numCPUs int) *Topology {
	if numCPUs <= 0 {
		numCPUs = 1
	}
	cpus := make([]int, numCPUs)
	for i := range cpus {
		cpus[i] = i
	}
	return newTopology([]node{{id: 0, cpus: cpus}})
}

func newTopology(nodes []node) *Topology {
	cpuNode := make(map[int]int)
	for idx, n := range nodes {
		for _, cpu := range n.cpus {
			cpuNode[cpu] = idx
		}
	}
	return &Topology{nodeCPUs: nodes, cpuNode: cpuNode}
}

// readCPUList parses a Linux cpulist range string such as "0-3,8,10-11".
func readCPUList(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("numa: empty cpulist %s", path)
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return nil, nil
	}
	return parseCPUList(line), nil
}

// parseCPUList parses the comma-separated range syntax itself, e.g.
// "0-3,8,10-11", split out from readCPUList so it can be tested without
// a backing sysfs file.
func parseCPUList(line string) []int {
	var cpus []int
	for _, part := range strings.Split(line, ",") {
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			loN, err1 := strconv.Atoi(lo)
			hiN, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil {
				continue
			}
			for c := loN; c <= hiN; c++ {
				cpus = append(cpus, c)
			}
		} else if n, err := strconv.Atoi(part); err == nil {
			cpus = append(cpus, n)
		}
	}
	return cpus
}

// NodeCount returns the number of NUMA nodes discovered.
func (t *Topology) NodeCount() int { return len(t.nodeCPUs) }

// CPUsOf returns the CPU ids belonging to the given node index
// (0-based, not the raw sysfs node id).
func (t *Topology) CPUsOf(nodeIdx int) []int {
	if nodeIdx < 0 || nodeIdx >= len(t.nodeCPUs) {
		return nil
	}
	return t.nodeCPUs[nodeIdx].cpus
}

// NodeOf returns which node index a CPU belongs to, or 0 if unknown.
func (t *Topology) NodeOf(cpu int) int {
	if idx, ok := t.cpuNode[cpu]; ok {
		return idx
	}
	return 0
}
