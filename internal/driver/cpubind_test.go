package driver

import (
	"rcuhashlist/internal/numa"
	"testing"
)

func TestPlanAssignmentsNone(t *testing.T) {
	topo := numa.Discover()
	out := planAssignments("none", 5, topo, []int{0, 1, 2, 3})
	for i, a := range out {
		if a.cpu != -1 || a.numaNode != 0 {
			t.Errorf("assignment[%d] = %+v, want {cpu:-1 numaNode:0}", i, a)
		}
	}
}

func TestPlanAssignmentsSequentialWrapsAllowedCPUs(t *testing.T) {
	topo := numa.Discover()
	allowed := []int{2, 5}
	out := planAssignments("sequential", 5, topo, allowed)
	for i, a := range out {
		want := allowed[i%len(allowed)]
		if a.cpu != want {
			t.Errorf("assignment[%d].cpu = %d, want %d", i, a.cpu, want)
		}
	}
}

func TestPlanAssignmentsNumaRoundRobinsAcrossNodes(t *testing.T) {
	topo := numa.Discover()
	out := planAssignments("numa", topo.NodeCount()*2, topo, nil)
	for i, a := range out {
		wantNode := i % topo.NodeCount()
		if a.numaNode != wantNode {
			t.Errorf("assignment[%d].numaNode = %d, want %d", i, a.numaNode, wantNode)
		}
	}
}

func TestPlanAssignmentsLength(t *testing.T) {
	topo := numa.Discover()
	for _, policy := range []string{"none", "sequential", "numa"} {
		out := planAssignments(policy, 7, topo, []int{0})
		if len(out) != 7 {
			t.Errorf("policy %q: len(out) = %d, want 7", policy, len(out))
		}
	}
}
