package numa

import "testing"

func TestSingleNodeCoversAllCPUs(t *testing.T) {
	topo := singleNode(4)
	if topo.NodeCount() != 1 {
		t.Fatalf("NodeCount() = %d, want 1", topo.NodeCount())
	}
	cpus := topo.CPUsOf(0)
	if len(cpus) != 4 {
		t.Fatalf("CPUsOf(0) = %v, want 4 entries", cpus)
	}
	for _, cpu := range cpus {
		if topo.NodeOf(cpu) != 0 {
			t.Errorf("NodeOf(%d) = %d, want 0", cpu, topo.NodeOf(cpu))
		}
	}
}

func TestSingleNodeClampsNonPositive(t *testing.T) {
	topo := singleNode(0)
	if topo.NodeCount() != 1 || len(topo.CPUsOf(0)) != 1 {
		t.Fatalf("singleNode(0) did not clamp to one CPU, got %v", topo.CPUsOf(0))
	}
}

func TestReadCPUListRanges(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []int
	}{
		{name: "single range", line: "0-3", want: []int{0, 1, 2, 3}},
		{name: "mixed", line: "0-1,4,6-7", want: []int{0, 1, 4, 6, 7}},
		{name: "single cpu", line: "5", want: []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCPUList(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("parseCPUList(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("parseCPUList(%q)[%d] = %d, want %d", tt.line, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNewTopologyIndexesByPosition(t *testing.T) {
	nodes := []node{
		{id: 3, cpus: []int{0, 1}},
		{id: 7, cpus: []int{2, 3}},
	}
	topo := newTopology(nodes)

	if topo.NodeOf(0) != 0 || topo.NodeOf(1) != 0 {
		t.Errorf("CPUs of first node should map to index 0")
	}
	if topo.NodeOf(2) != 1 || topo.NodeOf(3) != 1 {
		t.Errorf("CPUs of second node should map to index 1")
	}
	if got := topo.CPUsOf(0); len(got) != 2 || got[0] != 0 {
		t.Errorf("CPUsOf(0) = %v, want [0 1]", got)
	}
}
