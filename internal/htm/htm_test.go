package htm

import "testing"

func TestRegionRunCommit(t *testing.T) {
	r := NewRegion()
	committed := false
	status := r.Run(func(tx *Tx) {
		committed = true
	})
	if status != nil {
		t.Fatalf("status = %+v, want nil", status)
	}
	if !committed {
		t.Fatalf("body did not run")
	}
}

func TestRegionRunAbort(t *testing.T) {
	Reset()
	r := NewRegion()
	afterAbort := false
	status := r.Run(func(tx *Tx) {
		tx.Abort(CodeDoubleFree)
		afterAbort = true
	})
	if status == nil {
		t.Fatalf("status = nil, want non-nil")
	}
	if status.Code != CodeDoubleFree {
		t.Fatalf("Code = %v, want CodeDoubleFree", status.Code)
	}
	if afterAbort {
		t.Fatalf("body continued executing after Abort panicked")
	}
}

func TestRegionHeld(t *testing.T) {
	r := NewRegion()
	if r.Held() {
		t.Fatalf("Held() = true on a fresh region")
	}
	done := make(chan struct{})
	entered := make(chan struct{})
	go func() {
		r.Run(func(tx *Tx) {
			close(entered)
			<-done
		})
	}()
	<-entered
	if !r.Held() {
		t.Fatalf("Held() = false while a transaction is running")
	}
	close(done)
}

func TestAbortStatusReasonsNonExclusive(t *testing.T) {
	tests := []struct {
		name    string
		status  AbortStatus
		wantAll []Reason
	}{
		{
			name:    "double free has no retry hint",
			status:  AbortStatus{Code: CodeDoubleFree, RetryHint: false},
			wantAll: []Reason{ReasonExplicit, ReasonDoubleFree},
		},
		{
			name:    "pointer conflict with retry hint",
			status:  AbortStatus{Code: CodePointerConflict, RetryHint: true},
			wantAll: []Reason{ReasonExplicit, ReasonRetryHint, ReasonPointerConflict},
		},
		{
			name:    "lock held with retry hint",
			status:  AbortStatus{Code: CodeLockHeld, RetryHint: true},
			wantAll: []Reason{ReasonExplicit, ReasonRetryHint, ReasonLockHeld},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.status.reasons()
			if len(got) != len(tt.wantAll) {
				t.Fatalf("reasons() = %v, want %v", got, tt.wantAll)
			}
			for i, r := range tt.wantAll {
				if got[i] != r {
					t.Fatalf("reasons()[%d] = %v, want %v", i, got[i], r)
				}
			}
		})
	}
}

func TestRecordIncrementsMultipleCounters(t *testing.T) {
	Reset()
	Record(AbortStatus{Code: CodePointerConflict, RetryHint: true})

	snap := Take()
	if snap.Total != 1 {
		t.Fatalf("Total = %d, want 1", snap.Total)
	}
	for _, name := range []string{"explicit", "retry_hint", "pointer_conflict"} {
		if snap.ByName[name] != 1 {
			t.Errorf("ByName[%q] = %d, want 1", name, snap.ByName[name])
		}
	}
	if snap.ByName["double_free"] != 0 {
		t.Errorf("ByName[double_free] = %d, want 0", snap.ByName["double_free"])
	}
}

func TestReportGuardsZeroDenominators(t *testing.T) {
	Reset()
	out := Report(0, 0, 0, 0)
	if out == "" {
		t.Fatalf("Report returned empty string")
	}
}
