package tracker

import (
	"testing"

	"github.com/netvigil/netvigil/internal/device"
)

func TestFirstObservationProducesNoDelta(t *testing.T) {
	tr := New()
	scan := device.NewSet("AA:BB:CC:DD:EE:FF", "11:22:33:44:55:66")

	joined, left, first := tr.Diff(scan)
	if !first {
		t.Error("first = false on initial diff, want true")
	}
	if joined.Len() != 0 || left.Len() != 0 {
		t.Errorf("initial diff joined=%v left=%v, want both empty", joined.Sorted(), left.Sorted())
	}
}

func TestFirstObservationWithEmptyScan(t *testing.T) {
	tr := New()
	empty := device.NewSet()

	_, _, first := tr.Diff(empty)
	if !first {
		t.Error("first = false, want true")
	}
	tr.Commit(empty)

	// An empty baseline is still a baseline: the next scan is a normal
	// steady-state cycle and its devices count as joins.
	joined, left, first := tr.Diff(device.NewSet("AA:BB:CC:DD:EE:FF"))
	if first {
		t.Error("first = true after commit, want false")
	}
	if joined.Len() != 1 || left.Len() != 0 {
		t.Errorf("joined=%v left=%v, want one join, no leaves", joined.Sorted(), left.Sorted())
	}
}

func TestDiffComputesSetDifferences(t *testing.T) {
	tr := New()
	a := device.NewSet("AA:BB:CC:DD:EE:FF", "11:22:33:44:55:66")
	b := device.NewSet("11:22:33:44:55:66", "DE:AD:BE:EF:00:01")

	tr.Diff(a)
	tr.Commit(a)

	joined, left, first := tr.Diff(b)
	if first {
		t.Error("first = true on second diff, want false")
	}
	if !joined.Has("DE:AD:BE:EF:00:01") || joined.Len() != 1 {
		t.Errorf("joined = %v, want {DE:AD:BE:EF:00:01}", joined.Sorted())
	}
	if !left.Has("AA:BB:CC:DD:EE:FF") || left.Len() != 1 {
		t.Errorf("left = %v, want {AA:BB:CC:DD:EE:FF}", left.Sorted())
	}
	for addr := range joined {
		if left.Has(addr) {
			t.Errorf("address %s in both joined and left", addr)
		}
	}
}

func TestIdenticalScansAreIdempotent(t *testing.T) {
	tr := New()
	scan := device.NewSet("AA:BB:CC:DD:EE:FF")

	tr.Diff(scan)
	tr.Commit(scan)

	joined, left, _ := tr.Diff(scan)
	if joined.Len() != 0 || left.Len() != 0 {
		t.Errorf("repeat scan joined=%v left=%v, want both empty", joined.Sorted(), left.Sorted())
	}
	tr.Commit(scan) // no-op commit must not disturb state

	joined, left, _ = tr.Diff(scan)
	if joined.Len() != 0 || left.Len() != 0 {
		t.Error("third identical scan produced a delta")
	}
}

func TestDiffWithoutCommitDoesNotAdvanceState(t *testing.T) {
	tr := New()
	a := device.NewSet("AA:BB:CC:DD:EE:FF")
	b := device.NewSet("11:22:33:44:55:66")

	tr.Diff(a)
	tr.Commit(a)

	// A cycle that diffs but fails before commit leaves the baseline alone.
	tr.Diff(b)

	joined, left, _ := tr.Diff(b)
	if !joined.Has("11:22:33:44:55:66") || !left.Has("AA:BB:CC:DD:EE:FF") {
		t.Errorf("joined=%v left=%v, want delta against original baseline", joined.Sorted(), left.Sorted())
	}
}

func TestCommitClonesScan(t *testing.T) {
	tr := New()
	scan := device.NewSet("AA:BB:CC:DD:EE:FF")
	tr.Diff(scan)
	tr.Commit(scan)

	// Mutating the caller's set after commit must not leak into the baseline.
	scan.Add("11:22:33:44:55:66")

	joined, _, _ := tr.Diff(device.NewSet("AA:BB:CC:DD:EE:FF", "11:22:33:44:55:66"))
	if !joined.Has("11:22:33:44:55:66") {
		t.Error("baseline shares storage with the committed scan")
	}
}

func TestStartupSummarySortsAddresses(t *testing.T) {
	ev := StartupSummary(device.NewSet("DE:AD:BE:EF:00:01", "11:22:33:44:55:66", "AA:BB:CC:DD:EE:FF"))
	if ev.Kind != EventStartupSummary {
		t.Fatalf("Kind = %v, want EventStartupSummary", ev.Kind)
	}
	want := []device.Addr{"11:22:33:44:55:66", "AA:BB:CC:DD:EE:FF", "DE:AD:BE:EF:00:01"}
	if len(ev.Addrs) != len(want) {
		t.Fatalf("len(Addrs) = %d, want %d", len(ev.Addrs), len(want))
	}
	for i := range want {
		if ev.Addrs[i] != want[i] {
			t.Errorf("Addrs[%d] = %s, want %s", i, ev.Addrs[i], want[i])
		}
	}
}

func TestOnlineReturnsCommittedState(t *testing.T) {
	tr := New()
	scan := device.NewSet("AA:BB:CC:DD:EE:FF")
	tr.Diff(scan)
	tr.Commit(scan)

	online := tr.Online()
	if online.Len() != 1 || !online.Has("AA:BB:CC:DD:EE:FF") {
		t.Errorf("Online() = %v, want committed scan", online.Sorted())
	}
}
