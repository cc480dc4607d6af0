package core_test

import (
	"testing"

	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

func intPtr(v int) *int { return &v }

func TestInsertPosition_EmptyList(t *testing.T) {
	t.Parallel()

	pos, rebalance := core.InsertPosition(nil, nil)
	if rebalance {
		t.Fatalf("empty list must not need rebalance")
	}
	if pos != core.PositionStep {
		t.Fatalf("expected %d, got %d", core.PositionStep, pos)
	}
}

func TestInsertPosition_Append(t *testing.T) {
	t.Parallel()

	pos, rebalance := core.InsertPosition(intPtr(300), nil)
	if rebalance || pos != 400 {
		t.Fatalf("expected 400, got %d (rebalance=%v)", pos, rebalance)
	}
}

func TestInsertPosition_Head(t *testing.T) {
	t.Parallel()

	pos, rebalance := core.InsertPosition(nil, intPtr(100))
	if rebalance || pos >= 100 || pos < 1 {
		t.Fatalf("expected head position in [1,100), got %d (rebalance=%v)", pos, rebalance)
	}

	// head of a very tight list clamps at 1
	pos, rebalance = core.InsertPosition(nil, intPtr(50))
	if rebalance || pos != 1 {
		t.Fatalf("expected clamp to 1, got %d (rebalance=%v)", pos, rebalance)
	}
}

func TestInsertPosition_Midpoint(t *testing.T) {
	t.Parallel()

	pos, rebalance := core.InsertPosition(intPtr(100), intPtr(200))
	if rebalance || pos != 150 {
		t.Fatalf("expected midpoint 150, got %d (rebalance=%v)", pos, rebalance)
	}
}

func TestInsertPosition_TightGapNeedsRebalance(t *testing.T) {
	t.Parallel()

	if _, rebalance := core.InsertPosition(intPtr(100), intPtr(101)); !rebalance {
		t.Fatalf("gap of 1 must trigger rebalance")
	}
}

func TestRebalancedPositions(t *testing.T) {
	t.Parallel()

	got := core.RebalancedPositions(3)
	want := []int{100, 200, 300}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slot %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestListConsistent(t *testing.T) {
	t.Parallel()

	if !core.ListConsistent([]int{100, 200, 300}) {
		t.Fatalf("spaced list must be consistent")
	}
	if core.ListConsistent([]int{100, 101, 300}) {
		t.Fatalf("gap of 1 must be inconsistent")
	}
	if !core.ListConsistent(nil) {
		t.Fatalf("empty list must be consistent")
	}
}
