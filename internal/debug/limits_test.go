package debug

import (
	"fmt"
	"testing"

	"github.com/inspectd/cdp-mcp/pkg/types"
)

func registerTestLogpoint(t *Tracker, id, key string, ceiling int) {
	t.Register(id, key, types.SourceLocation{File: "main.js", Line: 6}, "n={n}", ceiling)
}

// TestTracker_Observe verifies that marker lines increment the mirror
// count and unrelated output does not.
func TestTracker_Observe(t *testing.T) {
	tr := NewTracker(20)
	registerTestLogpoint(tr, "bp-1", "main.js:5", 10)

	if !tr.Observe("[logpoint:main.js:5] n=1") {
		t.Fatal("expected marker line to be attributed")
	}
	if tr.Observe("unrelated console output") {
		t.Error("plain output must not be attributed")
	}
	if tr.Observe("[logpoint:other.js:9] n=1") {
		t.Error("unknown key must not be attributed")
	}

	if got := tr.Count("bp-1"); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

// TestTracker_RingBounds verifies the captured-log ring keeps only the
// newest lines once full.
func TestTracker_RingBounds(t *testing.T) {
	tr := NewTracker(3)
	registerTestLogpoint(tr, "bp-1", "main.js:5", 100)

	for i := 1; i <= 5; i++ {
		tr.Observe(fmt.Sprintf("[logpoint:main.js:5] n=%d", i))
	}

	logs := tr.CapturedLogs("bp-1")
	if len(logs) != 3 {
		t.Fatalf("ring length = %d, want 3", len(logs))
	}
	if logs[0] != "n=3" || logs[2] != "n=5" {
		t.Errorf("ring = %v, want oldest n=3 .. newest n=5", logs)
	}
	if got := tr.Count("bp-1"); got != 5 {
		t.Errorf("count = %d, want 5 (eviction must not touch the count)", got)
	}
}

// TestTracker_BreachCountFloor verifies a breach reports at least
// ceiling+1 hits even when the breaching hit's console line has not been
// observed yet.
func TestTracker_BreachCountFloor(t *testing.T) {
	tr := NewTracker(20)
	registerTestLogpoint(tr, "bp-1", "main.js:5", 3)

	// Only 2 of the 4 log lines have arrived when the pause lands.
	tr.Observe("[logpoint:main.js:5] n=1")
	tr.Observe("[logpoint:main.js:5] n=2")

	breach := tr.Breach("bp-1")
	if breach == nil {
		t.Fatal("expected a breach for a registered logpoint")
	}
	if breach.ExecutionCount != 4 {
		t.Errorf("ExecutionCount = %d, want ceiling+1 = 4", breach.ExecutionCount)
	}
	if breach.Ceiling != 3 {
		t.Errorf("Ceiling = %d, want 3", breach.Ceiling)
	}
	if len(breach.CapturedLogs) != 2 {
		t.Errorf("CapturedLogs = %v, want the 2 observed lines", breach.CapturedLogs)
	}

	if tr.Breach("bp-unknown") != nil {
		t.Error("breach for an unknown id must be nil")
	}
}

// TestTracker_Reset verifies reset zeroes the mirror and returns the
// counter key for the debuggee-side reset.
func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(20)
	registerTestLogpoint(tr, "bp-1", "main.js:5", 3)
	tr.Observe("[logpoint:main.js:5] n=1")

	key, ok := tr.Reset("bp-1")
	if !ok {
		t.Fatal("expected reset to find the logpoint")
	}
	if key != "main.js:5" {
		t.Errorf("key = %q, want main.js:5", key)
	}
	if got := tr.Count("bp-1"); got != 0 {
		t.Errorf("count after reset = %d, want 0", got)
	}

	if _, ok := tr.Reset("bp-unknown"); ok {
		t.Error("reset of an unknown id must report false")
	}
}

// TestTracker_Unregister verifies unregister is idempotent and stops
// attribution for the dropped key.
func TestTracker_Unregister(t *testing.T) {
	tr := NewTracker(20)
	registerTestLogpoint(tr, "bp-1", "main.js:5", 3)

	if !tr.Unregister("bp-1") {
		t.Fatal("first unregister should report true")
	}
	if tr.Unregister("bp-1") {
		t.Error("second unregister should report false")
	}
	if tr.Observe("[logpoint:main.js:5] n=1") {
		t.Error("observations must stop after unregister")
	}
	if tr.IsLogpoint("bp-1") {
		t.Error("IsLogpoint must be false after unregister")
	}
}
