package debug

import (
	"sync"

	"github.com/inspectd/cdp-mcp/pkg/types"
)

// logpointMeta is the controller-side record for one logpoint: a read-only
// mirror of the debuggee-side counter plus the bounded ring of captured
// log lines. The mirror is reconciled solely by observing emitted log
// lines; it is never treated as authoritative on its own.
type logpointMeta struct {
	breakpointID string
	key          string
	location     types.SourceLocation
	template     string
	ceiling      int

	count int
	ring  []string
}

// Tracker maintains execution-limit state for every logpoint of one
// session.
type Tracker struct {
	mu       sync.Mutex
	byID     map[string]*logpointMeta
	byKey    map[string]*logpointMeta
	ringSize int
}

// NewTracker creates a tracker whose captured-log rings hold at most
// ringSize lines each.
func NewTracker(ringSize int) *Tracker {
	if ringSize < 1 {
		ringSize = 1
	}
	return &Tracker{
		byID:     make(map[string]*logpointMeta),
		byKey:    make(map[string]*logpointMeta),
		ringSize: ringSize,
	}
}

// Register records a newly placed logpoint.
func (t *Tracker) Register(breakpointID, key string, location types.SourceLocation, template string, ceiling int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta := &logpointMeta{
		breakpointID: breakpointID,
		key:          key,
		location:     location,
		template:     template,
		ceiling:      ceiling,
	}
	t.byID[breakpointID] = meta
	t.byKey[key] = meta
}

// Unregister drops tracking for a removed logpoint. It reports whether the
// id was known so breakpoint removal stays idempotent.
func (t *Tracker) Unregister(breakpointID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta, ok := t.byID[breakpointID]
	if !ok {
		return false
	}
	delete(t.byID, breakpointID)
	delete(t.byKey, meta.key)
	return true
}

// IsLogpoint reports whether a breakpoint id belongs to a tracked
// logpoint.
func (t *Tracker) IsLogpoint(breakpointID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.byID[breakpointID]
	return ok
}

// Observe processes one console line from the debuggee. Lines carrying a
// known logpoint marker increment that logpoint's mirror count and enter
// its ring (oldest line discarded first); everything else is ignored.
func (t *Tracker) Observe(line string) bool {
	key, message, ok := ParseLogLine(line)
	if !ok {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	meta, ok := t.byKey[key]
	if !ok {
		return false
	}

	meta.count++
	meta.ring = append(meta.ring, message)
	if len(meta.ring) > t.ringSize {
		meta.ring = meta.ring[len(meta.ring)-t.ringSize:]
	}
	return true
}

// Count returns the mirror count for a breakpoint id.
func (t *Tracker) Count(breakpointID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if meta, ok := t.byID[breakpointID]; ok {
		return meta.count
	}
	return 0
}

// Breach builds the limit-breach snapshot for a logpoint that just forced
// a pause. The reported count is at least ceiling+1 even if the console
// line for the breaching hit has not been observed yet (the console event
// and the paused event race on the wire).
func (t *Tracker) Breach(breakpointID string) *types.LimitBreach {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta, ok := t.byID[breakpointID]
	if !ok {
		return nil
	}

	count := meta.count
	if count <= meta.ceiling {
		count = meta.ceiling + 1
	}

	ring := make([]string, len(meta.ring))
	copy(ring, meta.ring)

	return &types.LimitBreach{
		BreakpointID:   meta.breakpointID,
		Location:       meta.location,
		Template:       meta.template,
		ExecutionCount: count,
		Ceiling:        meta.ceiling,
		CapturedLogs:   ring,
	}
}

// Reset zeroes the mirror count for a breakpoint id and returns the
// counter key whose debuggee-side value must be zeroed as well. The
// two-sided reset is required: zeroing only one side leaves the pause
// condition misfiring on the very next hit.
func (t *Tracker) Reset(breakpointID string) (key string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta, found := t.byID[breakpointID]
	if !found {
		return "", false
	}
	meta.count = 0
	return meta.key, true
}

// CapturedLogs returns a copy of the ring for a breakpoint id.
func (t *Tracker) CapturedLogs(breakpointID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	meta, ok := t.byID[breakpointID]
	if !ok {
		return nil
	}
	out := make([]string, len(meta.ring))
	copy(out, meta.ring)
	return out
}
