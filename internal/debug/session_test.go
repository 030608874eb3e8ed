package debug

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/inspectd/cdp-mcp/internal/cdp"
	"github.com/inspectd/cdp-mcp/internal/config"
	"github.com/inspectd/cdp-mcp/internal/errors"
	"github.com/inspectd/cdp-mcp/pkg/types"
)

const testScriptURL = "https://app.example/main.js"

// fakeClient is an in-memory RuntimeClient. Placement behavior is
// scripted through the place function; evaluation results are consumed
// from evalErrs in call order.
type fakeClient struct {
	mu sync.Mutex

	kind      types.RuntimeKind
	connected bool
	scripts   []cdp.ScriptInfo

	nextID    int
	place     func(url string, line, column int, condition string) []cdp.Location
	placeErr  error
	placed    []placement
	removed   []string
	removeErr error

	resumeCount int
	pauseEvent  *cdp.PausedEvent
	waitEvents  []*cdp.PausedEvent // consumed in order; a nil entry times out
	waitErr     error

	evalErrs  []error
	evalExprs []string
	evaluated []string

	props  map[string][]cdp.PropertyDescriptor
	source string

	onPaused  func(*cdp.PausedEvent)
	onResumed func()
	onConsole func(string)
	onClose   func(error)
}

type placement struct {
	id        string
	url       string
	line      int
	column    int
	condition string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		kind:      types.RuntimeKindBrowser,
		connected: true,
		scripts: []cdp.ScriptInfo{
			{ScriptID: "s1", URL: testScriptURL, EndLine: 99},
		},
	}
}

func (f *fakeClient) Kind() types.RuntimeKind { return f.kind }
func (f *fakeClient) Connected() bool         { return f.connected }

func (f *fakeClient) SetBreakpointByURL(ctx context.Context, url string, line, column int, condition string) (string, []cdp.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placeErr != nil {
		return "", nil, f.placeErr
	}
	f.nextID++
	id := fmt.Sprintf("bp-%d", f.nextID)
	f.placed = append(f.placed, placement{id: id, url: url, line: line, column: column, condition: condition})
	if f.place != nil {
		return id, f.place(url, line, column, condition), nil
	}
	return id, []cdp.Location{{ScriptID: "s1", LineNumber: line, ColumnNumber: column}}, nil
}

func (f *fakeClient) RemoveBreakpoint(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return f.removeErr
}

func (f *fakeClient) Pause(ctx context.Context) error { return nil }
func (f *fakeClient) Resume(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeCount++
	return nil
}
func (f *fakeClient) StepOver(ctx context.Context) error { return nil }
func (f *fakeClient) StepInto(ctx context.Context) error { return nil }
func (f *fakeClient) StepOut(ctx context.Context) error  { return nil }

func (f *fakeClient) EvaluateOnCallFrame(ctx context.Context, frameID, expression string) (*cdp.RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalExprs = append(f.evalExprs, expression)
	var err error
	if len(f.evalErrs) > 0 {
		err = f.evalErrs[0]
		f.evalErrs = f.evalErrs[1:]
	}
	if err != nil {
		return nil, err
	}
	return &cdp.RemoteObject{Type: "number", Description: "42"}, nil
}

func (f *fakeClient) Evaluate(ctx context.Context, expression string) (*cdp.RemoteObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluated = append(f.evaluated, expression)
	return &cdp.RemoteObject{Type: "number", Description: "0"}, nil
}

func (f *fakeClient) GetProperties(ctx context.Context, objectID string) ([]cdp.PropertyDescriptor, error) {
	return f.props[objectID], nil
}

func (f *fakeClient) GetScriptSource(ctx context.Context, scriptID string) (string, error) {
	return f.source, nil
}

func (f *fakeClient) Scripts() []cdp.ScriptInfo { return f.scripts }
func (f *fakeClient) ScriptByID(id string) (cdp.ScriptInfo, bool) {
	for _, s := range f.scripts {
		if s.ScriptID == id {
			return s, true
		}
	}
	return cdp.ScriptInfo{}, false
}

func (f *fakeClient) WaitForPaused(timeout time.Duration) (*cdp.PausedEvent, error) {
	f.mu.Lock()
	if len(f.waitEvents) > 0 {
		ev := f.waitEvents[0]
		f.waitEvents = f.waitEvents[1:]
		f.mu.Unlock()
		if ev == nil {
			return nil, stderrors.New("timeout waiting for paused event")
		}
		return ev, nil
	}
	f.mu.Unlock()
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	if f.pauseEvent == nil {
		return nil, stderrors.New("timeout waiting for paused event")
	}
	return f.pauseEvent, nil
}

func (f *fakeClient) OnPaused(fn func(*cdp.PausedEvent)) { f.onPaused = fn }
func (f *fakeClient) OnResumed(fn func())                { f.onResumed = fn }
func (f *fakeClient) OnConsoleMessage(fn func(string))   { f.onConsole = fn }
func (f *fakeClient) OnClose(fn func(error))             { f.onClose = fn }

func (f *fakeClient) Close() error {
	f.connected = false
	return nil
}

func newTestSession(fc *fakeClient) *Session {
	cfg := config.DefaultConfig()
	cfg.ValidationTimeoutSec = 0.01
	cfg.SearchTimeoutSec = 0.01
	return NewSession(fc, nil, cfg)
}

func testFrame(id string) cdp.CallFrame {
	return cdp.CallFrame{
		CallFrameID:  id,
		FunctionName: "handleCheckout",
		Location:     cdp.Location{ScriptID: "s1", LineNumber: 9, ColumnNumber: 4},
	}
}

// TestSetBreakpoint_ExactPlacement verifies path-suffix script resolution
// and that a placement at the requested line reports no location drift.
func TestSetBreakpoint_ExactPlacement(t *testing.T) {
	fc := newFakeClient()
	s := newTestSession(fc)

	info, err := s.SetBreakpoint(context.Background(), "main.js", 10, 0, "")
	if err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}

	if info.LocationDiffers {
		t.Error("expected no location drift for an exact placement")
	}
	if info.Resolved.Line != 10 {
		t.Errorf("resolved line = %d, want 10", info.Resolved.Line)
	}
	if info.Resolved.File != testScriptURL {
		t.Errorf("resolved file = %s, want the script URL", info.Resolved.File)
	}
	if info.Runtime.ScriptID != "s1" || info.Runtime.Line != 9 {
		t.Errorf("runtime location = %+v, want scriptId s1 at 0-based line 9", info.Runtime)
	}
	if info.Runtime.URL != testScriptURL {
		t.Errorf("runtime URL = %s, want %s", info.Runtime.URL, testScriptURL)
	}
	if len(fc.placed) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(fc.placed))
	}
	if fc.placed[0].url != testScriptURL {
		t.Errorf("placed against %s, want %s (suffix match)", fc.placed[0].url, testScriptURL)
	}
	if fc.placed[0].line != 9 {
		t.Errorf("placed at 0-based line %d, want 9", fc.placed[0].line)
	}
}

// TestSetBreakpoint_Snapped verifies the requested location is preserved
// alongside the resolved one and the drift flag is set when they differ.
func TestSetBreakpoint_Snapped(t *testing.T) {
	fc := newFakeClient()
	fc.place = func(url string, line, column int, condition string) []cdp.Location {
		return []cdp.Location{{ScriptID: "s1", LineNumber: 11}}
	}
	s := newTestSession(fc)

	info, err := s.SetBreakpoint(context.Background(), "main.js", 10, 0, "")
	if err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}

	if !info.LocationDiffers {
		t.Error("expected location drift when the runtime snapped the line")
	}
	if info.Requested.Line != 10 {
		t.Errorf("requested line = %d, want the caller's 10", info.Requested.Line)
	}
	if info.Resolved.Line != 12 {
		t.Errorf("resolved line = %d, want 12", info.Resolved.Line)
	}
}

// TestSetBreakpoint_UnboundIsRemoved verifies a zero-location placement
// is reported as a failure and the pending runtime breakpoint is dropped.
func TestSetBreakpoint_UnboundIsRemoved(t *testing.T) {
	fc := newFakeClient()
	fc.place = func(url string, line, column int, condition string) []cdp.Location { return nil }
	s := newTestSession(fc)

	_, err := s.SetBreakpoint(context.Background(), "main.js", 10, 0, "")
	if !errors.IsCode(err, errors.CodePlacementFailed) {
		t.Fatalf("expected PLACEMENT_FAILED, got %v", err)
	}
	if len(fc.removed) != 1 {
		t.Errorf("expected the unbound breakpoint to be removed, removed=%v", fc.removed)
	}
	if len(s.ListBreakpoints()) != 0 {
		t.Error("a failed placement must not be recorded")
	}
}

// TestSetBreakpoint_PlacementDiagnosis verifies the failure hint names
// the likely cause for the common zero-location scenarios.
func TestSetBreakpoint_PlacementDiagnosis(t *testing.T) {
	// Line beyond the loaded script's range.
	fc := newFakeClient()
	fc.place = func(url string, line, column int, condition string) []cdp.Location { return nil }
	s := newTestSession(fc)

	_, err := s.SetBreakpoint(context.Background(), "main.js", 500, 0, "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if hint := errors.FromError(err).Hint; !strings.Contains(hint, "beyond") {
		t.Errorf("hint = %q, want a line-out-of-range diagnosis", hint)
	}

	// Browser-looking source against a script runtime.
	fc2 := newFakeClient()
	fc2.kind = types.RuntimeKindScript
	fc2.place = func(url string, line, column int, condition string) []cdp.Location { return nil }
	s2 := newTestSession(fc2)

	_, err = s2.SetBreakpoint(context.Background(), "src/App.tsx", 10, 0, "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if hint := errors.FromError(err).Hint; !strings.Contains(hint, "script runtime") {
		t.Errorf("hint = %q, want a wrong-runtime-kind diagnosis", hint)
	}

	// Unknown file on a browser session.
	fc3 := newFakeClient()
	fc3.place = func(url string, line, column int, condition string) []cdp.Location { return nil }
	s3 := newTestSession(fc3)

	_, err = s3.SetBreakpoint(context.Background(), "missing.js", 10, 0, "")
	if err == nil {
		t.Fatal("expected an error")
	}
	if hint := errors.FromError(err).Hint; !strings.Contains(hint, "no loaded script") {
		t.Errorf("hint = %q, want a not-loaded diagnosis", hint)
	}
}

// TestSetLogpoint_Defaults verifies the ceiling default, the injected
// condition, and limit-tracker registration.
func TestSetLogpoint_Defaults(t *testing.T) {
	fc := newFakeClient()
	s := newTestSession(fc)

	info, err := s.SetLogpoint(context.Background(), "main.js", 10, 0, "n={n}", 0)
	if err != nil {
		t.Fatalf("SetLogpoint failed: %v", err)
	}

	if info.Logpoint == nil {
		t.Fatal("expected logpoint metadata")
	}
	if info.Logpoint.Ceiling != 10 {
		t.Errorf("ceiling = %d, want the default 10", info.Logpoint.Ceiling)
	}
	if len(info.Logpoint.Expressions) != 1 || info.Logpoint.Expressions[0] != "n" {
		t.Errorf("expressions = %v, want [n]", info.Logpoint.Expressions)
	}
	if !s.Tracker().IsLogpoint(info.ID) {
		t.Error("logpoint must be registered with the limit tracker")
	}

	cond := fc.placed[0].condition
	if !strings.Contains(cond, "return __n > 10") {
		t.Errorf("condition missing ceiling check: %s", cond)
	}
	if !strings.Contains(cond, CounterKey(testScriptURL, 9)) {
		t.Errorf("condition missing counter key: %s", cond)
	}
}

// TestSetLogpoint_RejectsNonPositiveCeiling verifies unlimited logpoints
// cannot be requested.
func TestSetLogpoint_RejectsNonPositiveCeiling(t *testing.T) {
	fc := newFakeClient()
	s := newTestSession(fc)

	_, err := s.SetLogpoint(context.Background(), "main.js", 10, 0, "hit", -1)
	if !errors.IsCode(err, errors.CodeInvalidParameter) {
		t.Fatalf("expected INVALID_PARAMETER, got %v", err)
	}
}

// TestSetLogpoint_RekeysOnSnap verifies that when the runtime snaps a
// logpoint to a different line, it is re-placed with a condition keyed by
// the line where the code will actually execute.
func TestSetLogpoint_RekeysOnSnap(t *testing.T) {
	fc := newFakeClient()
	fc.place = func(url string, line, column int, condition string) []cdp.Location {
		return []cdp.Location{{ScriptID: "s1", LineNumber: 11}}
	}
	s := newTestSession(fc)

	info, err := s.SetLogpoint(context.Background(), "main.js", 10, 0, "hit", 5)
	if err != nil {
		t.Fatalf("SetLogpoint failed: %v", err)
	}

	if len(fc.placed) != 2 {
		t.Fatalf("expected place+replace, got %d placements", len(fc.placed))
	}
	if fc.removed[0] != fc.placed[0].id {
		t.Errorf("the mis-keyed first placement must be removed, removed=%v", fc.removed)
	}
	wantKey := CounterKey(testScriptURL, 11)
	if !strings.Contains(fc.placed[1].condition, wantKey) {
		t.Errorf("re-placed condition not keyed by the resolved line: %s", fc.placed[1].condition)
	}
	if !info.LocationDiffers {
		t.Error("expected location drift to be reported")
	}
	if info.Resolved.Line != 12 {
		t.Errorf("resolved line = %d, want 12", info.Resolved.Line)
	}
}

// TestSetLogpoint_ValidationFailure verifies a snapped logpoint whose
// expressions do not resolve is torn down entirely and the error carries
// nearby-location suggestions.
func TestSetLogpoint_ValidationFailure(t *testing.T) {
	fc := newFakeClient()
	fc.place = func(url string, line, column int, condition string) []cdp.Location {
		return []cdp.Location{{ScriptID: "s1", LineNumber: 11}}
	}
	fc.pauseEvent = &cdp.PausedEvent{CallFrames: []cdp.CallFrame{testFrame("frame-0")}}
	// First evaluation: the validation probe fails. Subsequent ones (the
	// location search) succeed.
	fc.evalErrs = []error{stderrors.New("user is not defined")}
	s := newTestSession(fc)

	_, err := s.SetLogpoint(context.Background(), "main.js", 10, 0, "name={user.name}", 5)
	if !errors.IsCode(err, errors.CodeValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}

	if len(s.ListBreakpoints()) != 0 {
		t.Error("an invalid logpoint must not stay placed")
	}
	if s.Tracker().IsLogpoint("bp-2") {
		t.Error("an invalid logpoint must be unregistered from the tracker")
	}

	de := errors.FromError(err)
	suggestions, ok := de.Details["suggestions"].([]types.LocationCandidate)
	if !ok || len(suggestions) == 0 {
		t.Fatalf("expected location suggestions, got %v", de.Details["suggestions"])
	}
	if suggestions[0].Score != 1.0 {
		t.Errorf("best suggestion score = %v, want 1.0", suggestions[0].Score)
	}
	if suggestions[0].Location.Line != 12 {
		t.Errorf("best suggestion line = %d, want 12", suggestions[0].Location.Line)
	}
}

// TestSetLogpoint_ValidationTimeoutIsUnknown verifies a validation wait
// that expires leaves the logpoint placed: an unhit code path means the
// result is unknown, not a failure.
func TestSetLogpoint_ValidationTimeoutIsUnknown(t *testing.T) {
	fc := newFakeClient()
	fc.waitErr = stderrors.New("timeout waiting for paused event")
	s := newTestSession(fc)

	info, err := s.SetLogpoint(context.Background(), "main.js", 10, 0, "{x}", 5)
	if err != nil {
		t.Fatalf("SetLogpoint failed: %v", err)
	}
	if len(s.ListBreakpoints()) != 1 {
		t.Error("the logpoint must stay placed when validation is inconclusive")
	}
	if !s.Tracker().IsLogpoint(info.ID) {
		t.Error("the logpoint must stay registered with the limit tracker")
	}
	// Only the temporary validation breakpoint is cleaned up.
	if len(fc.removed) != 1 || fc.removed[0] == info.ID {
		t.Errorf("removed = %v, want just the validation probe's id", fc.removed)
	}
}

// TestSetLogpoint_SearchSkipsUnhitCandidates verifies the per-candidate
// wait in the location search: candidates whose line never executes
// produce no suggestions, and every temporary breakpoint is cleaned up.
func TestSetLogpoint_SearchSkipsUnhitCandidates(t *testing.T) {
	fc := newFakeClient()
	// The validation probe is hit and its expression fails; none of the
	// search candidates' lines execute within their bounded wait.
	fc.waitEvents = []*cdp.PausedEvent{
		{CallFrames: []cdp.CallFrame{testFrame("frame-0")}},
		nil, nil, nil, nil,
	}
	fc.evalErrs = []error{stderrors.New("x is not defined")}
	s := newTestSession(fc)

	_, err := s.SetLogpoint(context.Background(), "main.js", 10, 0, "{x}", 5)
	if !errors.IsCode(err, errors.CodeValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}

	de := errors.FromError(err)
	if suggestions, _ := de.Details["suggestions"].([]types.LocationCandidate); len(suggestions) != 0 {
		t.Errorf("expected no suggestions from unhit candidates, got %v", suggestions)
	}
	if len(fc.removed) != len(fc.placed) {
		t.Errorf("placed %d breakpoints but removed %d; temporaries leaked", len(fc.placed), len(fc.removed))
	}
}

// TestSetLogpoint_ValidationAtExactPlacement verifies validation also
// runs when the runtime placed the logpoint exactly where requested: a
// variable that only exists a few lines later still fails, and the
// search points at the line where every expression resolves.
func TestSetLogpoint_ValidationAtExactPlacement(t *testing.T) {
	fc := newFakeClient()
	fc.pauseEvent = &cdp.PausedEvent{CallFrames: []cdp.CallFrame{testFrame("frame-0")}}
	// The validation probe at line 10 fails, as do the search candidates
	// below line 12; the candidate at line 12 resolves.
	notDefined := stderrors.New("x is not defined")
	fc.evalErrs = []error{notDefined, notDefined, notDefined, notDefined, nil}
	s := newTestSession(fc)

	_, err := s.SetLogpoint(context.Background(), "main.js", 10, 0, "{x}", 5)
	if !errors.IsCode(err, errors.CodeValidationFailed) {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}

	de := errors.FromError(err)
	failures, ok := de.Details["failingExpressions"].(map[string]string)
	if !ok || failures["x"] == "" {
		t.Fatalf("expected x in the failing expressions, got %v", de.Details["failingExpressions"])
	}

	suggestions, ok := de.Details["suggestions"].([]types.LocationCandidate)
	if !ok || len(suggestions) == 0 {
		t.Fatal("expected location suggestions")
	}
	if suggestions[0].Score != 1.0 || suggestions[0].Location.Line != 12 {
		t.Errorf("best suggestion = %+v, want line 12 at score 1.0", suggestions[0])
	}
}

// TestResume_RefusedOnLimitBreach verifies the limit-breach flow: blocked
// resume, two-sided counter reset, then an accepted resume.
func TestResume_RefusedOnLimitBreach(t *testing.T) {
	fc := newFakeClient()
	s := newTestSession(fc)
	ctx := context.Background()

	info, err := s.SetLogpoint(ctx, "main.js", 10, 0, "n={n}", 3)
	if err != nil {
		t.Fatalf("SetLogpoint failed: %v", err)
	}

	key := CounterKey(testScriptURL, 9)
	for i := 1; i <= 4; i++ {
		fc.onConsole(fmt.Sprintf("[logpoint:%s] n=%d", key, i))
	}
	fc.onPaused(&cdp.PausedEvent{
		Reason:         "breakpoint",
		CallFrames:     []cdp.CallFrame{testFrame("frame-0")},
		HitBreakpoints: []string{info.ID},
	})

	paused := s.PausedState()
	if paused == nil || paused.Reason != types.PauseReasonLimitExceeded {
		t.Fatalf("expected a limit-exceeded pause, got %+v", paused)
	}
	if paused.LimitBreach.ExecutionCount != 4 {
		t.Errorf("execution count = %d, want 4", paused.LimitBreach.ExecutionCount)
	}

	if err := s.Resume(ctx); !errors.IsCode(err, errors.CodeLimitExceeded) {
		t.Fatalf("expected resume to be refused with LIMIT_EXCEEDED, got %v", err)
	}

	if err := s.ResetCounter(ctx, info.ID); err != nil {
		t.Fatalf("ResetCounter failed: %v", err)
	}
	if len(fc.evaluated) != 1 || !strings.Contains(fc.evaluated[0], key) {
		t.Errorf("expected a debuggee-side reset evaluation, got %v", fc.evaluated)
	}
	if got := s.Tracker().Count(info.ID); got != 0 {
		t.Errorf("mirror count after reset = %d, want 0", got)
	}

	if err := s.Resume(ctx); err != nil {
		t.Fatalf("resume after reset failed: %v", err)
	}
	if fc.resumeCount != 1 {
		t.Errorf("resume calls = %d, want 1", fc.resumeCount)
	}
}

// TestRemoveBreakpoint verifies local cleanup survives a runtime-side
// failure (reported as a warning) and double removal is an error, not
// corruption.
func TestRemoveBreakpoint(t *testing.T) {
	fc := newFakeClient()
	s := newTestSession(fc)
	ctx := context.Background()

	info, err := s.SetBreakpoint(ctx, "main.js", 10, 0, "")
	if err != nil {
		t.Fatalf("SetBreakpoint failed: %v", err)
	}

	fc.removeErr = stderrors.New("target navigated away")
	warning, err := s.RemoveBreakpoint(ctx, info.ID)
	if err != nil {
		t.Fatalf("RemoveBreakpoint failed: %v", err)
	}
	if warning == "" {
		t.Error("expected a warning when the runtime-side removal fails")
	}
	if len(s.ListBreakpoints()) != 0 {
		t.Error("local state must be cleaned up despite the runtime failure")
	}

	if _, err := s.RemoveBreakpoint(ctx, info.ID); !errors.IsCode(err, errors.CodeBreakpointNotFound) {
		t.Errorf("expected BREAKPOINT_NOT_FOUND on double removal, got %v", err)
	}
}

// TestPausedStateLifecycle verifies frame-scoped operations are refused
// while running and work while paused.
func TestPausedStateLifecycle(t *testing.T) {
	fc := newFakeClient()
	fc.props = map[string][]cdp.PropertyDescriptor{
		"obj-local": {
			{Name: "cartTotal", Value: &cdp.RemoteObject{Type: "number", Description: "42"}},
			{Name: "userName", Value: &cdp.RemoteObject{Type: "string", Description: "ada"}},
		},
	}
	s := newTestSession(fc)
	ctx := context.Background()

	if _, err := s.EvaluateExpression(ctx, "1+1", ""); !errors.IsCode(err, errors.CodeNotPaused) {
		t.Fatalf("expected NOT_PAUSED while running, got %v", err)
	}
	if _, err := s.GetCallStack(ctx); !errors.IsCode(err, errors.CodeNotPaused) {
		t.Fatalf("expected NOT_PAUSED while running, got %v", err)
	}

	frame := testFrame("frame-0")
	frame.ScopeChain = []cdp.Scope{
		{Type: "local", Object: cdp.RemoteObject{ObjectID: "obj-local"}},
		{Type: "global", Object: cdp.RemoteObject{ObjectID: "obj-global"}},
	}
	fc.onPaused(&cdp.PausedEvent{Reason: "breakpoint", CallFrames: []cdp.CallFrame{frame}})

	stack, err := s.GetCallStack(ctx)
	if err != nil {
		t.Fatalf("GetCallStack failed: %v", err)
	}
	if len(stack.Frames) != 1 {
		t.Fatalf("frames = %d, want 1", len(stack.Frames))
	}
	if stack.Frames[0].Location.Line != 10 {
		t.Errorf("frame line = %d, want 1-based 10", stack.Frames[0].Location.Line)
	}
	if stack.Frames[0].Location.File != testScriptURL {
		t.Errorf("frame file = %s, want the script URL", stack.Frames[0].Location.File)
	}

	// The global scope is skipped by default; the name filter matches
	// case-insensitively.
	vars, err := s.GetVariables(ctx, "", false, "cart", false, 1)
	if err != nil {
		t.Fatalf("GetVariables failed: %v", err)
	}
	if len(vars) != 1 || vars[0].Name != "cartTotal" {
		t.Errorf("vars = %+v, want just cartTotal", vars)
	}

	result, err := s.EvaluateExpression(ctx, "cartTotal", "frame-0")
	if err != nil {
		t.Fatalf("EvaluateExpression failed: %v", err)
	}
	if result.Value != "42" {
		t.Errorf("value = %s, want 42", result.Value)
	}

	fc.onResumed()
	if s.State() != types.SessionStateRunning {
		t.Errorf("state = %s, want running after resume", s.State())
	}
	if s.PausedState() != nil {
		t.Error("paused snapshot must be cleared on resume")
	}
}

// TestReadSource verifies line-range extraction from a loaded script.
func TestReadSource(t *testing.T) {
	fc := newFakeClient()
	fc.source = "line one\nline two\nline three\nline four"
	s := newTestSession(fc)
	ctx := context.Background()

	src, err := s.ReadSource(ctx, "main.js", "", 2, 3)
	if err != nil {
		t.Fatalf("ReadSource failed: %v", err)
	}
	if src != "line two\nline three" {
		t.Errorf("range read = %q", src)
	}

	full, err := s.ReadSource(ctx, "", "s1", 0, 0)
	if err != nil {
		t.Fatalf("ReadSource by scriptId failed: %v", err)
	}
	if full != fc.source {
		t.Errorf("full read = %q", full)
	}

	if _, err := s.ReadSource(ctx, "missing.js", "", 0, 0); err == nil {
		t.Error("expected an error for an unloaded file")
	}
}

// TestDisconnect verifies operations are refused after disconnect and a
// second disconnect is a no-op.
func TestDisconnect(t *testing.T) {
	fc := newFakeClient()
	s := newTestSession(fc)

	if err := s.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if _, err := s.SetBreakpoint(context.Background(), "main.js", 10, 0, ""); !errors.IsCode(err, errors.CodeNotConnected) {
		t.Errorf("expected NOT_CONNECTED, got %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Errorf("second disconnect should be a no-op, got %v", err)
	}
}
