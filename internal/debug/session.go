package debug

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inspectd/cdp-mcp/internal/cdp"
	"github.com/inspectd/cdp-mcp/internal/config"
	"github.com/inspectd/cdp-mcp/internal/errors"
	"github.com/inspectd/cdp-mcp/internal/sourcemap"
	"github.com/inspectd/cdp-mcp/pkg/types"
)

// Session owns the debugging state for one connected inspection target.
type Session struct {
	client     RuntimeClient
	translator sourcemap.Translator
	cfg        *config.Config
	tracker    *Tracker

	mu          sync.RWMutex
	state       types.SessionState
	breakpoints map[string]*types.BreakpointInfo
	paused      *types.PausedState
	rawFrames   []cdp.CallFrame
}

// NewSession wraps a connected runtime client. The session installs its
// event handlers immediately so breakpoint hits and console output are
// never missed between connect and the first operation.
func NewSession(client RuntimeClient, translator sourcemap.Translator, cfg *config.Config) *Session {
	if translator == nil {
		translator = sourcemap.IdentityTranslator{}
	}
	s := &Session{
		client:      client,
		translator:  translator,
		cfg:         cfg,
		tracker:     NewTracker(cfg.LogRingSize),
		state:       types.SessionStateRunning,
		breakpoints: make(map[string]*types.BreakpointInfo),
	}

	client.OnPaused(s.onPaused)
	client.OnResumed(s.onResumed)
	client.OnConsoleMessage(s.onConsole)
	client.OnClose(s.onClose)

	return s
}

// Kind reports the runtime kind of the attached target.
func (s *Session) Kind() types.RuntimeKind { return s.client.Kind() }

// State returns the current protocol state.
func (s *Session) State() types.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// PausedState returns the current pause snapshot, or nil while running.
func (s *Session) PausedState() *types.PausedState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// Tracker exposes the execution-limit tracker (used by tests and by the
// tool layer for counter introspection).
func (s *Session) Tracker() *Tracker { return s.tracker }

// Disconnect tears the session down. Safe to call more than once.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if s.state == types.SessionStateDisconnected {
		s.mu.Unlock()
		return nil
	}
	s.state = types.SessionStateDisconnected
	s.paused = nil
	s.rawFrames = nil
	s.mu.Unlock()

	return s.client.Close()
}

// --- event handlers ---

func (s *Session) onPaused(ev *cdp.PausedEvent) {
	frames := make([]types.CallFrameInfo, len(ev.CallFrames))
	for i, f := range ev.CallFrames {
		frames[i] = types.CallFrameInfo{
			FrameID:      f.CallFrameID,
			FunctionName: f.FunctionName,
			Location:     s.toOriginal(f.Location),
		}
	}

	paused := &types.PausedState{
		Reason: pauseReasonFromCDP(ev.Reason),
		Frames: frames,
	}

	// An execution-limit breach arrives as an ordinary breakpoint hit;
	// what distinguishes it is that the hit id belongs to a logpoint,
	// whose condition only evaluates truthy past the ceiling.
	for _, id := range ev.HitBreakpoints {
		paused.HitBreakID = id
		if breach := s.tracker.Breach(id); breach != nil {
			paused.Reason = types.PauseReasonLimitExceeded
			paused.LimitBreach = breach
		}
		break
	}

	s.mu.Lock()
	s.state = types.SessionStatePaused
	s.paused = paused
	s.rawFrames = ev.CallFrames
	s.mu.Unlock()
}

func (s *Session) onResumed() {
	s.mu.Lock()
	if s.state == types.SessionStatePaused {
		s.state = types.SessionStateRunning
	}
	s.paused = nil
	s.rawFrames = nil
	s.mu.Unlock()
}

func (s *Session) onConsole(text string) {
	s.tracker.Observe(text)
}

func (s *Session) onClose(err error) {
	if err != nil {
		log.Printf("Warning: target connection lost: %v", err)
	}
	s.mu.Lock()
	s.state = types.SessionStateDisconnected
	s.paused = nil
	s.rawFrames = nil
	s.mu.Unlock()
}

func pauseReasonFromCDP(reason string) types.PauseReason {
	switch reason {
	case "breakpoint", "debugCommand":
		return types.PauseReasonBreakpoint
	case "step":
		return types.PauseReasonStep
	case "pause", "other":
		return types.PauseReasonExplicit
	default:
		return types.PauseReasonOther
	}
}

// --- state checks ---

func (s *Session) requireConnected() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == types.SessionStateDisconnected || !s.client.Connected() {
		return errors.NotConnected("")
	}
	return nil
}

func (s *Session) requirePaused(operation string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != types.SessionStatePaused || s.paused == nil {
		return errors.NotPaused(operation)
	}
	return nil
}

// --- breakpoints ---

// SetBreakpoint places a plain breakpoint. The caller's 1-based location
// is translated to runtime coordinates, placed, and the runtime's actual
// placement is reconciled back: LocationDiffers is set exactly when the
// runtime snapped to a different position than requested.
func (s *Session) SetBreakpoint(ctx context.Context, file string, line, column int, condition string) (*types.BreakpointInfo, error) {
	if err := s.requireConnected(); err != nil {
		return nil, err
	}

	requested := types.SourceLocation{File: file, Line: line, Column: column}
	runtimeReq := s.toRuntimeLocation(requested)
	url, script := s.resolveScript(runtimeReq.File)

	id, locs, err := s.client.SetBreakpointByURL(ctx, url, runtimeReq.Line-1, zeroBased(runtimeReq.Column), condition)
	if err != nil {
		return nil, errors.ProtocolError("Debugger.setBreakpointByUrl", err)
	}

	if len(locs) == 0 {
		// The runtime registered a pending breakpoint that will never
		// bind as requested; drop it before reporting the failure.
		if rmErr := s.client.RemoveBreakpoint(ctx, id); rmErr != nil {
			log.Printf("Warning: failed to remove unbound breakpoint %s: %v", id, rmErr)
		}
		return nil, errors.PlacementFailed(requested, s.diagnosePlacement(runtimeReq, script))
	}
	if len(locs) > 1 {
		log.Printf("Warning: breakpoint %s bound to %d locations, using the first", id, len(locs))
	}

	info := s.recordBreakpoint(id, requested, locs[0], condition, nil)
	return info, nil
}

// SetLogpoint places a logpoint: a breakpoint whose injected condition
// logs the formatted template and never pauses until the execution
// ceiling is crossed. When the template has expressions, each one is
// validated at the location the runtime actually placed; on failure the
// whole logpoint is torn down and nearby lines are searched for
// suggestions.
func (s *Session) SetLogpoint(ctx context.Context, file string, line, column int, template string, ceiling int) (*types.BreakpointInfo, error) {
	if err := s.requireConnected(); err != nil {
		return nil, err
	}

	if ceiling == 0 {
		ceiling = s.cfg.DefaultCeiling
	}
	if ceiling < 1 {
		return nil, errors.InvalidParameter("executionCeiling", ceiling, "a positive integer; unlimited logpoints are not supported")
	}

	exprs := ParseTemplate(template)
	requested := types.SourceLocation{File: file, Line: line, Column: column}
	runtimeReq := s.toRuntimeLocation(requested)
	url, script := s.resolveScript(runtimeReq.File)

	// The ceiling check happens inside the debuggee, so the counter key
	// and ceiling are baked into the condition at placement time.
	key := CounterKey(url, runtimeReq.Line-1)
	condition := BuildLogCondition(key, template, ceiling)

	id, locs, err := s.client.SetBreakpointByURL(ctx, url, runtimeReq.Line-1, zeroBased(runtimeReq.Column), condition)
	if err != nil {
		return nil, errors.ProtocolError("Debugger.setBreakpointByUrl", err)
	}
	if len(locs) == 0 {
		if rmErr := s.client.RemoveBreakpoint(ctx, id); rmErr != nil {
			log.Printf("Warning: failed to remove unbound logpoint %s: %v", id, rmErr)
		}
		return nil, errors.PlacementFailed(requested, s.diagnosePlacement(runtimeReq, script))
	}

	resolved := locs[0]

	// Counters are keyed by the resolved line. If the runtime snapped to
	// a different line, re-place with a condition keyed (and counted)
	// where the code will actually execute.
	if resolved.LineNumber != runtimeReq.Line-1 {
		if rmErr := s.client.RemoveBreakpoint(ctx, id); rmErr != nil {
			log.Printf("Warning: failed to remove mis-keyed logpoint %s: %v", id, rmErr)
		}
		key = CounterKey(url, resolved.LineNumber)
		condition = BuildLogCondition(key, template, ceiling)
		id, locs, err = s.client.SetBreakpointByURL(ctx, url, resolved.LineNumber, resolved.ColumnNumber, condition)
		if err != nil {
			return nil, errors.ProtocolError("Debugger.setBreakpointByUrl", err)
		}
		if len(locs) == 0 {
			if rmErr := s.client.RemoveBreakpoint(ctx, id); rmErr != nil {
				log.Printf("Warning: failed to remove unbound logpoint %s: %v", id, rmErr)
			}
			return nil, errors.PlacementFailed(requested, s.diagnosePlacement(runtimeReq, script))
		}
		resolved = locs[0]
	}

	lp := &types.LogpointInfo{Template: template, Expressions: exprs, Ceiling: ceiling}
	info := s.recordBreakpoint(id, requested, resolved, "", lp)
	s.tracker.Register(id, key, info.Resolved, template, ceiling)

	// The placement may have landed where the template's expressions are
	// out of scope (a snapped line, or simply a line before the variable
	// exists); confirm before reporting it as set. A broken logpoint is
	// never left registered.
	if len(exprs) > 0 {
		failures := s.validateExpressions(ctx, url, resolved, exprs)
		if len(failures) > 0 {
			if _, rmErr := s.RemoveBreakpoint(ctx, id); rmErr != nil {
				log.Printf("Warning: cleanup of invalid logpoint %s failed: %v", id, rmErr)
			}
			suggestions := s.searchLocations(ctx, url, runtimeReq.Line-1, exprs)
			return nil, errors.ValidationFailed(info.Resolved, failures, suggestions)
		}
	}

	return info, nil
}

// RemoveBreakpoint removes a breakpoint from the session and, if it is a
// logpoint, from execution-limit tracking. Local state is cleaned up even
// when the runtime-side removal fails; the failure comes back as a
// warning so the caller still hears about it.
func (s *Session) RemoveBreakpoint(ctx context.Context, id string) (warning string, err error) {
	s.mu.Lock()
	_, ok := s.breakpoints[id]
	if !ok {
		s.mu.Unlock()
		return "", errors.BreakpointNotFound(id)
	}
	delete(s.breakpoints, id)
	s.mu.Unlock()

	s.tracker.Unregister(id)

	if rmErr := s.client.RemoveBreakpoint(ctx, id); rmErr != nil {
		return fmt.Sprintf("breakpoint removed locally, but the runtime-side removal failed: %v", rmErr), nil
	}
	return "", nil
}

// ListBreakpoints returns every placed breakpoint, newest last.
func (s *Session) ListBreakpoints() []*types.BreakpointInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.BreakpointInfo, 0, len(s.breakpoints))
	for _, bp := range s.breakpoints {
		out = append(out, bp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Breakpoint looks up one breakpoint by id.
func (s *Session) Breakpoint(id string) (*types.BreakpointInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bp, ok := s.breakpoints[id]
	return bp, ok
}

func (s *Session) recordBreakpoint(id string, requested types.SourceLocation, loc cdp.Location, condition string, lp *types.LogpointInfo) *types.BreakpointInfo {
	resolved := s.toOriginal(loc)
	runtime := types.RuntimeLocation{
		ScriptID: loc.ScriptID,
		Line:     loc.LineNumber,
		Column:   loc.ColumnNumber,
	}
	if script, ok := s.client.ScriptByID(loc.ScriptID); ok {
		runtime.URL = script.URL
	}
	info := &types.BreakpointInfo{
		ID:              id,
		Requested:       requested,
		Resolved:        resolved,
		Runtime:         runtime,
		LocationDiffers: locationsDiffer(requested, resolved),
		Condition:       condition,
		Logpoint:        lp,
		CreatedAt:       time.Now(),
	}

	s.mu.Lock()
	s.breakpoints[id] = info
	s.mu.Unlock()
	return info
}

// --- execution control ---

// Pause requests a pause at the next statement.
func (s *Session) Pause(ctx context.Context) error {
	if err := s.requireConnected(); err != nil {
		return err
	}
	if s.State() == types.SessionStatePaused {
		return errors.Wrap(errors.CodeInvalidParameter, "session is already paused", "Use resume or a step command instead.", nil)
	}
	if err := s.client.Pause(ctx); err != nil {
		return errors.ProtocolError("Debugger.pause", err)
	}
	return nil
}

// Resume resumes execution. If the pause was caused by an execution-limit
// breach it refuses: resuming blind would silently re-arm an already
// exhausted logpoint, so the caller must first reset the counter or
// remove the logpoint.
func (s *Session) Resume(ctx context.Context) error {
	if err := s.requirePaused("resume"); err != nil {
		return err
	}

	s.mu.RLock()
	breach := s.paused.LimitBreach
	s.mu.RUnlock()
	if breach != nil {
		return errors.LimitExceeded(breach)
	}

	if err := s.client.Resume(ctx); err != nil {
		return errors.ProtocolError("Debugger.resume", err)
	}
	return nil
}

// StepOver steps to the next statement in the current frame.
func (s *Session) StepOver(ctx context.Context) error { return s.step(ctx, "over", s.client.StepOver) }

// StepInto steps into the call on the current statement.
func (s *Session) StepInto(ctx context.Context) error { return s.step(ctx, "into", s.client.StepInto) }

// StepOut steps out of the current frame.
func (s *Session) StepOut(ctx context.Context) error { return s.step(ctx, "out", s.client.StepOut) }

func (s *Session) step(ctx context.Context, kind string, fn func(context.Context) error) error {
	if err := s.requirePaused("step " + kind); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		return errors.StepFailed(kind, err)
	}
	return nil
}

// --- inspection ---

// GetCallStack returns the paused call-frame stack with locations mapped
// back to original-source coordinates.
func (s *Session) GetCallStack(ctx context.Context) (*types.PausedState, error) {
	if err := s.requirePaused("get_call_stack"); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := *s.paused
	snapshot.Frames = append([]types.CallFrameInfo(nil), s.paused.Frames...)
	return &snapshot, nil
}

// GetVariables lists the variables visible in a call frame's scope chain.
// frameID empty selects the top frame. The global scope is skipped unless
// includeGlobal is set; nameFilter is a case-insensitive substring match;
// expand walks object children down to maxDepth levels.
func (s *Session) GetVariables(ctx context.Context, frameID string, includeGlobal bool, nameFilter string, expand bool, maxDepth int) ([]types.VariableInfo, error) {
	if err := s.requirePaused("get_variables"); err != nil {
		return nil, err
	}

	frame, err := s.frameByID(frameID)
	if err != nil {
		return nil, err
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	filter := strings.ToLower(nameFilter)

	var out []types.VariableInfo
	for _, scope := range frame.ScopeChain {
		if scope.Type == "global" && !includeGlobal {
			continue
		}
		if scope.Object.ObjectID == "" {
			continue
		}
		props, err := s.client.GetProperties(ctx, scope.Object.ObjectID)
		if err != nil {
			return nil, errors.ProtocolError("Runtime.getProperties", err)
		}
		for _, p := range props {
			if filter != "" && !strings.Contains(strings.ToLower(p.Name), filter) {
				continue
			}
			v := types.VariableInfo{
				Name:  p.Name,
				Value: p.Value.String(),
				Scope: scope.Type,
			}
			if p.Value != nil {
				v.Type = p.Value.Type
				if expand && p.Value.ObjectID != "" && maxDepth > 1 {
					v.Children = s.expandObject(ctx, p.Value.ObjectID, maxDepth-1)
				}
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Session) expandObject(ctx context.Context, objectID string, depth int) []types.VariableInfo {
	if depth < 1 {
		return nil
	}
	props, err := s.client.GetProperties(ctx, objectID)
	if err != nil {
		return nil
	}
	out := make([]types.VariableInfo, 0, len(props))
	for _, p := range props {
		v := types.VariableInfo{Name: p.Name, Value: p.Value.String()}
		if p.Value != nil {
			v.Type = p.Value.Type
			if p.Value.ObjectID != "" && depth > 1 {
				v.Children = s.expandObject(ctx, p.Value.ObjectID, depth-1)
			}
		}
		out = append(out, v)
	}
	return out
}

// EvaluateExpression evaluates an expression in the scope of a paused call
// frame (top frame when frameID is empty).
func (s *Session) EvaluateExpression(ctx context.Context, expression, frameID string) (*types.EvaluateResult, error) {
	if err := s.requirePaused("evaluate"); err != nil {
		return nil, err
	}

	frame, err := s.frameByID(frameID)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.EvaluateOnCallFrame(ctx, frame.CallFrameID, expression)
	if err != nil {
		return nil, errors.EvaluationFailed(expression, err)
	}
	return &types.EvaluateResult{Value: obj.String(), Type: obj.Type}, nil
}

// ResetCounter zeroes both sides of a logpoint's execution counter: the
// debuggee-side value via an injected expression, and the controller-side
// mirror. If the session is paused on this logpoint's breach, the breach
// metadata is cleared so a subsequent resume is accepted.
func (s *Session) ResetCounter(ctx context.Context, breakpointID string) error {
	if err := s.requireConnected(); err != nil {
		return err
	}

	key, ok := s.tracker.Reset(breakpointID)
	if !ok {
		return errors.BreakpointNotFound(breakpointID)
	}

	if _, err := s.client.Evaluate(ctx, BuildResetExpression(key)); err != nil {
		return errors.ProtocolError("Runtime.evaluate", err)
	}

	s.mu.Lock()
	if s.paused != nil && s.paused.LimitBreach != nil && s.paused.LimitBreach.BreakpointID == breakpointID {
		s.paused.LimitBreach = nil
		s.paused.Reason = types.PauseReasonBreakpoint
	}
	s.mu.Unlock()
	return nil
}

// ReadSource returns the text of a loaded script between startLine and
// endLine (1-based, inclusive; zero values mean the whole script). The
// script is selected by id, or by file path when scriptID is empty.
func (s *Session) ReadSource(ctx context.Context, file, scriptID string, startLine, endLine int) (string, error) {
	if err := s.requireConnected(); err != nil {
		return "", err
	}

	if scriptID == "" {
		_, script := s.resolveScript(file)
		if script == nil {
			return "", errors.PlacementFailed(types.SourceLocation{File: file, Line: startLine},
				"no loaded script matches this path; use list_sessions or trigger a load first")
		}
		scriptID = script.ScriptID
	}

	src, err := s.client.GetScriptSource(ctx, scriptID)
	if err != nil {
		return "", errors.ProtocolError("Debugger.getScriptSource", err)
	}

	if startLine <= 0 && endLine <= 0 {
		return src, nil
	}
	lines := strings.Split(src, "\n")
	if startLine <= 0 {
		startLine = 1
	}
	if endLine <= 0 || endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > len(lines) {
		return "", nil
	}
	return strings.Join(lines[startLine-1:endLine], "\n"), nil
}

// --- helpers ---

func (s *Session) frameByID(frameID string) (*cdp.CallFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.rawFrames) == 0 {
		return nil, errors.NotPaused("frame lookup")
	}
	if frameID == "" {
		return &s.rawFrames[0], nil
	}
	for i := range s.rawFrames {
		if s.rawFrames[i].CallFrameID == frameID {
			return &s.rawFrames[i], nil
		}
	}
	return nil, errors.InvalidParameter("frameId", frameID, "a callFrameId from get_call_stack")
}

// toRuntimeLocation maps a caller location through the translator,
// keeping 1-based coordinates.
func (s *Session) toRuntimeLocation(loc types.SourceLocation) types.SourceLocation {
	if mapped, ok := s.translator.ToRuntime(loc); ok {
		return mapped
	}
	return loc
}

// toOriginal maps a runtime location (0-based) back to caller-facing
// 1-based original-source coordinates.
func (s *Session) toOriginal(loc cdp.Location) types.SourceLocation {
	file := loc.ScriptID
	if script, ok := s.client.ScriptByID(loc.ScriptID); ok && script.URL != "" {
		file = script.URL
	}
	src := types.SourceLocation{File: file, Line: loc.LineNumber + 1, Column: loc.ColumnNumber + 1}
	if mapped, ok := s.translator.ToOriginal(src); ok {
		return mapped
	}
	return src
}

// resolveScript maps a caller-supplied file path to the URL of a loaded
// script. Full URLs pass through; bare paths match loaded script URLs by
// path suffix. The returned ScriptInfo is nil when nothing matches.
func (s *Session) resolveScript(file string) (string, *cdp.ScriptInfo) {
	scripts := s.client.Scripts()

	if strings.Contains(file, "://") {
		for i := range scripts {
			if scripts[i].URL == file {
				return file, &scripts[i]
			}
		}
		return file, nil
	}

	cleaned := strings.TrimPrefix(file, "./")
	var best *cdp.ScriptInfo
	for i := range scripts {
		u := scripts[i].URL
		if u == "" {
			continue
		}
		if u == cleaned || strings.HasSuffix(u, "/"+cleaned) {
			if best == nil || len(scripts[i].URL) < len(best.URL) {
				best = &scripts[i]
			}
		}
	}
	if best != nil {
		return best.URL, best
	}
	return file, nil
}

// diagnosePlacement explains a zero-location placement result: the most
// common causes are an unloaded script, a line beyond the loaded range,
// and a source file that belongs to the other runtime kind.
func (s *Session) diagnosePlacement(runtimeReq types.SourceLocation, script *cdp.ScriptInfo) string {
	if script == nil {
		if s.client.Kind() == types.RuntimeKindScript && looksLikeBrowserSource(runtimeReq.File) {
			return fmt.Sprintf("'%s' looks like browser-app source, but this session is attached to a script runtime; attach to the browser tab serving it instead", runtimeReq.File)
		}
		return fmt.Sprintf("no loaded script matches '%s'; the script may not have been loaded yet, or the path does not match any loaded URL", runtimeReq.File)
	}
	if script.EndLine > 0 && runtimeReq.Line-1 > script.EndLine {
		return fmt.Sprintf("line %d is beyond the loaded script's last line (%d)", runtimeReq.Line, script.EndLine+1)
	}
	return fmt.Sprintf("line %d is not a pausable statement (it may be blank, a comment, or inside a declaration)", runtimeReq.Line)
}

func looksLikeBrowserSource(file string) bool {
	for _, ext := range []string{".tsx", ".jsx", ".vue", ".svelte"} {
		if strings.HasSuffix(file, ext) {
			return true
		}
	}
	return strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://")
}

// locationsDiffer compares a requested and a resolved location. Columns
// only count when the caller asked for one; files only when both sides
// name one and the resolved side is not an opaque script id.
func locationsDiffer(requested, resolved types.SourceLocation) bool {
	if requested.Line != resolved.Line {
		return true
	}
	if requested.Column > 0 && resolved.Column > 0 && requested.Column != resolved.Column {
		return true
	}
	return false
}

// zeroBased converts an optional 1-based column to the runtime's 0-based
// form, where 0 means "unspecified".
func zeroBased(column int) int {
	if column > 0 {
		return column - 1
	}
	return 0
}

// validateExpressions confirms each expression resolves at a runtime
// location by placing a temporary breakpoint there, waiting briefly for
// the code path to be hit, and evaluating every expression in the top
// frame. A nil map means "unknown" (the location was never hit within the
// bounded wait); a non-nil map holds the failures, empty when all
// expressions succeeded.
func (s *Session) validateExpressions(ctx context.Context, url string, loc cdp.Location, exprs []string) map[string]string {
	tempID, locs, err := s.client.SetBreakpointByURL(ctx, url, loc.LineNumber, loc.ColumnNumber, "")
	if err != nil {
		return nil
	}
	defer func() {
		if rmErr := s.client.RemoveBreakpoint(ctx, tempID); rmErr != nil {
			log.Printf("Warning: failed to remove validation breakpoint %s: %v", tempID, rmErr)
		}
	}()
	if len(locs) == 0 {
		return nil
	}

	ev, err := s.client.WaitForPaused(s.cfg.ValidationTimeout())
	if err != nil || len(ev.CallFrames) == 0 {
		return nil
	}

	failures := make(map[string]string)
	for _, expr := range exprs {
		if _, evalErr := s.client.EvaluateOnCallFrame(ctx, ev.CallFrames[0].CallFrameID, expr); evalErr != nil {
			failures[expr] = evalErr.Error()
		}
	}

	if err := s.client.Resume(ctx); err != nil {
		log.Printf("Warning: failed to resume after expression validation: %v", err)
	}
	return failures
}
