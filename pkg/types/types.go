// Package types defines shared data types used across the CDP-MCP server.
//
// This package provides type definitions for:
//   - RuntimeKind: the kind of inspection target (browser tab or script runtime)
//   - SessionState: debug session states (disconnected, running, paused)
//   - SourceLocation / RuntimeLocation: the two coordinate systems in play
//   - BreakpointInfo / LogpointInfo: placed breakpoints with requested and
//     resolved locations
//   - PausedState, CallFrameInfo, VariableInfo: pause-time inspection data
//
// Callers always see 1-based SourceLocation coordinates; RuntimeLocation
// carries the runtime's 0-based coordinates plus the script id the runtime
// assigned to the loaded file.
package types

import "time"

// RuntimeKind identifies the kind of inspection target behind a session.
type RuntimeKind string

const (
	RuntimeKindBrowser RuntimeKind = "browser"
	RuntimeKindScript  RuntimeKind = "script-runtime"
	RuntimeKindUnknown RuntimeKind = "unknown"
)

// SessionState represents the protocol state of a debug session.
type SessionState string

const (
	SessionStateDisconnected SessionState = "disconnected"
	SessionStateRunning      SessionState = "running"
	SessionStatePaused       SessionState = "paused"
)

// PauseReason describes why a session entered the paused state.
type PauseReason string

const (
	PauseReasonBreakpoint    PauseReason = "breakpoint"
	PauseReasonStep          PauseReason = "step"
	PauseReasonExplicit      PauseReason = "pause"
	PauseReasonLimitExceeded PauseReason = "limit-exceeded"
	PauseReasonOther         PauseReason = "other"
)

// SourceLocation is a caller-facing location: 1-based line and column in a
// source file that may not match what the runtime actually loaded.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// RuntimeLocation is the runtime's view of a location: the script id the
// runtime assigned plus 0-based line and column.
type RuntimeLocation struct {
	ScriptID string `json:"scriptId"`
	URL      string `json:"url,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column,omitempty"`
}

// BreakpointInfo describes a placed breakpoint or logpoint. Requested holds
// the caller's coordinates verbatim; Resolved holds where the runtime
// actually placed it, translated back to 1-based caller coordinates;
// Runtime holds the same placement in the runtime's own coordinates
// (script id, 0-based line). LocationDiffers is set exactly when Requested
// and Resolved disagree.
type BreakpointInfo struct {
	ID              string          `json:"id"`
	Requested       SourceLocation  `json:"requestedLocation"`
	Resolved        SourceLocation  `json:"resolvedLocation"`
	Runtime         RuntimeLocation `json:"runtimeLocation"`
	LocationDiffers bool            `json:"locationDiffers"`
	Condition       string          `json:"condition,omitempty"`
	Logpoint        *LogpointInfo   `json:"logpoint,omitempty"`
	CreatedAt       time.Time       `json:"-"`
}

// IsLogpoint reports whether this breakpoint is a logpoint.
func (b *BreakpointInfo) IsLogpoint() bool { return b.Logpoint != nil }

// LogpointInfo carries the logpoint-specific fields of a breakpoint.
type LogpointInfo struct {
	Template    string   `json:"template"`
	Expressions []string `json:"expressions,omitempty"`
	Ceiling     int      `json:"executionCeiling"`
}

// CallFrameInfo is one stack entry available while paused. FrameID is the
// opaque call-frame id usable for scoped evaluation.
type CallFrameInfo struct {
	FrameID      string         `json:"frameId"`
	FunctionName string         `json:"functionName"`
	Location     SourceLocation `json:"location"`
}

// PausedState is the at-most-one-per-session snapshot taken when execution
// halts. LimitBreach is non-nil only when the pause was caused by a logpoint
// crossing its execution ceiling.
type PausedState struct {
	Reason      PauseReason     `json:"reason"`
	Frames      []CallFrameInfo `json:"callFrames"`
	HitBreakID  string          `json:"breakpointId,omitempty"`
	LimitBreach *LimitBreach    `json:"limitBreach,omitempty"`
}

// LimitBreach describes an execution-ceiling crossing: the offending
// logpoint, the observed count, and the bounded ring of recently captured
// log lines.
type LimitBreach struct {
	BreakpointID   string         `json:"breakpointId"`
	Location       SourceLocation `json:"location"`
	Template       string         `json:"template"`
	ExecutionCount int            `json:"executionCount"`
	Ceiling        int            `json:"executionCeiling"`
	CapturedLogs   []string       `json:"capturedLogs"`
}

// VariableInfo describes one variable in a scope, optionally expanded one
// or more levels deep.
type VariableInfo struct {
	Name     string         `json:"name"`
	Value    string         `json:"value"`
	Type     string         `json:"type,omitempty"`
	Scope    string         `json:"scope,omitempty"`
	Children []VariableInfo `json:"children,omitempty"`
}

// EvaluateResult is the outcome of evaluating an expression.
type EvaluateResult struct {
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// LocationCandidate is one scored suggestion from the location search:
// a nearby line where some fraction of the failed expressions resolve.
type LocationCandidate struct {
	Location SourceLocation    `json:"location"`
	Score    float64           `json:"score"`
	Failures map[string]string `json:"failures,omitempty"`
}

// SessionInfo is the caller-facing summary of a registered session.
type SessionInfo struct {
	SessionID    string       `json:"sessionId"`
	Reference    string       `json:"reference,omitempty"`
	Host         string       `json:"host"`
	Port         int          `json:"port"`
	Kind         RuntimeKind  `json:"kind"`
	State        SessionState `json:"state"`
	Active       bool         `json:"active"`
	PageIndex    int          `json:"pageIndex,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	LastActivity time.Time    `json:"lastActivity"`
}
