// Package errors provides structured error types for the CDP-MCP server.
// These errors include helpful hints and suggestions that guide the LLM
// to correct course when something goes wrong.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/inspectd/cdp-mcp/pkg/types"
)

// ErrorCode represents a category of error for programmatic handling
type ErrorCode string

const (
	// Session errors
	CodeNotConnected      ErrorCode = "NOT_CONNECTED"
	CodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	CodeNoActiveSession   ErrorCode = "NO_ACTIVE_SESSION"
	CodeReferenceConflict ErrorCode = "REFERENCE_CONFLICT"
	CodeConnectFailed     ErrorCode = "CONNECT_FAILED"

	// State errors
	CodeNotPaused     ErrorCode = "NOT_PAUSED"
	CodeLimitExceeded ErrorCode = "LIMIT_EXCEEDED"

	// Breakpoint errors
	CodePlacementFailed    ErrorCode = "PLACEMENT_FAILED"
	CodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	CodeBreakpointNotFound ErrorCode = "BREAKPOINT_NOT_FOUND"

	// Protocol errors
	CodeProtocolError ErrorCode = "PROTOCOL_ERROR"
	CodeTimeout       ErrorCode = "TIMEOUT"

	// Parameter errors
	CodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	CodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// Runtime errors
	CodeEvaluationFailed ErrorCode = "EVALUATION_FAILED"
	CodeStepFailed       ErrorCode = "STEP_FAILED"
)

// DebugError is a structured error type that includes helpful information
// for the LLM to understand what went wrong and how to fix it.
type DebugError struct {
	// Code is a machine-readable error category
	Code ErrorCode `json:"code"`

	// Message is a human/LLM-readable description of what went wrong
	Message string `json:"message"`

	// Hint provides actionable guidance on how to fix the error
	Hint string `json:"hint,omitempty"`

	// Details contains additional context (e.g., the invalid value, expected format)
	Details map[string]interface{} `json:"details,omitempty"`

	// Cause is the underlying error, if any
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *DebugError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Hint != "" {
		sb.WriteString(" | Hint: ")
		sb.WriteString(e.Hint)
	}

	return sb.String()
}

// Unwrap returns the underlying error for error chaining
func (e *DebugError) Unwrap() error {
	return e.Cause
}

// WithDetails adds details to the error
func (e *DebugError) WithDetails(key string, value interface{}) *DebugError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying cause
func (e *DebugError) WithCause(err error) *DebugError {
	e.Cause = err
	return e
}

// --- Session Errors ---

// SessionNotFound creates an error for when a session reference or id
// doesn't resolve
func SessionNotFound(ref string) *DebugError {
	return &DebugError{
		Code:    CodeSessionNotFound,
		Message: fmt.Sprintf("session '%s' not found", ref),
		Hint:    "Use list_sessions to see active sessions, or attach to create a new one.",
		Details: map[string]interface{}{
			"reference": ref,
		},
	}
}

// NoActiveSession creates an error when no session argument was given and
// there is no active session to fall back to
func NoActiveSession() *DebugError {
	return &DebugError{
		Code:    CodeNoActiveSession,
		Message: "no active session",
		Hint:    "Attach to a target first, or pass an explicit session reference or id.",
	}
}

// NotConnected creates an error for operations that require a live
// connection the session no longer has
func NotConnected(sessionID string) *DebugError {
	return &DebugError{
		Code:    CodeNotConnected,
		Message: fmt.Sprintf("session '%s' is disconnected", sessionID),
		Hint:    "The target connection was lost. Close this session and attach again.",
		Details: map[string]interface{}{
			"sessionId": sessionID,
		},
	}
}

// ReferenceConflict creates an error for a duplicate session reference.
// The normalized form is included because uniqueness is checked on it,
// not on the raw text.
func ReferenceConflict(raw, normalized, existingID string) *DebugError {
	return &DebugError{
		Code:    CodeReferenceConflict,
		Message: fmt.Sprintf("reference '%s' is already in use (normalizes to '%s')", raw, normalized),
		Hint:    "Pick a different reference, or close the session that currently holds it.",
		Details: map[string]interface{}{
			"reference":         raw,
			"normalized":        normalized,
			"existingSessionId": existingID,
		},
	}
}

// ReservedReference creates an error for a reference that normalizes to a
// reserved word
func ReservedReference(raw, normalized string) *DebugError {
	return &DebugError{
		Code:    CodeReferenceConflict,
		Message: fmt.Sprintf("reference '%s' is reserved", raw),
		Hint:    "References like 'none' and 'null' are placeholders and cannot name a session. Choose a descriptive name instead.",
		Details: map[string]interface{}{
			"reference":  raw,
			"normalized": normalized,
		},
	}
}

// ConnectFailed creates an error when the protocol handshake to a target
// fails
func ConnectFailed(host string, port int, err error) *DebugError {
	return &DebugError{
		Code:    CodeConnectFailed,
		Message: fmt.Sprintf("failed to connect to %s:%d: %v", host, port, err),
		Hint:    "Ensure the target is running with its inspector port open (Chrome: --remote-debugging-port, Node: --inspect).",
		Cause:   err,
		Details: map[string]interface{}{
			"host": host,
			"port": port,
		},
	}
}

// --- State Errors ---

// NotPaused creates an error for frame-scoped operations attempted while
// the session is running
func NotPaused(operation string) *DebugError {
	return &DebugError{
		Code:    CodeNotPaused,
		Message: fmt.Sprintf("%s requires a paused session", operation),
		Hint:    "Execution is currently running. Set a breakpoint and wait for a hit, or call pause first.",
		Details: map[string]interface{}{
			"operation": operation,
		},
	}
}

// LimitExceeded creates the distinct limit-exceeded condition: a logpoint
// crossed its execution ceiling and paused the debuggee. Resume is refused
// until the caller picks a remediation, so both options are spelled out.
func LimitExceeded(breach *types.LimitBreach) *DebugError {
	return &DebugError{
		Code: CodeLimitExceeded,
		Message: fmt.Sprintf("logpoint %s at %s:%d exceeded its execution ceiling (%d hits, ceiling %d)",
			breach.BreakpointID, breach.Location.File, breach.Location.Line, breach.ExecutionCount, breach.Ceiling),
		Hint: "Resuming now would immediately re-trigger the exhausted logpoint. Either reset_logpoint_counter to re-arm it, or remove_breakpoint to drop it, then resume.",
		Details: map[string]interface{}{
			"breakpointId":   breach.BreakpointID,
			"executionCount": breach.ExecutionCount,
			"ceiling":        breach.Ceiling,
			"capturedLogs":   breach.CapturedLogs,
		},
	}
}

// --- Breakpoint Errors ---

// PlacementFailed creates an error when the runtime rejected or could not
// resolve a breakpoint location. The diagnosis names the likely cause so
// the caller can fix the request instead of retrying blindly.
func PlacementFailed(loc types.SourceLocation, diagnosis string) *DebugError {
	return &DebugError{
		Code:    CodePlacementFailed,
		Message: fmt.Sprintf("could not place breakpoint at %s:%d", loc.File, loc.Line),
		Hint:    diagnosis,
		Details: map[string]interface{}{
			"file": loc.File,
			"line": loc.Line,
		},
	}
}

// ValidationFailed creates an error when logpoint expressions do not
// resolve at the actual placement location. The failing expressions and
// any location-search suggestions ride along so the caller can adjust the
// template or move the logpoint in one step.
func ValidationFailed(loc types.SourceLocation, failures map[string]string, suggestions []types.LocationCandidate) *DebugError {
	failing := make([]string, 0, len(failures))
	for expr := range failures {
		failing = append(failing, expr)
	}

	hint := "The logpoint was removed. Adjust the template to use expressions in scope at that line"
	if len(suggestions) > 0 {
		best := suggestions[0]
		if best.Score >= 1.0 {
			hint = fmt.Sprintf("The logpoint was removed. All expressions resolve at %s:%d; set the logpoint there instead", best.Location.File, best.Location.Line)
		} else {
			hint = fmt.Sprintf("The logpoint was removed. The closest candidate is %s:%d (%.0f%% of expressions resolve); see suggestions for per-expression failures", best.Location.File, best.Location.Line, best.Score*100)
		}
	}

	return &DebugError{
		Code:    CodeValidationFailed,
		Message: fmt.Sprintf("logpoint expressions failed to resolve at %s:%d: %s", loc.File, loc.Line, strings.Join(failing, ", ")),
		Hint:    hint,
		Details: map[string]interface{}{
			"file":               loc.File,
			"line":               loc.Line,
			"failingExpressions": failures,
			"suggestions":        suggestions,
		},
	}
}

// BreakpointNotFound creates an error for an unknown breakpoint id.
// Removing twice lands here; it is a report, not corruption.
func BreakpointNotFound(id string) *DebugError {
	return &DebugError{
		Code:    CodeBreakpointNotFound,
		Message: fmt.Sprintf("breakpoint '%s' not found", id),
		Hint:    "It may have been removed already. Use list_breakpoints to see what is placed.",
		Details: map[string]interface{}{
			"breakpointId": id,
		},
	}
}

// --- Protocol Errors ---

// ProtocolError creates an error for a failed protocol exchange
func ProtocolError(method string, err error) *DebugError {
	return &DebugError{
		Code:    CodeProtocolError,
		Message: fmt.Sprintf("protocol command %s failed: %v", method, err),
		Hint:    "The target may have crashed or navigated away. If this persists, the session is likely dead; close it and attach again.",
		Cause:   err,
		Details: map[string]interface{}{
			"method": method,
		},
	}
}

// Timeout creates an error for a bounded wait that expired
func Timeout(operation string, seconds float64) *DebugError {
	return &DebugError{
		Code:    CodeTimeout,
		Message: fmt.Sprintf("%s timed out after %.1fs", operation, seconds),
		Hint:    "The code path may simply not have executed. Trigger it in the target, or treat the result as unknown.",
		Details: map[string]interface{}{
			"operation":      operation,
			"timeoutSeconds": seconds,
		},
	}
}

// --- Parameter Errors ---

// MissingParameter creates an error for missing required parameters
func MissingParameter(paramName, description string) *DebugError {
	return &DebugError{
		Code:    CodeMissingParameter,
		Message: fmt.Sprintf("required parameter '%s' is missing", paramName),
		Hint:    description,
		Details: map[string]interface{}{
			"parameter": paramName,
		},
	}
}

// InvalidParameter creates an error for invalid parameter values
func InvalidParameter(paramName string, value interface{}, expected string) *DebugError {
	return &DebugError{
		Code:    CodeInvalidParameter,
		Message: fmt.Sprintf("invalid value for parameter '%s': %v", paramName, value),
		Hint:    fmt.Sprintf("Expected: %s", expected),
		Details: map[string]interface{}{
			"parameter": paramName,
			"value":     value,
			"expected":  expected,
		},
	}
}

// --- Runtime Errors ---

// EvaluationFailed creates an error for expression evaluation failures
func EvaluationFailed(expression string, err error) *DebugError {
	return &DebugError{
		Code:    CodeEvaluationFailed,
		Message: fmt.Sprintf("failed to evaluate expression '%s': %v", expression, err),
		Hint:    "Check that the expression syntax is valid JavaScript and that referenced variables are in scope in the selected frame.",
		Cause:   err,
		Details: map[string]interface{}{
			"expression": expression,
		},
	}
}

// StepFailed creates an error for step failures
func StepFailed(stepType string, err error) *DebugError {
	return &DebugError{
		Code:    CodeStepFailed,
		Message: fmt.Sprintf("step %s failed: %v", stepType, err),
		Hint:    "The target may have resumed or disconnected. Use get_call_stack to check the current state.",
		Cause:   err,
		Details: map[string]interface{}{
			"stepType": stepType,
		},
	}
}

// --- Helper for wrapping generic errors ---

// Wrap wraps a generic error with context
func Wrap(code ErrorCode, message string, hint string, err error) *DebugError {
	return &DebugError{
		Code:    code,
		Message: message,
		Hint:    hint,
		Cause:   err,
	}
}

// FromError creates a DebugError from a generic error, attempting to preserve any existing structure
func FromError(err error) *DebugError {
	var de *DebugError
	if stderrors.As(err, &de) {
		return de
	}
	return &DebugError{
		Code:    "UNKNOWN_ERROR",
		Message: err.Error(),
		Hint:    "An unexpected error occurred. Please check the error message for details.",
		Cause:   err,
	}
}

// IsCode reports whether err is a DebugError with the given code
func IsCode(err error, code ErrorCode) bool {
	var de *DebugError
	if stderrors.As(err, &de) {
		return de.Code == code
	}
	return false
}
