// Package debug implements the per-session debugging state machine: the
// breakpoint/logpoint lifecycle with requested-vs-resolved location
// reconciliation, the execution-limit protocol for logpoints, pause-time
// inspection, and the nearby-location search used when logpoint
// expressions fail to resolve.
//
// A Session drives one inspection target through the RuntimeClient
// interface, implemented for real targets by internal/cdp and by fakes in
// tests. The state machine is:
//
//	Disconnected -> Connected(running) <-> Paused
//
// Paused is entered on a breakpoint hit, an explicit pause, or an
// execution-limit breach, and left only via an explicit resume.
package debug

import (
	"context"
	"time"

	"github.com/inspectd/cdp-mcp/internal/cdp"
	"github.com/inspectd/cdp-mcp/pkg/types"
)

// RuntimeClient is the target-connection collaborator: everything the
// session needs from the inspection protocol. internal/cdp.Client is the
// production implementation.
type RuntimeClient interface {
	Kind() types.RuntimeKind
	Connected() bool

	SetBreakpointByURL(ctx context.Context, url string, line, column int, condition string) (string, []cdp.Location, error)
	RemoveBreakpoint(ctx context.Context, id string) error

	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	StepOver(ctx context.Context) error
	StepInto(ctx context.Context) error
	StepOut(ctx context.Context) error

	EvaluateOnCallFrame(ctx context.Context, frameID, expression string) (*cdp.RemoteObject, error)
	Evaluate(ctx context.Context, expression string) (*cdp.RemoteObject, error)
	GetProperties(ctx context.Context, objectID string) ([]cdp.PropertyDescriptor, error)
	GetScriptSource(ctx context.Context, scriptID string) (string, error)

	Scripts() []cdp.ScriptInfo
	ScriptByID(id string) (cdp.ScriptInfo, bool)

	WaitForPaused(timeout time.Duration) (*cdp.PausedEvent, error)

	OnPaused(func(*cdp.PausedEvent))
	OnResumed(func())
	OnConsoleMessage(func(string))
	OnClose(func(error))

	Close() error
}
