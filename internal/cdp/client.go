package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/inspectd/cdp-mcp/internal/errors"
	"github.com/inspectd/cdp-mcp/pkg/types"
)

// Client provides a high-level API for CDP operations against one target.
type Client struct {
	transport *Transport
	kind      types.RuntimeKind

	// Response handling
	pendingRequests map[int]chan *envelope
	mu              sync.Mutex

	// Scripts the runtime has parsed, keyed by script id
	scripts   map[string]ScriptInfo
	scriptsMu sync.RWMutex

	// Event handlers
	pausedHandler  func(*PausedEvent)
	resumedHandler func()
	consoleHandler func(text string)
	closeHandler   func(error)
	handlerMu      sync.RWMutex

	// Paused event waiters
	pausedChan chan *PausedEvent
	pausedMu   sync.Mutex

	// Context for shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a CDP client over the given transport and starts its
// read loop. Callers should follow up with EnableDomains before issuing
// Debugger commands.
func NewClient(transport *Transport, kind types.RuntimeKind) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		transport:       transport,
		kind:            kind,
		pendingRequests: make(map[int]chan *envelope),
		scripts:         make(map[string]ScriptInfo),
		ctx:             ctx,
		cancel:          cancel,
	}

	c.wg.Add(1)
	go c.readLoop()

	return c
}

// Kind reports the detected runtime kind of the connected target.
func (c *Client) Kind() types.RuntimeKind { return c.kind }

// Connected reports whether the client is still usable.
func (c *Client) Connected() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

// OnPaused registers the handler invoked on Debugger.paused events.
func (c *Client) OnPaused(handler func(*PausedEvent)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.pausedHandler = handler
}

// OnResumed registers the handler invoked on Debugger.resumed events.
func (c *Client) OnResumed(handler func()) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.resumedHandler = handler
}

// OnConsoleMessage registers the handler invoked with the rendered text of
// each Runtime.consoleAPICalled event.
func (c *Client) OnConsoleMessage(handler func(text string)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.consoleHandler = handler
}

// OnClose registers the handler invoked when the connection drops.
func (c *Client) OnClose(handler func(error)) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.closeHandler = handler
}

// readLoop continuously reads messages from the transport.
func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		env, err := c.transport.Receive()
		if err != nil {
			select {
			case <-c.ctx.Done():
				return
			default:
				// A read error on a WebSocket is fatal: the connection
				// is gone. Fail all pending commands and notify.
				c.failPending(err)
				c.handlerMu.RLock()
				handler := c.closeHandler
				c.handlerMu.RUnlock()
				if handler != nil {
					handler(err)
				}
				c.cancel()
				return
			}
		}

		c.handleMessage(env)
	}
}

// failPending unblocks every in-flight command with a connection error.
func (c *Client) failPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pendingRequests {
		ch <- &envelope{ID: id, Error: &commandError{Code: -1, Message: err.Error()}}
		delete(c.pendingRequests, id)
	}
}

// handleMessage routes one incoming message: command responses by id,
// events by method.
func (c *Client) handleMessage(env *envelope) {
	if env.Method == "" {
		c.mu.Lock()
		if ch, ok := c.pendingRequests[env.ID]; ok {
			ch <- env
			delete(c.pendingRequests, env.ID)
		}
		c.mu.Unlock()
		return
	}

	switch env.Method {
	case "Debugger.scriptParsed":
		var ev scriptParsedEvent
		if err := json.Unmarshal(env.Params, &ev); err != nil {
			return
		}
		c.scriptsMu.Lock()
		c.scripts[ev.ScriptID] = ScriptInfo(ev)
		c.scriptsMu.Unlock()

	case "Debugger.paused":
		var ev PausedEvent
		if err := json.Unmarshal(env.Params, &ev); err != nil {
			log.Printf("Warning: failed to decode Debugger.paused: %v", err)
			return
		}
		c.pausedMu.Lock()
		if c.pausedChan != nil {
			select {
			case c.pausedChan <- &ev:
			default:
			}
		}
		c.pausedMu.Unlock()
		c.handlerMu.RLock()
		handler := c.pausedHandler
		c.handlerMu.RUnlock()
		if handler != nil {
			handler(&ev)
		}

	case "Debugger.resumed":
		c.handlerMu.RLock()
		handler := c.resumedHandler
		c.handlerMu.RUnlock()
		if handler != nil {
			handler()
		}

	case "Runtime.consoleAPICalled":
		var ev consoleAPIEvent
		if err := json.Unmarshal(env.Params, &ev); err != nil {
			return
		}
		c.handlerMu.RLock()
		handler := c.consoleHandler
		c.handlerMu.RUnlock()
		if handler != nil {
			handler(renderConsoleArgs(ev.Args))
		}
	}
}

// renderConsoleArgs joins console call arguments the way DevTools would.
func renderConsoleArgs(args []RemoteObject) string {
	out := ""
	for i := range args {
		if i > 0 {
			out += " "
		}
		out += args[i].String()
	}
	return out
}

// Call sends a CDP command and decodes the result into out (which may be
// nil when the result is not needed).
func (c *Client) Call(ctx context.Context, method string, params, out interface{}) error {
	id := c.transport.NextID()
	req := &request{ID: id, Method: method, Params: params}

	respCh := make(chan *envelope, 1)
	c.mu.Lock()
	c.pendingRequests[id] = respCh
	c.mu.Unlock()

	if err := c.transport.Send(req); err != nil {
		c.mu.Lock()
		delete(c.pendingRequests, id)
		c.mu.Unlock()
		return err
	}

	select {
	case env := <-respCh:
		if env.Error != nil {
			return fmt.Errorf("%s: %w", method, env.Error)
		}
		if out != nil && len(env.Result) > 0 {
			if err := json.Unmarshal(env.Result, out); err != nil {
				return fmt.Errorf("%s: failed to decode result: %w", method, err)
			}
		}
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pendingRequests, id)
		c.mu.Unlock()
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// EnableDomains enables the Debugger and Runtime domains. Runtime.enable
// also replays scriptParsed/consoleAPICalled backlogs on some runtimes.
func (c *Client) EnableDomains(ctx context.Context) error {
	if err := c.Call(ctx, "Runtime.enable", nil, nil); err != nil {
		return err
	}
	if err := c.Call(ctx, "Debugger.enable", map[string]interface{}{}, nil); err != nil {
		return err
	}
	return nil
}

// SetBreakpointByURL places a breakpoint by script URL with 0-based
// coordinates. The runtime returns the locations it actually bound to:
// zero when the line is not pausable, more than one when the URL matches
// several scripts.
func (c *Client) SetBreakpointByURL(ctx context.Context, url string, line, column int, condition string) (string, []Location, error) {
	params := map[string]interface{}{
		"url":        url,
		"lineNumber": line,
	}
	if column > 0 {
		params["columnNumber"] = column
	}
	if condition != "" {
		params["condition"] = condition
	}

	var result struct {
		BreakpointID string     `json:"breakpointId"`
		Locations    []Location `json:"locations"`
	}
	if err := c.Call(ctx, "Debugger.setBreakpointByUrl", params, &result); err != nil {
		return "", nil, err
	}
	return result.BreakpointID, result.Locations, nil
}

// RemoveBreakpoint removes a breakpoint by id.
func (c *Client) RemoveBreakpoint(ctx context.Context, id string) error {
	return c.Call(ctx, "Debugger.removeBreakpoint", map[string]interface{}{"breakpointId": id}, nil)
}

// Pause requests a pause at the next opportunity.
func (c *Client) Pause(ctx context.Context) error {
	return c.Call(ctx, "Debugger.pause", nil, nil)
}

// Resume resumes execution.
func (c *Client) Resume(ctx context.Context) error {
	return c.Call(ctx, "Debugger.resume", nil, nil)
}

// StepOver steps to the next statement in the current frame.
func (c *Client) StepOver(ctx context.Context) error {
	return c.Call(ctx, "Debugger.stepOver", nil, nil)
}

// StepInto steps into the call on the current statement.
func (c *Client) StepInto(ctx context.Context) error {
	return c.Call(ctx, "Debugger.stepInto", nil, nil)
}

// StepOut steps out of the current frame.
func (c *Client) StepOut(ctx context.Context) error {
	return c.Call(ctx, "Debugger.stepOut", nil, nil)
}

// EvaluateOnCallFrame evaluates an expression in the scope of a paused
// call frame. An exception thrown by the expression is returned as an
// error, not a value.
func (c *Client) EvaluateOnCallFrame(ctx context.Context, frameID, expression string) (*RemoteObject, error) {
	params := map[string]interface{}{
		"callFrameId": frameID,
		"expression":  expression,
		"silent":      true,
	}

	var result struct {
		Result           RemoteObject      `json:"result"`
		ExceptionDetails *ExceptionDetails `json:"exceptionDetails,omitempty"`
	}
	if err := c.Call(ctx, "Debugger.evaluateOnCallFrame", params, &result); err != nil {
		return nil, err
	}
	if result.ExceptionDetails != nil {
		return nil, fmt.Errorf("%s", result.ExceptionDetails.Message())
	}
	return &result.Result, nil
}

// Evaluate evaluates an expression in the global scope, regardless of
// paused state.
func (c *Client) Evaluate(ctx context.Context, expression string) (*RemoteObject, error) {
	params := map[string]interface{}{
		"expression": expression,
		"silent":     true,
	}

	var result struct {
		Result           RemoteObject      `json:"result"`
		ExceptionDetails *ExceptionDetails `json:"exceptionDetails,omitempty"`
	}
	if err := c.Call(ctx, "Runtime.evaluate", params, &result); err != nil {
		return nil, err
	}
	if result.ExceptionDetails != nil {
		return nil, fmt.Errorf("%s", result.ExceptionDetails.Message())
	}
	return &result.Result, nil
}

// GetProperties lists the own properties of a remote object (a scope's
// backing object, or any value with an objectId).
func (c *Client) GetProperties(ctx context.Context, objectID string) ([]PropertyDescriptor, error) {
	params := map[string]interface{}{
		"objectId":               objectID,
		"ownProperties":          true,
		"generatePreview":        false,
		"accessorPropertiesOnly": false,
	}

	var result struct {
		Result []PropertyDescriptor `json:"result"`
	}
	if err := c.Call(ctx, "Runtime.getProperties", params, &result); err != nil {
		return nil, err
	}
	return result.Result, nil
}

// GetScriptSource returns the full source text of a loaded script.
func (c *Client) GetScriptSource(ctx context.Context, scriptID string) (string, error) {
	var result struct {
		ScriptSource string `json:"scriptSource"`
	}
	err := c.Call(ctx, "Debugger.getScriptSource", map[string]interface{}{"scriptId": scriptID}, &result)
	if err != nil {
		return "", err
	}
	return result.ScriptSource, nil
}

// Scripts returns a snapshot of every script the runtime has parsed.
func (c *Client) Scripts() []ScriptInfo {
	c.scriptsMu.RLock()
	defer c.scriptsMu.RUnlock()
	out := make([]ScriptInfo, 0, len(c.scripts))
	for _, s := range c.scripts {
		out = append(out, s)
	}
	return out
}

// ScriptByID looks up a parsed script by its runtime-assigned id.
func (c *Client) ScriptByID(id string) (ScriptInfo, bool) {
	c.scriptsMu.RLock()
	defer c.scriptsMu.RUnlock()
	s, ok := c.scripts[id]
	return s, ok
}

// WaitForPaused waits for the next Debugger.paused event with a timeout.
func (c *Client) WaitForPaused(timeout time.Duration) (*PausedEvent, error) {
	pausedCh := make(chan *PausedEvent, 1)

	c.pausedMu.Lock()
	c.pausedChan = pausedCh
	c.pausedMu.Unlock()

	defer func() {
		c.pausedMu.Lock()
		c.pausedChan = nil
		c.pausedMu.Unlock()
	}()

	select {
	case ev := <-pausedCh:
		return ev, nil
	case <-time.After(timeout):
		return nil, errors.Timeout("waiting for paused event", timeout.Seconds())
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}

// Close shuts down the client.
func (c *Client) Close() error {
	c.cancel()
	err := c.transport.Close()
	c.wg.Wait()
	return err
}
