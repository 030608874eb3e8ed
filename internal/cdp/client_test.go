package cdp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/inspectd/cdp-mcp/internal/errors"
)

// newLoopbackClient builds a client without a transport or read loop;
// events are injected directly through handleMessage.
func newLoopbackClient(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &Client{
		pendingRequests: make(map[int]chan *envelope),
		scripts:         make(map[string]ScriptInfo),
		ctx:             ctx,
		cancel:          cancel,
	}
}

// TestWaitForPaused_Timeout verifies an expired wait reports a TIMEOUT
// error rather than hanging or fabricating an event.
func TestWaitForPaused_Timeout(t *testing.T) {
	c := newLoopbackClient(t)

	ev, err := c.WaitForPaused(10 * time.Millisecond)
	if ev != nil {
		t.Fatalf("expected no event, got %+v", ev)
	}
	if !errors.IsCode(err, errors.CodeTimeout) {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}

// TestWaitForPaused_Delivery verifies a Debugger.paused event arriving
// within the wait is delivered to the waiter.
func TestWaitForPaused_Delivery(t *testing.T) {
	c := newLoopbackClient(t)

	go func() {
		time.Sleep(20 * time.Millisecond)
		c.handleMessage(&envelope{
			Method: "Debugger.paused",
			Params: json.RawMessage(`{"reason":"breakpoint","callFrames":[{"callFrameId":"f0","functionName":"main"}]}`),
		})
	}()

	ev, err := c.WaitForPaused(time.Second)
	if err != nil {
		t.Fatalf("WaitForPaused failed: %v", err)
	}
	if ev.Reason != "breakpoint" || len(ev.CallFrames) != 1 {
		t.Errorf("unexpected event: %+v", ev)
	}
}

// TestHandleMessage_ScriptParsed verifies scriptParsed events populate
// the script registry.
func TestHandleMessage_ScriptParsed(t *testing.T) {
	c := newLoopbackClient(t)

	c.handleMessage(&envelope{
		Method: "Debugger.scriptParsed",
		Params: json.RawMessage(`{"scriptId":"s1","url":"https://app.example/main.js","startLine":0,"endLine":99}`),
	})

	script, ok := c.ScriptByID("s1")
	if !ok {
		t.Fatal("expected the parsed script to be registered")
	}
	if script.URL != "https://app.example/main.js" || script.EndLine != 99 {
		t.Errorf("unexpected script info: %+v", script)
	}
	if len(c.Scripts()) != 1 {
		t.Errorf("scripts = %d, want 1", len(c.Scripts()))
	}
}
