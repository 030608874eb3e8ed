// Package cdp implements a client for the Chrome DevTools Protocol (CDP).
//
// CDP is the inspection protocol spoken by Chromium browsers and by Node.js
// under --inspect. This package provides:
//   - Transport: WebSocket message framing over a DevTools debugger URL
//   - Client: asynchronous command/response correlation plus event dispatch
//     for the Debugger and Runtime domains
//   - Target discovery over the DevTools HTTP endpoint, including runtime
//     kind detection and opening new tabs on a browser target
//
// The protocol is described at: https://chromedevtools.github.io/devtools-protocol/
package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// request is the wire form of a CDP command.
type request struct {
	ID     int         `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// envelope is the wire form of everything the runtime sends back: command
// responses carry ID, events carry Method.
type envelope struct {
	ID     int             `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *commandError   `json:"error,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

type commandError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *commandError) Error() string {
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}

// Transport handles WebSocket communication with a CDP endpoint.
type Transport struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
	seq  int
}

// DialTransport connects to a DevTools WebSocket debugger URL.
func DialTransport(ctx context.Context, wsURL string) (*Transport, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CDP endpoint %s: %w", wsURL, err)
	}

	return &Transport{
		conn: conn,
		seq:  1,
	}, nil
}

// NextID returns the next command id.
func (t *Transport) NextID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.seq
	t.seq++
	return id
}

// Send sends one CDP command.
func (t *Transport) Send(req *request) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("failed to write CDP message: %w", err)
	}
	return nil
}

// Receive receives the next message from the runtime.
func (t *Transport) Receive() (*envelope, error) {
	var env envelope
	if err := t.conn.ReadJSON(&env); err != nil {
		return nil, fmt.Errorf("failed to read CDP message: %w", err)
	}
	return &env, nil
}

// Close closes the transport.
func (t *Transport) Close() error {
	return t.conn.Close()
}
