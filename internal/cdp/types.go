package cdp

import "encoding/json"

// Location is a runtime location: script id plus 0-based line/column.
type Location struct {
	ScriptID     string `json:"scriptId"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
}

// CallFrame is one entry of the paused call stack.
type CallFrame struct {
	CallFrameID  string       `json:"callFrameId"`
	FunctionName string       `json:"functionName"`
	Location     Location     `json:"location"`
	ScopeChain   []Scope      `json:"scopeChain"`
	This         RemoteObject `json:"this"`
}

// Scope is one scope of a call frame's scope chain.
type Scope struct {
	Type   string       `json:"type"` // global, local, closure, block, ...
	Object RemoteObject `json:"object"`
	Name   string       `json:"name,omitempty"`
}

// RemoteObject is the runtime's mirror of a JavaScript value.
type RemoteObject struct {
	Type        string          `json:"type"`
	Subtype     string          `json:"subtype,omitempty"`
	ClassName   string          `json:"className,omitempty"`
	Value       json.RawMessage `json:"value,omitempty"`
	Description string          `json:"description,omitempty"`
	ObjectID    string          `json:"objectId,omitempty"`
}

// String returns the most readable rendering of the value.
func (r *RemoteObject) String() string {
	if r == nil {
		return "undefined"
	}
	if r.Description != "" {
		return r.Description
	}
	if len(r.Value) > 0 {
		return string(r.Value)
	}
	return r.Type
}

// PropertyDescriptor is one property returned by Runtime.getProperties.
type PropertyDescriptor struct {
	Name  string        `json:"name"`
	Value *RemoteObject `json:"value,omitempty"`
}

// ExceptionDetails describes an exception thrown during evaluation.
type ExceptionDetails struct {
	Text      string        `json:"text"`
	Exception *RemoteObject `json:"exception,omitempty"`
}

// Message returns the best available description of the exception.
func (e *ExceptionDetails) Message() string {
	if e.Exception != nil && e.Exception.Description != "" {
		return e.Exception.Description
	}
	return e.Text
}

// ScriptInfo describes a script the runtime has parsed, recorded from
// Debugger.scriptParsed events.
type ScriptInfo struct {
	ScriptID  string `json:"scriptId"`
	URL       string `json:"url"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// PausedEvent is the payload of Debugger.paused.
type PausedEvent struct {
	CallFrames     []CallFrame `json:"callFrames"`
	Reason         string      `json:"reason"`
	HitBreakpoints []string    `json:"hitBreakpoints,omitempty"`
}

// consoleAPIEvent is the payload of Runtime.consoleAPICalled.
type consoleAPIEvent struct {
	Type string         `json:"type"`
	Args []RemoteObject `json:"args"`
}

// scriptParsedEvent is the payload of Debugger.scriptParsed.
type scriptParsedEvent struct {
	ScriptID  string `json:"scriptId"`
	URL       string `json:"url"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// Target is one debuggable target listed by the DevTools HTTP endpoint.
type Target struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}
