package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers the debug tool API
func (s *Server) registerTools() {
	// Session management
	s.registerAttach()
	s.registerListSessions()
	s.registerSelectSession()
	s.registerCloseSession()

	// Breakpoints
	s.registerSetBreakpoint()
	s.registerSetLogpoint()
	s.registerRemoveBreakpoint()
	s.registerListBreakpoints()
	s.registerResetLogpointCounter()

	// Execution control
	s.registerPause()
	s.registerResume()
	s.registerStep()

	// Inspection
	s.registerGetCallStack()
	s.registerGetVariables()
	s.registerEvaluate()
	s.registerReadSource()
}

// Session Management Tools

func (s *Server) registerAttach() {
	tool := mcp.NewTool("attach",
		mcp.WithDescription("Attach to a debuggable target: a browser tab (Chrome with --remote-debugging-port) or a script runtime (Node with --inspect). Returns a sessionId; give the session a short reference to address it by name in later calls."),
		mcp.WithString("host",
			mcp.Description("Host of the inspector endpoint (default: 127.0.0.1)"),
		),
		mcp.WithNumber("port",
			mcp.Required(),
			mcp.Description("Port of the inspector endpoint (9222 for Chrome, 9229 for Node)"),
		),
		mcp.WithString("reference",
			mcp.Description("Human-readable name for this session, e.g. 'checkout tab'. Must be unique among live sessions."),
		),
		mcp.WithNumber("pageIndex",
			mcp.Description("For browser targets with multiple tabs: which tab to attach to (default: 0). Passing the current tab count opens a new tab."),
		),
	)
	s.mcpServer.AddTool(tool, s.handleAttach)
}

func (s *Server) registerListSessions() {
	tool := mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active debug sessions, including which one is active."),
	)
	s.mcpServer.AddTool(tool, s.handleListSessions)
}

func (s *Server) registerSelectSession() {
	tool := mcp.NewTool("select_session",
		mcp.WithDescription("Make a session the active default. Tools that take an optional 'session' argument target the active session when it is omitted."),
		mcp.WithString("session",
			mcp.Required(),
			mcp.Description("Session reference or id"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleSelectSession)
}

func (s *Server) registerCloseSession() {
	tool := mcp.NewTool("close_session",
		mcp.WithDescription("Close a debug session and disconnect from its target. If it was active, another session (if any) becomes active."),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleCloseSession)
}

// Breakpoint Tools

func (s *Server) registerSetBreakpoint() {
	tool := mcp.NewTool("set_breakpoint",
		mcp.WithDescription("Set a breakpoint at file:line. The runtime may snap to the nearest pausable statement; the response carries both the requested and resolved locations and a locationDiffers warning flag when they disagree."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Source file path or script URL"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line number"),
		),
		mcp.WithNumber("column",
			mcp.Description("1-based column number (optional)"),
		),
		mcp.WithString("condition",
			mcp.Description("Only pause when this expression evaluates truthy"),
		),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleSetBreakpoint)
}

func (s *Server) registerSetLogpoint() {
	tool := mcp.NewTool("set_logpoint",
		mcp.WithDescription("Set a logpoint: logs a message template each time the line executes, without pausing. Expressions go inside braces, e.g. 'cart total: {cart.total}'. After executionCeiling hits the logpoint forces a pause so it cannot flood output; use reset_logpoint_counter or remove_breakpoint to continue past it."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("Source file path or script URL"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line number"),
		),
		mcp.WithNumber("column",
			mcp.Description("1-based column number (optional)"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message template; text inside {...} is evaluated in the paused scope"),
		),
		mcp.WithNumber("executionCeiling",
			mcp.Description("Maximum hits before the logpoint forces a pause (default from config; minimum 1, unlimited not supported)"),
		),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleSetLogpoint)
}

func (s *Server) registerRemoveBreakpoint() {
	tool := mcp.NewTool("remove_breakpoint",
		mcp.WithDescription("Remove a breakpoint or logpoint by id. Also unregisters any execution-limit tracking for it."),
		mcp.WithString("breakpointId",
			mcp.Required(),
			mcp.Description("The breakpoint id returned by set_breakpoint/set_logpoint"),
		),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleRemoveBreakpoint)
}

func (s *Server) registerListBreakpoints() {
	tool := mcp.NewTool("list_breakpoints",
		mcp.WithDescription("List every breakpoint and logpoint placed in a session."),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleListBreakpoints)
}

func (s *Server) registerResetLogpointCounter() {
	tool := mcp.NewTool("reset_logpoint_counter",
		mcp.WithDescription("Zero a logpoint's execution counter on both sides (debuggee and controller). Required before resume when a logpoint has exceeded its ceiling and paused execution."),
		mcp.WithString("breakpointId",
			mcp.Required(),
			mcp.Description("The logpoint's breakpoint id"),
		),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleResetLogpointCounter)
}

// Execution Control Tools

func (s *Server) registerPause() {
	tool := mcp.NewTool("pause",
		mcp.WithDescription("Pause execution at the next statement."),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handlePause)
}

func (s *Server) registerResume() {
	tool := mcp.NewTool("resume",
		mcp.WithDescription("Resume execution. Refused while the session is paused on a logpoint limit breach; reset the counter or remove the logpoint first."),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleResume)
}

func (s *Server) registerStep() {
	tool := mcp.NewTool("step",
		mcp.WithDescription("Execute a step command while paused. type='over' steps to the next line, 'into' enters function calls, 'out' exits the current function."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Step type: 'over', 'into', or 'out'"),
		),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleStep)
}

// Inspection Tools

func (s *Server) registerGetCallStack() {
	tool := mcp.NewTool("get_call_stack",
		mcp.WithDescription("Get the call-frame stack of a paused session. Frame ids are usable with get_variables and evaluate. Locations are original-source coordinates."),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleGetCallStack)
}

func (s *Server) registerGetVariables() {
	tool := mcp.NewTool("get_variables",
		mcp.WithDescription("List the variables visible in a paused call frame's scopes. Only valid while paused."),
		mcp.WithString("frameId",
			mcp.Description("Frame id from get_call_stack (default: top frame)"),
		),
		mcp.WithBoolean("includeGlobalScope",
			mcp.Description("Include the (large) global scope (default: false)"),
		),
		mcp.WithString("nameFilter",
			mcp.Description("Case-insensitive substring filter on variable names"),
		),
		mcp.WithBoolean("expand",
			mcp.Description("Expand object values one or more levels (default: false)"),
		),
		mcp.WithNumber("maxDepth",
			mcp.Description("Maximum expansion depth when expand is set (default: 2)"),
		),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleGetVariables)
}

func (s *Server) registerEvaluate() {
	tool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate an expression in the scope of a paused call frame. Only valid while paused."),
		mcp.WithString("expression",
			mcp.Required(),
			mcp.Description("Expression to evaluate, e.g. 'cart.items.length'"),
		),
		mcp.WithString("frameId",
			mcp.Description("Frame id from get_call_stack (default: top frame)"),
		),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleEvaluate)
}

func (s *Server) registerReadSource() {
	tool := mcp.NewTool("read_source",
		mcp.WithDescription("Read the source text the runtime actually loaded for a script, optionally restricted to a line range. Useful for checking what is really at a line before placing a breakpoint."),
		mcp.WithString("file",
			mcp.Description("Source file path or script URL (alternative to scriptId)"),
		),
		mcp.WithString("scriptId",
			mcp.Description("Runtime script id (alternative to file)"),
		),
		mcp.WithNumber("startLine",
			mcp.Description("1-based first line to return (default: 1)"),
		),
		mcp.WithNumber("endLine",
			mcp.Description("1-based last line to return, inclusive (default: end of script)"),
		),
		mcp.WithString("session",
			mcp.Description("Session reference or id (default: the active session)"),
		),
	)
	s.mcpServer.AddTool(tool, s.handleReadSource)
}
