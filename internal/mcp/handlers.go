package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/inspectd/cdp-mcp/internal/errors"
	"github.com/inspectd/cdp-mcp/internal/registry"
)

// jsonResult marshals a payload into a text tool result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// resolveSession picks the session a tool call targets: the explicit
// 'session' argument (reference or id) when present, the active session
// otherwise. Resolving also refreshes the session's activity timestamp so
// the reaper leaves sessions in use alone.
func (s *Server) resolveSession(request mcp.CallToolRequest) (*registry.Session, error) {
	var session *registry.Session
	var err error

	if ref, argErr := request.RequireString("session"); argErr == nil && ref != "" {
		session, err = s.registry.Resolve(ref)
	} else {
		session, err = s.registry.GetActive()
	}
	if err != nil {
		return nil, err
	}

	s.registry.Touch(session.ID)
	return session, nil
}

// Session Management Handlers

func (s *Server) handleAttach(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	host := "127.0.0.1"
	if h, err := request.RequireString("host"); err == nil && h != "" {
		host = h
	}

	port, err := request.RequireFloat("port")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("port",
			"Specify the inspector port: 9222 for Chrome started with --remote-debugging-port, 9229 for Node started with --inspect.").Error()), nil
	}

	reference := ""
	if ref, err := request.RequireString("reference"); err == nil {
		reference = ref
	}

	pageIndex := 0
	if pi, err := request.RequireFloat("pageIndex"); err == nil {
		pageIndex = int(pi)
	}

	session, err := s.registry.Create(ctx, host, int(port), reference, pageIndex)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := map[string]interface{}{
		"sessionId": session.ID,
		"status":    "attached",
		"kind":      string(session.Kind),
		"host":      session.Host,
		"port":      session.Port,
	}
	if session.Reference != "" {
		result["reference"] = session.Reference
	}
	return jsonResult(result)
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"sessions": s.registry.List(),
	})
}

func (s *Server) handleSelectSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ref, err := request.RequireString("session")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("session", "Pass a session reference or id from list_sessions.").Error()), nil
	}

	session, err := s.registry.Resolve(ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !s.registry.SetActive(session.ID) {
		return mcp.NewToolResultError(errors.SessionNotFound(ref).Error()), nil
	}

	return jsonResult(map[string]interface{}{
		"sessionId": session.ID,
		"active":    true,
	})
}

func (s *Server) handleCloseSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.registry.Close(session.ID)

	return jsonResult(map[string]interface{}{
		"sessionId": session.ID,
		"status":    "closed",
	})
}

// Breakpoint Handlers

func (s *Server) handleSetBreakpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("file", "Specify the source file path or script URL.").Error()), nil
	}
	line, err := request.RequireFloat("line")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("line", "Specify the 1-based line number.").Error()), nil
	}

	column := 0
	if c, err := request.RequireFloat("column"); err == nil {
		column = int(c)
	}
	condition := ""
	if c, err := request.RequireString("condition"); err == nil {
		condition = c
	}

	info, err := session.Debug.SetBreakpoint(ctx, file, int(line), column, condition)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := map[string]interface{}{
		"breakpointId":      info.ID,
		"requestedLocation": info.Requested,
		"resolvedLocation":  info.Resolved,
		"locationDiffers":   info.LocationDiffers,
	}
	if info.LocationDiffers {
		result["warning"] = "the runtime placed the breakpoint at a different location than requested; scope at the resolved line may differ"
	}
	return jsonResult(result)
}

func (s *Server) handleSetLogpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file, err := request.RequireString("file")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("file", "Specify the source file path or script URL.").Error()), nil
	}
	line, err := request.RequireFloat("line")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("line", "Specify the 1-based line number.").Error()), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("message",
			"Specify the message template; expressions go inside braces, e.g. 'total is {cart.total}'.").Error()), nil
	}

	column := 0
	if c, err := request.RequireFloat("column"); err == nil {
		column = int(c)
	}
	ceiling := 0
	if c, err := request.RequireFloat("executionCeiling"); err == nil {
		ceiling = int(c)
	}

	info, err := session.Debug.SetLogpoint(ctx, file, int(line), column, message, ceiling)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := map[string]interface{}{
		"breakpointId":      info.ID,
		"requestedLocation": info.Requested,
		"resolvedLocation":  info.Resolved,
		"locationDiffers":   info.LocationDiffers,
		"executionCeiling":  info.Logpoint.Ceiling,
		"expressions":       info.Logpoint.Expressions,
	}
	if info.LocationDiffers {
		result["warning"] = "the runtime placed the logpoint at a different location than requested; its expressions were validated there"
	}
	return jsonResult(result)
}

func (s *Server) handleRemoveBreakpoint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := request.RequireString("breakpointId")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("breakpointId", "Pass the id returned by set_breakpoint or set_logpoint.").Error()), nil
	}

	warning, err := session.Debug.RemoveBreakpoint(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := map[string]interface{}{
		"breakpointId": id,
		"status":       "removed",
	}
	if warning != "" {
		result["warning"] = warning
	}
	return jsonResult(result)
}

func (s *Server) handleListBreakpoints(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]interface{}{
		"sessionId":   session.ID,
		"breakpoints": session.Debug.ListBreakpoints(),
	})
}

func (s *Server) handleResetLogpointCounter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id, err := request.RequireString("breakpointId")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("breakpointId", "Pass the logpoint's breakpoint id.").Error()), nil
	}

	if err := session.Debug.ResetCounter(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]interface{}{
		"breakpointId": id,
		"status":       "counter reset",
	})
}

// Execution Control Handlers

func (s *Server) handlePause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := session.Debug.Pause(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]interface{}{"status": "pause requested"})
}

func (s *Server) handleResume(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := session.Debug.Resume(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]interface{}{"status": "resumed"})
}

func (s *Server) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	stepType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("type", "Specify 'over', 'into', or 'out'.").Error()), nil
	}

	switch stepType {
	case "over":
		err = session.Debug.StepOver(ctx)
	case "into":
		err = session.Debug.StepInto(ctx)
	case "out":
		err = session.Debug.StepOut(ctx)
	default:
		return mcp.NewToolResultError(errors.InvalidParameter("type", stepType, "'over', 'into', or 'out'").Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]interface{}{"status": "stepped " + stepType})
}

// Inspection Handlers

func (s *Server) handleGetCallStack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paused, err := session.Debug.GetCallStack(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(paused)
}

func (s *Server) handleGetVariables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	frameID := ""
	if f, err := request.RequireString("frameId"); err == nil {
		frameID = f
	}
	nameFilter := ""
	if f, err := request.RequireString("nameFilter"); err == nil {
		nameFilter = f
	}
	includeGlobal := request.GetBool("includeGlobalScope", false)
	expand := request.GetBool("expand", false)
	maxDepth := 2
	if d, err := request.RequireFloat("maxDepth"); err == nil {
		maxDepth = int(d)
	}

	vars, err := session.Debug.GetVariables(ctx, frameID, includeGlobal, nameFilter, expand, maxDepth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]interface{}{
		"variables": vars,
	})
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	expression, err := request.RequireString("expression")
	if err != nil {
		return mcp.NewToolResultError(errors.MissingParameter("expression", "Specify the expression to evaluate.").Error()), nil
	}

	frameID := ""
	if f, err := request.RequireString("frameId"); err == nil {
		frameID = f
	}

	result, err := session.Debug.EvaluateExpression(ctx, expression, frameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleReadSource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.resolveSession(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	file := ""
	if f, err := request.RequireString("file"); err == nil {
		file = f
	}
	scriptID := ""
	if id, err := request.RequireString("scriptId"); err == nil {
		scriptID = id
	}
	if file == "" && scriptID == "" {
		return mcp.NewToolResultError(errors.MissingParameter("file", "Pass either a file path or a scriptId.").Error()), nil
	}

	startLine := 0
	if l, err := request.RequireFloat("startLine"); err == nil {
		startLine = int(l)
	}
	endLine := 0
	if l, err := request.RequireFloat("endLine"); err == nil {
		endLine = int(l)
	}

	src, err := session.Debug.ReadSource(ctx, file, scriptID, startLine, endLine)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]interface{}{
		"source": src,
	})
}
