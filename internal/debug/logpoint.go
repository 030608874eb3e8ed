package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// counterStore is the property on the debuggee's global object that holds
// the per-logpoint hit counters, keyed by "url:line". The injected
// condition below is the only writer of these counters; the controller
// side keeps a read-only mirror reconciled from observed log lines.
const counterStore = "__cdpMcpLogpointCounters"

// logMarkerPrefix tags every logpoint-emitted console line so the
// execution-limit tracker can attribute it to its logpoint.
const logMarkerPrefix = "[logpoint:"

// CounterKey builds the debuggee-side counter key for a resolved runtime
// location (script URL plus 0-based line).
func CounterKey(url string, line int) string {
	return fmt.Sprintf("%s:%d", url, line)
}

// ParseTemplate extracts the expressions from a logpoint message template.
// Text inside {...} is an opaque expression handed to the runtime; nesting
// one level of braces (object literals) is supported.
func ParseTemplate(template string) []string {
	var exprs []string
	depth := 0
	start := 0
	for i, r := range template {
		switch r {
		case '{':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					expr := strings.TrimSpace(template[start:i])
					if expr != "" {
						exprs = append(exprs, expr)
					}
				}
			}
		}
	}
	return exprs
}

// buildMessageExpression turns a template into a JavaScript expression
// producing the formatted message: literal segments become string
// literals, {expr} segments are evaluated and coerced via string
// concatenation.
func buildMessageExpression(template string) string {
	var parts []string
	depth := 0
	litStart := 0
	exprStart := 0
	for i, r := range template {
		switch r {
		case '{':
			if depth == 0 {
				if i > litStart {
					parts = append(parts, jsQuote(template[litStart:i]))
				}
				exprStart = i + 1
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					expr := strings.TrimSpace(template[exprStart:i])
					if expr != "" {
						parts = append(parts, "("+expr+")")
					}
					litStart = i + 1
				}
			}
		}
	}
	if litStart < len(template) {
		parts = append(parts, jsQuote(template[litStart:]))
	}
	if len(parts) == 0 {
		return `""`
	}
	return strings.Join(parts, " + ")
}

// BuildLogCondition generates the breakpoint condition injected for a
// logpoint. It must be a single atomic evaluation from the runtime's
// perspective: check-and-increment the debuggee-side counter, log the
// formatted message with the attribution marker, and decide whether to
// pause. It evaluates truthy (pause) only once the counter passes the
// ceiling.
func BuildLogCondition(key, template string, ceiling int) string {
	return fmt.Sprintf(
		"(() => { const __s = (globalThis.%s = globalThis.%s || {}); "+
			"const __n = (__s[%s] = (__s[%s] || 0) + 1); "+
			"console.log(%s + %s + \"] \" + (%s)); "+
			"return __n > %d; })()",
		counterStore, counterStore,
		jsQuote(key), jsQuote(key),
		jsQuote(logMarkerPrefix), jsQuote(key),
		buildMessageExpression(template),
		ceiling,
	)
}

// BuildResetExpression generates the expression that zeroes the
// debuggee-side counter for one logpoint key.
func BuildResetExpression(key string) string {
	return fmt.Sprintf(
		"(() => { const __s = (globalThis.%s = globalThis.%s || {}); __s[%s] = 0; return 0; })()",
		counterStore, counterStore, jsQuote(key),
	)
}

// ParseLogLine splits a console line emitted by an injected logpoint
// condition into its counter key and message. ok is false for unrelated
// console output.
func ParseLogLine(text string) (key, message string, ok bool) {
	if !strings.HasPrefix(text, logMarkerPrefix) {
		return "", "", false
	}
	rest := text[len(logMarkerPrefix):]
	idx := strings.Index(rest, "] ")
	if idx < 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+2:], true
}

// jsQuote renders s as a JavaScript string literal. Go's double-quoted
// escaping is a compatible subset for the characters that matter here.
func jsQuote(s string) string {
	return strconv.Quote(s)
}
