package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/inspectd/cdp-mcp/pkg/types"
)

var httpClient = &http.Client{Timeout: 5 * time.Second}

// versionInfo is the payload of the DevTools /json/version endpoint.
type versionInfo struct {
	Browser              string `json:"Browser"`
	ProtocolVersion      string `json:"Protocol-Version"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// DetectKind asks the DevTools HTTP endpoint what kind of runtime is
// listening. Node reports a Browser string like "node.js/v20.11.0";
// Chromium reports "Chrome/121.0...".
func DetectKind(host string, port int) (types.RuntimeKind, error) {
	info, err := fetchVersion(host, port)
	if err != nil {
		return types.RuntimeKindUnknown, err
	}

	browser := strings.ToLower(info.Browser)
	switch {
	case strings.Contains(browser, "node"), strings.Contains(browser, "deno"), strings.Contains(browser, "bun"):
		return types.RuntimeKindScript, nil
	case browser != "":
		return types.RuntimeKindBrowser, nil
	default:
		return types.RuntimeKindUnknown, nil
	}
}

func fetchVersion(host string, port int) (*versionInfo, error) {
	resp, err := httpClient.Get(fmt.Sprintf("http://%s:%d/json/version", host, port))
	if err != nil {
		return nil, fmt.Errorf("error getting version info: %w", err)
	}
	defer resp.Body.Close()

	var info versionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("error decoding version info: %w", err)
	}
	return &info, nil
}

// ListTargets lists the debuggable targets exposed by the endpoint.
// Browser processes list one target per tab; script runtimes list one.
func ListTargets(host string, port int) ([]Target, error) {
	resp, err := httpClient.Get(fmt.Sprintf("http://%s:%d/json/list", host, port))
	if err != nil {
		return nil, fmt.Errorf("error getting debug targets: %w", err)
	}
	defer resp.Body.Close()

	var targets []Target
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("error decoding targets: %w", err)
	}
	return targets, nil
}

// OpenTab opens a new tab on a browser target process and returns it.
// This is the automation handle used when a second session attaches to a
// browser that already has one.
func OpenTab(host string, port int, url string) (*Target, error) {
	endpoint := fmt.Sprintf("http://%s:%d/json/new", host, port)
	if url != "" {
		endpoint += "?" + url
	}

	// Chrome 111+ requires PUT for /json/new
	req, err := http.NewRequest(http.MethodPut, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error opening new tab: %w", err)
	}
	defer resp.Body.Close()

	var target Target
	if err := json.NewDecoder(resp.Body).Decode(&target); err != nil {
		return nil, fmt.Errorf("error decoding new tab: %w", err)
	}
	return &target, nil
}

// Connect performs the full handshake against host:port: detect the
// runtime kind, pick the debuggable target (pageIndex selects among
// browser tabs), dial its WebSocket debugger URL, and enable the
// Debugger/Runtime domains.
func Connect(ctx context.Context, host string, port, pageIndex int) (*Client, error) {
	kind, err := DetectKind(host, port)
	if err != nil {
		return nil, err
	}

	targets, err := ListTargets(host, port)
	if err != nil {
		return nil, err
	}

	wsURL := ""
	if kind == types.RuntimeKindBrowser {
		pages := make([]Target, 0, len(targets))
		for _, t := range targets {
			if t.Type == "page" {
				pages = append(pages, t)
			}
		}
		switch {
		case pageIndex >= 0 && pageIndex < len(pages):
			wsURL = pages[pageIndex].WebSocketDebuggerURL
		case pageIndex == len(pages):
			// One past the end means "give me a fresh tab" on this
			// browser process.
			tab, err := OpenTab(host, port, "")
			if err != nil {
				return nil, err
			}
			wsURL = tab.WebSocketDebuggerURL
		default:
			return nil, fmt.Errorf("page index %d out of range (have %d pages)", pageIndex, len(pages))
		}
	} else {
		for _, t := range targets {
			if t.WebSocketDebuggerURL != "" {
				wsURL = t.WebSocketDebuggerURL
				break
			}
		}
	}
	if wsURL == "" {
		return nil, fmt.Errorf("no WebSocket debugger URL exposed at %s:%d", host, port)
	}

	transport, err := DialTransport(ctx, wsURL)
	if err != nil {
		return nil, err
	}

	client := NewClient(transport, kind)
	if err := client.EnableDomains(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
