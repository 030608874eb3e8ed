package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/inspectd/cdp-mcp/internal/config"
	"github.com/inspectd/cdp-mcp/internal/mcp"
	"github.com/inspectd/cdp-mcp/internal/version"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	help := flag.Bool("help", false, "Show help and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("cdp-mcp version %s\n", version.Version)
		os.Exit(0)
	}

	if *help {
		printHelp()
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	server := mcp.NewServer(cfg)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Println("Shutting down...")
		server.Close()
		os.Exit(0)
	}()

	log.Println("CDP-MCP server starting...")
	if err := server.ServeStdio(); err != nil {
		server.Close()
		log.Fatalf("Server error: %v", err)
	}
	server.Close()
}

func printHelp() {
	fmt.Println(`CDP-MCP: Chrome DevTools Protocol MCP Server

A Model Context Protocol (MCP) server that attaches to browser tabs and
script runtimes over the Chrome DevTools Protocol, enabling AI agents to
set breakpoints and logpoints, control execution, and inspect live state.

USAGE:
    cdp-mcp [OPTIONS]

OPTIONS:
    -config <path>     Path to configuration file (JSON)
    -version           Show version and exit
    -help              Show this help message

SUPPORTED TARGETS:
    - Chrome/Chromium tabs (start with --remote-debugging-port=9222)
    - Node.js (start with --inspect, default port 9229)
    - Deno (--inspect) and Bun (--inspect)

CONFIGURATION:
    Create a JSON configuration file to customize behavior:

    {
        "maxSessions": 10,
        "reapIntervalSeconds": 120,
        "reapThresholdSeconds": 600,
        "defaultExecutionCeiling": 10,
        "logRingSize": 20,
        "validationTimeoutSeconds": 3,
        "searchRadiusLines": 2,
        "searchCandidateTimeoutSeconds": 2,
        "commandTimeoutSeconds": 10
    }

MCP INTEGRATION:
    Add to your MCP client configuration:

    {
        "mcpServers": {
            "cdp-mcp": {
                "command": "cdp-mcp"
            }
        }
    }

TOOLS:
    Session Management:
        attach                  Attach to a browser tab or script runtime
        list_sessions           List active sessions
        select_session          Make a session the active default
        close_session           Close a session

    Breakpoints:
        set_breakpoint          Place a breakpoint (optionally conditional)
        set_logpoint            Place a logpoint with an execution ceiling
        remove_breakpoint       Remove a breakpoint or logpoint
        list_breakpoints        List placed breakpoints
        reset_logpoint_counter  Re-arm a logpoint after a limit breach

    Execution Control:
        pause                   Pause at the next statement
        resume                  Resume execution
        step                    Step over/into/out

    Inspection:
        get_call_stack          Get the paused call stack
        get_variables           List variables in a frame's scopes
        evaluate                Evaluate an expression in a frame
        read_source             Read a loaded script's source text`)
}
