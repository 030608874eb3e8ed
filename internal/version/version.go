// Package version holds the build version string.
package version

// Version is the server version, overridable at build time via
// -ldflags "-X github.com/inspectd/cdp-mcp/internal/version.Version=...".
var Version = "0.1.0"
