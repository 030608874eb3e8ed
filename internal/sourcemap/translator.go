// Package sourcemap defines the location-translation boundary between
// original source files and the files the runtime actually loaded.
//
// The real translator (source-map parsing for transpiled/bundled code)
// lives outside this repository; the debug session only calls through the
// Translator interface. IdentityTranslator is the default used when no
// mapping applies: requested coordinates pass through unchanged.
package sourcemap

import "github.com/inspectd/cdp-mcp/pkg/types"

// Translator maps a logical source position to a loaded-runtime position
// and back. Both directions return ok=false when no mapping exists for the
// given file, in which case callers use the location verbatim.
type Translator interface {
	ToRuntime(loc types.SourceLocation) (types.SourceLocation, bool)
	ToOriginal(loc types.SourceLocation) (types.SourceLocation, bool)
}

// IdentityTranslator passes locations through unchanged.
type IdentityTranslator struct{}

func (IdentityTranslator) ToRuntime(loc types.SourceLocation) (types.SourceLocation, bool) {
	return loc, false
}

func (IdentityTranslator) ToOriginal(loc types.SourceLocation) (types.SourceLocation, bool) {
	return loc, false
}
