package registry

import "strings"

// reservedRefs are normalized references that can never name a session;
// they are placeholder words callers use to mean "no reference". The
// check runs on the normalized form so case or whitespace variations
// cannot slip one through.
var reservedRefs = map[string]bool{
	"none":      true,
	"null":      true,
	"nil":       true,
	"unnamed":   true,
	"active":    true,
	"undefined": true,
}

// NormalizeRef is the single source of truth for reference identity:
// lower-case, trimmed, with internal whitespace runs collapsed to a
// single hyphen. Two references that normalize identically are the same
// identity for uniqueness purposes.
func NormalizeRef(ref string) string {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return strings.Join(strings.Fields(ref), "-")
}

// IsReservedRef reports whether a raw reference normalizes to a reserved
// placeholder.
func IsReservedRef(ref string) bool {
	return reservedRefs[NormalizeRef(ref)]
}
