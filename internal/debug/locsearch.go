package debug

import (
	"context"
	"log"
	"sort"

	"github.com/inspectd/cdp-mcp/pkg/types"
)

// searchLocations probes the lines around a failed placement for one
// where the expressions resolve. Each candidate gets a temporary
// breakpoint, a short bounded wait for the code path to be hit, and one
// evaluation per expression in the top frame; the candidate's score is
// the fraction of expressions that succeeded. Candidates the runtime
// snaps to the same line are deduplicated; everything is cleaned up
// before returning.
func (s *Session) searchLocations(ctx context.Context, url string, line0 int, exprs []string) []types.LocationCandidate {
	if len(exprs) == 0 || s.cfg.SearchRadius < 1 {
		return nil
	}

	seen := make(map[int]bool)
	var candidates []types.LocationCandidate

	for delta := -s.cfg.SearchRadius; delta <= s.cfg.SearchRadius; delta++ {
		if delta == 0 {
			continue
		}
		cand := line0 + delta
		if cand < 0 {
			continue
		}

		tempID, locs, err := s.client.SetBreakpointByURL(ctx, url, cand, 0, "")
		if err != nil {
			continue
		}
		if len(locs) == 0 || seen[locs[0].LineNumber] {
			s.removeTempBreakpoint(ctx, tempID)
			continue
		}
		seen[locs[0].LineNumber] = true

		// Per-candidate timeout: a dead-end line must not stall the
		// whole search.
		ev, err := s.client.WaitForPaused(s.cfg.SearchTimeout())
		if err != nil || len(ev.CallFrames) == 0 {
			s.removeTempBreakpoint(ctx, tempID)
			continue
		}

		failures := make(map[string]string)
		succeeded := 0
		for _, expr := range exprs {
			if _, evalErr := s.client.EvaluateOnCallFrame(ctx, ev.CallFrames[0].CallFrameID, expr); evalErr != nil {
				failures[expr] = evalErr.Error()
			} else {
				succeeded++
			}
		}

		if err := s.client.Resume(ctx); err != nil {
			log.Printf("Warning: failed to resume after probing line %d: %v", cand+1, err)
		}
		s.removeTempBreakpoint(ctx, tempID)

		candidate := types.LocationCandidate{
			Location: s.toOriginal(locs[0]),
			Score:    float64(succeeded) / float64(len(exprs)),
		}
		if len(failures) > 0 {
			candidate.Failures = failures
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Location.Line < candidates[j].Location.Line
	})

	const maxSuggestions = 3
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

func (s *Session) removeTempBreakpoint(ctx context.Context, id string) {
	if err := s.client.RemoveBreakpoint(ctx, id); err != nil {
		log.Printf("Warning: failed to remove temporary breakpoint %s: %v", id, err)
	}
}
