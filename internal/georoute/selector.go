package georoute

import (
	"sort"

	"floodroute/internal/types"
)

// Selection is the outcome of filtering and ranking candidate routes against
// the active hazard set. When no candidate survives the filter, Best is nil
// and Alternatives is empty; Hazards always carries the annotated hazard list
// so callers can reason about the exclusion.
type Selection struct {
	Best         *types.ScoredRoute
	Alternatives []types.ScoredRoute
	Hazards      []types.Hazard
}

// SelectBest partitions candidates into safe and unsafe routes, discards the
// unsafe ones, and ranks the safe ones by ascending duration. The sort is
// stable: candidates with equal durations keep their original order. The
// first safe route is the best; the rest become alternatives.
func SelectBest(candidates []types.RouteCandidate, hazards []types.Hazard) Selection {
	safe := make([]types.ScoredRoute, 0, len(candidates))
	for _, c := range candidates {
		if IsUnsafe(c, hazards) {
			continue
		}
		safe = append(safe, types.ScoredRoute{
			RouteCandidate: c,
			MinDist:        MinDistanceM(c, hazards),
		})
	}

	if len(safe) == 0 {
		return Selection{Hazards: hazards}
	}

	sort.SliceStable(safe, func(i, j int) bool {
		return safe[i].DurationS < safe[j].DurationS
	})

	return Selection{
		Best:         &safe[0],
		Alternatives: safe[1:],
		Hazards:      hazards,
	}
}
