package searcher

import "math"

// Hyperparameter defaults for the search.

// DefaultExploration is the UCB1 exploration constant C. Scores are banked
// points rather than win/loss, so callers may scale it up for stronger
// exploration on wide positions.
const DefaultExploration = math.Sqrt2

// DefaultSampleInterval is how many simulations pass between convergence
// snapshots of the root children.
const DefaultSampleInterval = 100

// DefaultBatchSize bounds how many rollouts are in flight per batch in the
// parallel executor.
const DefaultBatchSize = 64

// ucb1 scores a child from its total rewards, its visit count, and the
// parent-level normalizer c^2 * ln(N). An unvisited child scores +Inf so it
// is always tried before any visited sibling.
func ucb1(rewards float64, visits int, c2LnN float64) float64 {
	if visits == 0 {
		return math.Inf(1)
	}
	return rewards/float64(visits) + math.Sqrt(c2LnN/float64(visits))
}
