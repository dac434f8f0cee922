package game

// Rules decides whether a stopped hand banks its sum. The stop transition
// scores 0 when the hand is rejected, which is where future tile-matching
// rules plug in without touching the search.
type Rules interface {
	ValidHand(hand []int) bool
}

type standardRules struct{}

// NewStandardRules accepts every non-empty hand.
func NewStandardRules() Rules {
	return standardRules{}
}

func (standardRules) ValidHand(hand []int) bool {
	return len(hand) > 0
}

type wormRules struct{}

// NewWormRules requires at least one worm die in the hand to bank a score.
func NewWormRules() Rules {
	return wormRules{}
}

func (wormRules) ValidHand(hand []int) bool {
	for _, face := range hand {
		if face == WormFace {
			return true
		}
	}
	return false
}
