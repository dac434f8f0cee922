package searcher

import (
	"golang.org/x/exp/rand"

	"pickomino/game"
)

// chance resolves a roll action by modeling its outcome distribution: every
// visit samples the dice anew, and children are decision nodes keyed by the
// sampled outcome. This is the alternate mode to the default open-loop
// behavior, which freezes one sampled outcome per roll node.
type chance struct {
	cfg      *config
	parent   Node
	state    game.GameState // pre-roll state, throw empty
	children []*decision
	hashes   []uint64 // hashes[i] identifies children[i]'s outcome
	rewards  float64
	visits   int
}

func newChance(cfg *config, parent Node, state game.GameState) *chance {
	return &chance{
		cfg:    cfg,
		parent: parent,
		state:  state,
	}
}

func (c *chance) SelectOrExpand(rng *rand.Rand) (Node, bool, error) {
	rolled, err := c.state.Apply(game.Roll(), rng)
	if err != nil {
		return nil, false, err
	}

	// Select if the outcome was seen before, expand otherwise.
	hash := rolled.Hash()
	for i, h := range c.hashes {
		if h == hash {
			return c.children[i], true, nil
		}
	}

	child := newDecision(c.cfg, c, rolled)
	c.children = append(c.children, child)
	c.hashes = append(c.hashes, hash)
	return child, false, nil
}

func (c *chance) Backup(score float64) Node {
	c.rewards += score
	c.visits++
	return c.parent
}

func (c *chance) State() game.GameState {
	return c.state
}

func (c *chance) Visits() int {
	return c.visits
}

func (c *chance) ExpectedValue() float64 {
	if c.visits == 0 {
		return 0
	}
	return c.rewards / float64(c.visits)
}

func (c *chance) score(c2LnN float64) float64 {
	return ucb1(c.rewards, c.visits, c2LnN)
}
