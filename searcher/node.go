package searcher

import (
	"math"

	"golang.org/x/exp/rand"

	"pickomino/game"
)

// Node is a vertex of the search tree. The driver owns the tree top-down
// and discards it wholesale after one evaluation; parent pointers exist
// only so backpropagation can walk back to the root.
type Node interface {
	// SelectOrExpand descends one level. selected is true when an
	// existing child was chosen and the walk should continue; false when
	// a new child was created or the node is terminal (child == the node
	// itself), which ends the walk at the rollout leaf.
	SelectOrExpand(rng *rand.Rand) (child Node, selected bool, err error)
	// Backup folds one rollout result into the node's statistics and
	// returns the parent, nil at the root.
	Backup(score float64) Node
	State() game.GameState
	Visits() int
	ExpectedValue() float64
	score(c2LnN float64) float64
}

// config is shared by every node of one tree.
type config struct {
	c2          float64 // exploration constant squared
	chanceNodes bool
}

// decision wraps one reachable state. Children are created lazily, one per
// legal action, in the stable order LegalActions returns; the expansion
// cursor is simply len(children).
type decision struct {
	cfg      *config
	parent   Node
	state    game.GameState
	actions  []game.Action
	children []Node // children[i] was created by actions[i]
	rewards  float64
	visits   int
}

func newDecision(cfg *config, parent Node, state game.GameState) *decision {
	return &decision{
		cfg:     cfg,
		parent:  parent,
		state:   state,
		actions: state.LegalActions(),
	}
}

func (d *decision) SelectOrExpand(rng *rand.Rand) (Node, bool, error) {
	if len(d.actions) == 0 { // Terminal node
		return d, false, nil
	}

	if len(d.children) < len(d.actions) { // Expandable node
		return d.addChild(rng)
	}

	// Fully expanded node
	return d.children[d.pickChild()], true, nil
}

// addChild expands the next untried action. A stochastic action samples its
// dice once here and the child state stays fixed for the node's lifetime,
// unless chance nodes are enabled, in which case the outcome distribution
// is modeled explicitly and resolved on the way down.
func (d *decision) addChild(rng *rand.Rand) (Node, bool, error) {
	action := d.actions[len(d.children)]

	if d.cfg.chanceNodes && action.IsStochastic() {
		child := newChance(d.cfg, d, d.state)
		d.children = append(d.children, child)
		return child, true, nil
	}

	state, err := d.state.Apply(action, rng)
	if err != nil {
		return nil, false, err
	}
	child := newDecision(d.cfg, d, state)
	d.children = append(d.children, child)
	return child, false, nil
}

// pickChild returns the index of the UCB1-maximal child. Ties keep the
// first child in action order; an unvisited child wins outright.
func (d *decision) pickChild() int {
	normalizer := d.cfg.c2 * math.Log(float64(d.visits))

	maxIndex := 0
	maxScore := math.Inf(-1)
	for i, child := range d.children {
		s := child.score(normalizer)
		if math.IsInf(s, 1) {
			return i
		}
		if s > maxScore {
			maxScore = s
			maxIndex = i
		}
	}
	return maxIndex
}

func (d *decision) Backup(score float64) Node {
	d.rewards += score
	d.visits++
	return d.parent
}

func (d *decision) State() game.GameState {
	return d.state
}

func (d *decision) Visits() int {
	return d.visits
}

func (d *decision) ExpectedValue() float64 {
	if d.visits == 0 {
		return 0
	}
	return d.rewards / float64(d.visits)
}

func (d *decision) score(c2LnN float64) float64 {
	return ucb1(d.rewards, d.visits, c2LnN)
}
