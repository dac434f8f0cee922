package searcher

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"pickomino/game"
)

// Sample is one convergence data point for a root action: the running
// expected value after a given number of completed simulations.
type Sample struct {
	Simulations   int
	ExpectedValue float64
}

// ActionResult reports one root action after a search: its label, running
// average, visit share, and append-only convergence series.
type ActionResult struct {
	Action        game.Action
	ExpectedValue float64
	Visits        int
	Convergence   []Sample
}

// ErrBudget reports a non-positive simulation budget.
var ErrBudget = errors.New("simulation budget must be positive")

type Option func(m *MCTS)

// MCTS evaluates the legal moves of a position by Monte Carlo tree search.
// One value can run many searches; each search builds and discards its own
// tree.
type MCTS struct {
	workers   int
	batchSize int
	interval  int
	c2        float64
	chance    bool
	seed      uint64
	seeded    bool
	metrics   Collector
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.c2 = c * c
		}
	}
}

func WithSampleInterval(interval int) Option {
	return func(m *MCTS) {
		if interval > 0 {
			m.interval = interval
		}
	}
}

func WithBatchSize(size int) Option {
	return func(m *MCTS) {
		if size > 0 {
			m.batchSize = size
		}
	}
}

// WithChanceNodes switches roll actions from the default frozen-outcome
// behavior to explicit chance nodes that resample dice on every visit.
func WithChanceNodes() Option {
	return func(m *MCTS) {
		m.chance = true
	}
}

// WithSeed fixes the random sequence, making runs reproducible.
func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
		m.seeded = true
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = NewCollector()
	}
}

func New(workers int, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		workers:   workers,
		batchSize: DefaultBatchSize,
		interval:  DefaultSampleInterval,
		c2:        DefaultExploration * DefaultExploration,
		metrics:   NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Run performs the sequential select-expand-rollout-backup loop for a fixed
// simulation budget and reports per-action statistics for the root.
func (m *MCTS) Run(state game.GameState, simulations int) ([]ActionResult, SearchMetric, error) {
	if simulations < 1 {
		return nil, SearchMetric{}, errors.Wrapf(ErrBudget, "got %d", simulations)
	}

	rng := m.newRNG()
	cfg := &config{c2: m.c2, chanceNodes: m.chance}
	root := newDecision(cfg, nil, state)
	history := newHistory(root, m.interval)

	m.metrics.Start()
	for i := 1; i <= simulations; i++ {
		leaf, err := selectThenExpand(root, rng)
		if err != nil {
			return nil, SearchMetric{}, err
		}
		score, err := rollout(leaf.State(), rng.Uint64())
		if err != nil {
			return nil, SearchMetric{}, err
		}
		backup(leaf, score)
		m.metrics.AddSimulation()
		history.record(i)
	}

	return results(root, history), m.metrics.Complete(), nil
}

func (m *MCTS) newRNG() *rand.Rand {
	seed := m.seed
	if !m.seeded {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewSource(seed))
}

// selectThenExpand walks down from the root until it expands a new child or
// reaches a terminal node, and returns the rollout leaf.
func selectThenExpand(root Node, rng *rand.Rand) (Node, error) {
	parent := root
	child, selected, err := parent.SelectOrExpand(rng)
	for err == nil && selected && child != parent {
		parent = child
		child, selected, err = parent.SelectOrExpand(rng)
	}
	if err != nil {
		return nil, err
	}
	return child, nil
}

// rollout plays uniformly random legal actions from state to the end of the
// turn and returns the banked score. It works on private copies and its own
// seeded RNG only, which is what lets the parallel executor run it on
// workers without any locking.
func rollout(state game.GameState, seed uint64) (float64, error) {
	rng := rand.New(rand.NewSource(seed))
	for {
		actions := state.LegalActions()
		if len(actions) == 0 {
			return state.Score(), nil
		}
		next, err := state.Apply(actions[rng.Intn(len(actions))], rng)
		if err != nil {
			return 0, err
		}
		state = next
	}
}

// backup applies one rollout result along the exact path the walk came
// down, leaf to root. The whole path is updated or none of it is: callers
// only reach this with a completed rollout in hand.
func backup(leaf Node, score float64) {
	for node := leaf; node != nil; {
		node = node.Backup(score)
	}
}

// history snapshots each root child's running expected value at a fixed
// simulation interval.
type history struct {
	root     *decision
	interval int
	samples  [][]Sample // samples[i] belongs to root action i
}

func newHistory(root *decision, interval int) *history {
	return &history{
		root:     root,
		interval: interval,
		samples:  make([][]Sample, len(root.actions)),
	}
}

func (h *history) record(done int) {
	if h.interval <= 0 || done%h.interval != 0 {
		return
	}
	for i, child := range h.root.children {
		if child.Visits() == 0 {
			continue
		}
		h.samples[i] = append(h.samples[i], Sample{
			Simulations:   done,
			ExpectedValue: child.ExpectedValue(),
		})
	}
}

// results reports the root's expanded children in stable action order.
func results(root *decision, history *history) []ActionResult {
	out := make([]ActionResult, 0, len(root.children))
	for i, child := range root.children {
		out = append(out, ActionResult{
			Action:        root.actions[i],
			ExpectedValue: child.ExpectedValue(),
			Visits:        child.Visits(),
			Convergence:   history.samples[i],
		})
	}
	return out
}
