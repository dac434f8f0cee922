package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"pickomino/game"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func testConfig() *config {
	return &config{c2: DefaultExploration * DefaultExploration}
}

func TestDecisionSelectOrExpand(t *testing.T) {
	t.Run("terminal node returns itself", func(t *testing.T) {
		state := game.NewState([]int{5}, nil, nil)
		terminal, err := state.Apply(game.Stop(), nil)
		require.NoError(t, err)
		node := newDecision(testConfig(), nil, terminal)

		child, selected, err := node.SelectOrExpand(testRNG(1))

		require.NoError(t, err)
		require.Same(t, node, child.(*decision), "Terminal node is its own rollout leaf")
		require.False(t, selected)
	})

	t.Run("expansion follows the stable action order", func(t *testing.T) {
		state := game.NewState([]int{1, 2}, nil, nil)
		node := newDecision(testConfig(), nil, state)
		require.Equal(t, []game.Action{game.Roll(), game.Stop()}, node.actions)

		first, selected, err := node.SelectOrExpand(testRNG(1))
		require.NoError(t, err)
		require.False(t, selected, "Expansion ends the walk")

		second, selected, err := node.SelectOrExpand(testRNG(2))
		require.NoError(t, err)
		require.False(t, selected)

		require.Len(t, node.children, 2)
		require.Same(t, first.(*decision), node.children[0].(*decision))
		require.Same(t, second.(*decision), node.children[1].(*decision))
		require.True(t, second.State().IsTerminal(), "Second action in order is stop")
	})

	t.Run("frozen roll outcome never changes", func(t *testing.T) {
		state := game.NewState(nil, nil, nil)
		node := newDecision(testConfig(), nil, state)

		child, _, err := node.SelectOrExpand(testRNG(3))
		require.NoError(t, err)
		frozen := child.State().Throw()

		// Later passes select the same child with the same dice.
		node.Backup(10)
		child.Backup(10)
		again, selected, err := node.SelectOrExpand(testRNG(99))
		require.NoError(t, err)
		require.True(t, selected)
		require.Same(t, child.(*decision), again.(*decision))
		require.Equal(t, frozen, again.State().Throw(), "The sampled outcome is fixed for the node's lifetime")
	})

	t.Run("fully expanded node selects the max UCB child", func(t *testing.T) {
		state := game.NewState([]int{1, 2}, nil, nil)
		node := newDecision(testConfig(), nil, state)
		node.children = []Node{
			&decision{cfg: node.cfg, parent: node, rewards: 20, visits: 10},
			&decision{cfg: node.cfg, parent: node, rewards: 90, visits: 10},
		}
		node.visits = 20

		child, selected, err := node.SelectOrExpand(testRNG(1))

		require.NoError(t, err)
		require.True(t, selected)
		require.Same(t, node.children[1].(*decision), child.(*decision),
			"Exploitation dominates at equal visit counts")
	})

	t.Run("unvisited child is selected before any visited sibling", func(t *testing.T) {
		state := game.NewState([]int{1, 2}, nil, nil)
		node := newDecision(testConfig(), nil, state)
		node.children = []Node{
			&decision{cfg: node.cfg, parent: node, rewards: 1000, visits: 50},
			&decision{cfg: node.cfg, parent: node},
		}
		node.visits = 50

		child, selected, err := node.SelectOrExpand(testRNG(1))

		require.NoError(t, err)
		require.True(t, selected)
		require.Same(t, node.children[1].(*decision), child.(*decision),
			"Zero visits scores +Inf")
	})

	t.Run("ties break toward the first action in order", func(t *testing.T) {
		state := game.NewState([]int{1, 2}, nil, nil)
		node := newDecision(testConfig(), nil, state)
		node.children = []Node{
			&decision{cfg: node.cfg, parent: node, rewards: 30, visits: 10},
			&decision{cfg: node.cfg, parent: node, rewards: 30, visits: 10},
		}
		node.visits = 20

		child, _, err := node.SelectOrExpand(testRNG(1))

		require.NoError(t, err)
		require.Same(t, node.children[0].(*decision), child.(*decision))
	})
}

func TestBackup(t *testing.T) {
	t.Run("statistics are exact running sums along the path", func(t *testing.T) {
		cfg := testConfig()
		root := newDecision(cfg, nil, game.NewState([]int{1}, nil, nil))
		mid := newDecision(cfg, root, game.NewState([]int{1, 2}, nil, nil))
		leaf := newDecision(cfg, mid, game.NewState([]int{1, 2, 3}, nil, nil))

		backup(leaf, 12)
		backup(leaf, 0)
		backup(mid, 7)

		require.Equal(t, 3, root.visits, "Every backup reaches the root")
		require.Equal(t, 19.0, root.rewards)
		require.Equal(t, 3, mid.visits)
		require.Equal(t, 19.0, mid.rewards)
		require.Equal(t, 2, leaf.visits, "Only its own backups touch the leaf")
		require.Equal(t, 12.0, leaf.rewards)
		require.Equal(t, 6.0, leaf.ExpectedValue(), "Expected value is a plain running average")
	})
}

func TestUCB1(t *testing.T) {
	require.True(t, math.IsInf(ucb1(0, 0, 1), 1), "Unvisited scores +Inf")

	norm := 2.0 * math.Log(10)
	got := ucb1(30, 10, norm)
	want := 3.0 + math.Sqrt(norm/10)
	require.InDelta(t, want, got, 1e-12)
}
