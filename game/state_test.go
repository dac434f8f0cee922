package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestLegalActions(t *testing.T) {
	t.Run("fresh turn offers roll only", func(t *testing.T) {
		state := NewState(nil, nil, nil)

		got := state.LegalActions()

		require.Equal(t, []Action{Roll()}, got, "Empty hand cannot stop")
	})

	t.Run("non-empty hand between rolls offers roll and stop", func(t *testing.T) {
		state := NewState([]int{3}, nil, nil)

		got := state.LegalActions()

		require.Equal(t, []Action{Roll(), Stop()}, got)
	})

	t.Run("full hand offers stop only", func(t *testing.T) {
		state := NewState([]int{1, 1, 2, 2, 3, 3, 4, 4}, nil, nil)

		got := state.LegalActions()

		require.Equal(t, []Action{Stop()}, got, "No dice left to roll")
	})

	t.Run("throw offers one save per distinct unsaved face", func(t *testing.T) {
		state := NewState([]int{2}, []int{1, 1, 2, 4, 4, 5, 6}, nil)

		got := state.LegalActions()

		require.Equal(t, []Action{Save(1), Save(4), Save(5), Save(6)}, got,
			"Face 2 is already in the hand and duplicates collapse")
	})

	t.Run("terminal state offers nothing", func(t *testing.T) {
		state := NewState([]int{5}, nil, nil)
		state, err := state.Apply(Stop(), nil)
		require.NoError(t, err)

		require.Empty(t, state.LegalActions())
	})
}

func TestApplyRoll(t *testing.T) {
	t.Run("roll fills the throw with the remaining dice", func(t *testing.T) {
		state := NewState([]int{2, 2, 6}, nil, nil)

		next, err := state.Apply(Roll(), newRand(1))

		require.NoError(t, err)
		if !next.IsTerminal() {
			require.Len(t, next.Throw(), NumDice-3, "Throw should hold 8 minus hand size dice")
			require.Equal(t, []int{2, 2, 6}, next.Hand(), "Hand should be untouched")
		}
	})

	t.Run("roll with every face saved always busts", func(t *testing.T) {
		state := NewState([]int{1, 2, 3, 4, 5, 6}, nil, nil)

		for seed := uint64(0); seed < 50; seed++ {
			next, err := state.Apply(Roll(), newRand(seed))

			require.NoError(t, err)
			require.True(t, next.IsTerminal(), "No rolled face can be new")
			require.Equal(t, 0.0, next.Score(), "Bust banks nothing")
			require.Empty(t, next.LegalActions())
		}
	})

	t.Run("roll on a pending throw is rejected", func(t *testing.T) {
		state := NewState(nil, []int{1, 2, 3, 4, 5, 6, 6, 6}, nil)

		_, err := state.Apply(Roll(), newRand(1))

		require.ErrorIs(t, err, ErrInvalidAction)
	})
}

func TestApplySave(t *testing.T) {
	t.Run("save takes every die of the face and discards the rest", func(t *testing.T) {
		state := NewState([]int{2}, []int{1, 4, 4, 4, 5, 6, 6}, nil)

		next, err := state.Apply(Save(4), nil)

		require.NoError(t, err)
		require.Equal(t, []int{2, 4, 4, 4}, next.Hand())
		require.Empty(t, next.Throw(), "Unsaved dice are discarded until the next roll")
		require.False(t, next.IsTerminal())
	})

	t.Run("saving a face already in hand is rejected", func(t *testing.T) {
		state := NewState([]int{4}, []int{4, 4, 5}, nil)

		_, err := state.Apply(Save(4), nil)

		require.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("saving a face not in the throw is rejected", func(t *testing.T) {
		state := NewState(nil, []int{1, 1, 2, 2, 3, 3, 4, 4}, nil)

		_, err := state.Apply(Save(5), nil)

		require.ErrorIs(t, err, ErrInvalidAction)
	})
}

func TestApplyStop(t *testing.T) {
	t.Run("stop banks the hand sum with worms at their fixed value", func(t *testing.T) {
		state := NewState([]int{WormFace, WormFace, WormFace}, nil, nil)

		next, err := state.Apply(Stop(), nil)

		require.NoError(t, err)
		require.True(t, next.IsTerminal())
		require.Equal(t, 15.0, next.Score(), "Each worm counts 5, not 6")
		require.Empty(t, next.LegalActions(), "No action is legal after stopping")
	})

	t.Run("stop on an empty hand is rejected", func(t *testing.T) {
		state := NewState(nil, nil, nil)

		_, err := state.Apply(Stop(), nil)

		require.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("worm rules zero a wormless hand", func(t *testing.T) {
		state := NewState([]int{1, 3, 5}, nil, NewWormRules())

		next, err := state.Apply(Stop(), nil)

		require.NoError(t, err)
		require.Equal(t, 0.0, next.Score(), "Banking requires at least one worm")
	})

	t.Run("worm rules bank a hand holding a worm", func(t *testing.T) {
		state := NewState([]int{3, WormFace}, nil, NewWormRules())

		next, err := state.Apply(Stop(), nil)

		require.NoError(t, err)
		require.Equal(t, 8.0, next.Score())
	})
}

func TestSeededThrow(t *testing.T) {
	t.Run("seeded throw with no saveable face busts immediately", func(t *testing.T) {
		state := NewState([]int{1, 2, 3}, []int{1, 2, 2, 3, 3}, nil)

		require.True(t, state.IsTerminal())
		require.Equal(t, 0.0, state.Score())
	})

	t.Run("seeded throw with a saveable face is a live position", func(t *testing.T) {
		state := NewState([]int{1, 2}, []int{1, 2, 5}, nil)

		require.False(t, state.IsTerminal())
		require.Equal(t, []Action{Save(5)}, state.LegalActions())
	})
}

func TestApplyRollOutcome(t *testing.T) {
	t.Run("applies a specific roll deterministically", func(t *testing.T) {
		state := NewState([]int{5, 5, 5, 5, 5, 5}, nil, nil)

		next, err := state.ApplyRollOutcome([]int{6, 1})

		require.NoError(t, err)
		require.Equal(t, []int{1, 6}, next.Throw(), "Outcome is stored sorted")
	})

	t.Run("rejects a wrong dice count", func(t *testing.T) {
		state := NewState([]int{5}, nil, nil)

		_, err := state.ApplyRollOutcome([]int{1, 2})

		require.ErrorIs(t, err, ErrInvalidAction)
	})

	t.Run("rejects invalid faces", func(t *testing.T) {
		state := NewState([]int{1, 2, 3, 4, 5, 6}, nil, nil)

		_, err := state.ApplyRollOutcome([]int{7, 0})

		require.ErrorIs(t, err, ErrInvalidAction)
	})
}

func TestInvariants(t *testing.T) {
	t.Run("random play never violates the dice-count invariant", func(t *testing.T) {
		rng := newRand(42)

		for run := 0; run < 200; run++ {
			state := NewState(nil, nil, nil)
			for !state.IsTerminal() {
				actions := state.LegalActions()
				require.NotEmpty(t, actions, "Non-terminal state must offer an action")

				next, err := state.Apply(actions[rng.Intn(len(actions))], rng)
				require.NoError(t, err)
				require.LessOrEqual(t, len(next.Hand())+len(next.Throw()), NumDice)
				state = next
			}
			require.GreaterOrEqual(t, state.Score(), 0.0)
		}
	})
}

func TestHash(t *testing.T) {
	t.Run("distinguishes hand from throw placement", func(t *testing.T) {
		a := NewState([]int{1, 2}, []int{3, 5}, nil)
		b := NewState([]int{1, 2, 3}, []int{5}, nil)

		require.NotEqual(t, a.Hash(), b.Hash())
	})

	t.Run("bust and a live throw ending in face one hash differently", func(t *testing.T) {
		// With seven dice saved, one die remains. Rolling a 1 is a live
		// outcome while rolling any saved face busts; the two must stay
		// distinct children under a chance node.
		base := NewState([]int{2, 2, 2, 3, 3, 4, 4}, nil, nil)

		live, err := base.ApplyRollOutcome([]int{1})
		require.NoError(t, err)
		bust, err := base.ApplyRollOutcome([]int{2})
		require.NoError(t, err)

		require.False(t, live.IsTerminal())
		require.True(t, bust.IsTerminal())
		require.NotEqual(t, live.Hash(), bust.Hash())
	})

	t.Run("stopping changes the hash of an otherwise equal position", func(t *testing.T) {
		open := NewState([]int{5}, nil, nil)
		stopped, err := open.Apply(Stop(), nil)
		require.NoError(t, err)

		require.NotEqual(t, open.Hash(), stopped.Hash())
	})

	t.Run("equal positions hash equally", func(t *testing.T) {
		a := NewState([]int{2, 1}, []int{5, 3}, nil)
		b := NewState([]int{1, 2}, []int{3, 5}, nil)

		require.Equal(t, a.Hash(), b.Hash(), "Dice order within hand and throw is irrelevant")
	})
}
