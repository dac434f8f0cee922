package game

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// ErrInvalidAction reports an action applied to a state where it is not
// legal. A correct driver never triggers it; surfacing it means an engine
// bug, so callers must treat it as fatal rather than skip it.
var ErrInvalidAction = errors.New("action is not legal in this state")

// GameState is an immutable snapshot of one decision point in a turn:
// the saved hand, the dice currently on the table, and whether the turn has
// ended. Transitions return new values and never mutate the receiver.
type GameState struct {
	hand     []int
	throw    []int
	terminal bool
	score    float64
	rules    Rules
}

// NewState seeds a turn position from a saved hand and an optional current
// throw, both given as face values. A seeded throw that offers no saveable
// face busts immediately, same as a fresh roll would.
func NewState(hand, dieThrow []int, rules Rules) GameState {
	if rules == nil {
		rules = NewStandardRules()
	}

	s := GameState{
		hand:  append([]int(nil), hand...),
		rules: rules,
	}
	sort.Ints(s.hand)

	if len(dieThrow) == 0 {
		return s
	}
	faces := append([]int(nil), dieThrow...)
	sort.Ints(faces)
	return s.withThrow(faces)
}

// Hand returns a copy of the saved dice, sorted by face value.
func (s GameState) Hand() []int {
	return append([]int(nil), s.hand...)
}

// Throw returns a copy of the current throw, sorted by face value. It is
// empty between decisions.
func (s GameState) Throw() []int {
	return append([]int(nil), s.throw...)
}

// IsTerminal reports whether the turn has ended by stopping or busting.
func (s GameState) IsTerminal() bool {
	return s.terminal
}

// Score is the banked sum of the turn. Defined only for terminal states;
// a bust scores 0.
func (s GameState) Score() float64 {
	return s.score
}

// LegalActions enumerates the moves available at this state in a stable
// order: roll before stop, saves by ascending face. The order matters to
// the search, which expands actions and breaks selection ties by position.
func (s GameState) LegalActions() []Action {
	if s.terminal {
		return nil
	}

	if len(s.throw) == 0 {
		if len(s.hand) >= NumDice {
			return []Action{Stop()}
		}
		actions := []Action{Roll()}
		if len(s.hand) > 0 {
			actions = append(actions, Stop())
		}
		return actions
	}

	var actions []Action
	for i, face := range s.throw {
		if i > 0 && face == s.throw[i-1] {
			continue
		}
		if !s.inHand(face) {
			actions = append(actions, Save(face))
		}
	}
	return actions
}

// Apply plays one action and returns the successor state. Rolling consumes
// rng to populate the throw; saving and stopping are deterministic.
func (s GameState) Apply(action Action, rng *rand.Rand) (GameState, error) {
	if !s.isLegal(action) {
		return GameState{}, errors.Wrapf(ErrInvalidAction, "%s on hand=%v throw=%v", action, s.hand, s.throw)
	}

	switch action.Kind {
	case RollAction:
		return s.withThrow(rollDice(rng, NumDice-len(s.hand))), nil
	case SaveAction:
		return s.save(action.Face), nil
	case StopAction:
		return s.stop(), nil
	default:
		return GameState{}, errors.Wrapf(ErrInvalidAction, "unknown action kind %d", int(action.Kind))
	}
}

// ApplyRollOutcome applies a specific roll instead of sampling one,
// giving the chance-node search mode a deterministic transition per
// outcome.
func (s GameState) ApplyRollOutcome(faces []int) (GameState, error) {
	if s.terminal || len(s.throw) > 0 {
		return GameState{}, errors.Wrap(ErrInvalidAction, "roll outcome on a state that is not awaiting a roll")
	}
	if len(faces) != NumDice-len(s.hand) {
		return GameState{}, errors.Wrapf(ErrInvalidAction, "roll outcome has %d dice, want %d", len(faces), NumDice-len(s.hand))
	}
	for _, face := range faces {
		if !ValidFace(face) {
			return GameState{}, errors.Wrapf(ErrInvalidAction, "roll outcome contains invalid face %d", face)
		}
	}

	sorted := append([]int(nil), faces...)
	sort.Ints(sorted)
	return s.withThrow(sorted), nil
}

// Hash identifies the state by its hand, throw and terminal flag. Chance
// nodes use it to recognize previously expanded roll outcomes.
func (s GameState) Hash() uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf, v)
		h.Write(buf)
	}

	for _, face := range s.hand {
		write(uint64(face))
	}
	write(uint64(MaxFace) + 1) // separator outside the face range
	for _, face := range s.throw {
		write(uint64(face))
	}
	// Always encode the flag: a trailing bare 1 would be byte-identical
	// to a throw ending in face 1.
	if s.terminal {
		write(1)
	} else {
		write(0)
	}
	return h.Sum64()
}

// withThrow installs a freshly rolled (sorted) throw, busting the turn on
// the spot when no face can be saved. The bust is an automatic transition:
// there is no explicit action for it.
func (s GameState) withThrow(faces []int) GameState {
	next := s
	for _, face := range faces {
		if !s.inHand(face) {
			next.throw = faces
			return next
		}
	}
	next.throw = nil
	next.terminal = true
	next.score = 0
	return next
}

func (s GameState) save(face int) GameState {
	next := s
	next.hand = append([]int(nil), s.hand...)
	for _, f := range s.throw {
		if f == face {
			next.hand = append(next.hand, f)
		}
	}
	sort.Ints(next.hand)
	next.throw = nil
	return next
}

func (s GameState) stop() GameState {
	next := s
	next.throw = nil
	next.terminal = true
	if s.rules != nil && !s.rules.ValidHand(s.hand) {
		next.score = 0
		return next
	}
	sum := 0
	for _, face := range s.hand {
		sum += FaceScore(face)
	}
	next.score = float64(sum)
	return next
}

func (s GameState) isLegal(action Action) bool {
	for _, legal := range s.LegalActions() {
		if legal == action {
			return true
		}
	}
	return false
}

func (s GameState) inHand(face int) bool {
	for _, f := range s.hand {
		if f == face {
			return true
		}
	}
	return false
}
