package game

import "fmt"

// ActionKind tags the variants of Action.
type ActionKind int

const (
	// RollAction rolls the remaining dice into the throw.
	RollAction ActionKind = iota
	// SaveAction moves every die of one face from the throw to the hand.
	SaveAction
	// StopAction ends the turn and banks the hand.
	StopAction
)

// Action is one legal move at a decision point. Face is meaningful only for
// SaveAction.
type Action struct {
	Kind ActionKind
	Face int
}

// Roll, Stop and Save construct the three action variants.
func Roll() Action         { return Action{Kind: RollAction} }
func Stop() Action         { return Action{Kind: StopAction} }
func Save(face int) Action { return Action{Kind: SaveAction, Face: face} }

// IsStochastic reports whether applying the action consumes randomness.
func (a Action) IsStochastic() bool {
	return a.Kind == RollAction
}

func (a Action) String() string {
	switch a.Kind {
	case RollAction:
		return "roll"
	case SaveAction:
		return fmt.Sprintf("save(%d)", a.Face)
	case StopAction:
		return "stop"
	default:
		return fmt.Sprintf("unknown(%d)", int(a.Kind))
	}
}
