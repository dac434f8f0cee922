package game

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

const (
	// NumDice is the total number of dice in a turn.
	NumDice = 8
	// MinFace and MaxFace bound the die faces.
	MinFace = 1
	MaxFace = 6
	// WormFace is the face drawn as a worm. It does not score at face value.
	WormFace = 6
)

// faceScores maps each face to its banked value. The worm scores 5, not 6.
var faceScores = [MaxFace + 1]int{
	1:        1,
	2:        2,
	3:        3,
	4:        4,
	5:        5,
	WormFace: 5,
}

// FaceScore returns the banked value of a single die face.
func FaceScore(face int) int {
	if !ValidFace(face) {
		return 0
	}
	return faceScores[face]
}

// ValidFace reports whether face is a real die face.
func ValidFace(face int) bool {
	return face >= MinFace && face <= MaxFace
}

// rollDice samples count faces uniformly at random and returns them sorted.
func rollDice(rng *rand.Rand, count int) []int {
	faces := make([]int, count)
	for i := range faces {
		faces[i] = MinFace + rng.Intn(MaxFace-MinFace+1)
	}
	sort.Ints(faces)
	return faces
}

// RollOutcome is one distinct sorted roll together with its probability.
type RollOutcome struct {
	Faces       []int
	Probability float64
}

// RollOutcomes enumerates every distinct sorted roll of the state's
// remaining dice with its multinomial probability. The search weights
// outcomes implicitly by sampling; this exact enumeration exists to verify
// that weighting and for position analysis outside the search.
func RollOutcomes(s GameState) []RollOutcome {
	count := NumDice - len(s.hand)
	if count <= 0 {
		return nil
	}

	total := math.Pow(float64(MaxFace-MinFace+1), float64(count))

	var outcomes []RollOutcome
	roll := make([]int, count)
	var walk func(pos, minFace int)
	walk = func(pos, minFace int) {
		if pos == count {
			faces := make([]int, count)
			copy(faces, roll)
			outcomes = append(outcomes, RollOutcome{
				Faces:       faces,
				Probability: float64(permutations(faces)) / total,
			})
			return
		}
		for f := minFace; f <= MaxFace; f++ {
			roll[pos] = f
			walk(pos+1, f)
		}
	}
	walk(0, MinFace)
	return outcomes
}

// permutations counts the distinct orderings of a sorted roll:
// n! / (n1! * n2! * ... * nk!) over the face multiplicities.
func permutations(faces []int) int {
	numerator := factorial(len(faces))
	run := 1
	for i := 1; i <= len(faces); i++ {
		if i < len(faces) && faces[i] == faces[i-1] {
			run++
			continue
		}
		numerator /= factorial(run)
		run = 1
	}
	return numerator
}

func factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}
