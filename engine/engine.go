// Package engine is the evaluation boundary of the advisor: it validates
// incoming requests, seeds the game position, and drives the search with
// the configured execution mode.
package engine

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"pickomino/game"
	"pickomino/searcher"
)

var (
	// ErrInvalidInput reports a malformed or rule-violating request,
	// rejected before any search starts.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEngineUnavailable reports a worker pool that cannot be started.
	ErrEngineUnavailable = errors.New("engine unavailable")
)

// Request is one evaluation request: the saved hand, an optional current
// throw to seed a mid-turn position, and the simulation budget.
type Request struct {
	Hand        []int `json:"hand"`
	DiceThrow   []int `json:"dice_throw,omitempty"`
	Simulations int   `json:"num_simulations"`
}

// Config is the engine's tuning surface. The zero value of any field falls
// back to a sane default, so Engine{} semantics work with no configuration.
type Config struct {
	Exploration    float64
	Workers        int
	BatchSize      int
	SampleInterval int
	ChanceNodes    bool
	Rules          game.Rules
	Seed           uint64 // fixed random sequence when non-zero, for reproducible runs
}

func DefaultConfig() Config {
	return Config{
		Exploration:    searcher.DefaultExploration,
		Workers:        runtime.NumCPU(),
		BatchSize:      searcher.DefaultBatchSize,
		SampleInterval: searcher.DefaultSampleInterval,
		Rules:          game.NewStandardRules(),
	}
}

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	defaults := DefaultConfig()
	if cfg.Exploration <= 0 {
		cfg.Exploration = defaults.Exploration
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = defaults.SampleInterval
	}
	if cfg.Rules == nil {
		cfg.Rules = defaults.Rules
	}
	return &Engine{cfg: cfg}
}

// Evaluate runs one search for the requested position and reports the
// per-action statistics of the root. Sequential when one worker is
// configured, batched parallel rollouts otherwise.
func (e *Engine) Evaluate(req Request) ([]searcher.ActionResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	state := game.NewState(req.Hand, req.DiceThrow, e.cfg.Rules)

	options := []searcher.Option{
		searcher.WithExploration(e.cfg.Exploration),
		searcher.WithSampleInterval(e.cfg.SampleInterval),
		searcher.WithBatchSize(e.cfg.BatchSize),
		searcher.WithMetrics(),
	}
	if e.cfg.ChanceNodes {
		options = append(options, searcher.WithChanceNodes())
	}
	if e.cfg.Seed != 0 {
		options = append(options, searcher.WithSeed(e.cfg.Seed))
	}
	mcts := searcher.New(e.cfg.Workers, options...)

	var (
		results []searcher.ActionResult
		metric  searcher.SearchMetric
		err     error
	)
	switch {
	case e.cfg.Workers == 1:
		results, metric, err = mcts.Run(state, req.Simulations)
	case e.cfg.Workers > 1:
		results, metric, err = mcts.RunParallel(state, req.Simulations)
	default:
		return nil, errors.Wrapf(ErrEngineUnavailable, "%d workers configured", e.cfg.Workers)
	}
	if err != nil {
		if errors.Is(err, searcher.ErrPoolUnavailable) {
			return nil, errors.Wrap(ErrEngineUnavailable, err.Error())
		}
		return nil, err
	}

	log.Info().
		Int("simulations", metric.Simulations).
		Dur("duration", metric.Duration).
		Int("workerRetries", metric.WorkerRetries).
		Int("rootActions", len(results)).
		Msg("evaluation complete")
	return results, nil
}

func validate(req Request) error {
	if req.Simulations < 1 {
		return errors.Wrapf(ErrInvalidInput, "num_simulations must be positive, got %d", req.Simulations)
	}
	if total := len(req.Hand) + len(req.DiceThrow); total > game.NumDice {
		return errors.Wrapf(ErrInvalidInput, "hand and throw hold %d dice, the game has %d", total, game.NumDice)
	}
	for _, face := range req.Hand {
		if !game.ValidFace(face) {
			return errors.Wrapf(ErrInvalidInput, "hand contains invalid face %d", face)
		}
	}
	for _, face := range req.DiceThrow {
		if !game.ValidFace(face) {
			return errors.Wrapf(ErrInvalidInput, "throw contains invalid face %d", face)
		}
	}
	return nil
}
