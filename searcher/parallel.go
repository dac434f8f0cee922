package searcher

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"pickomino/game"
)

// ErrPoolUnavailable reports a worker pool that cannot be started at all.
// This is a configuration error, not a recoverable rollout failure.
var ErrPoolUnavailable = errors.New("worker pool unavailable")

type rolloutJob struct {
	index int
	state game.GameState
	seed  uint64
}

type rolloutResult struct {
	index int
	score float64
	err   error
}

// RunParallel runs the same search as Run with the rollout phase fanned out
// to a pool of workers. Selection, expansion and backpropagation stay
// strictly sequential on the single shared tree; workers receive only a
// state copy and a seed and return one score, so the tree needs no locks.
// Backpropagation for a batch is applied after every rollout of the batch
// has returned, in leaf-production order, which makes the final statistics
// independent of worker scheduling.
func (m *MCTS) RunParallel(state game.GameState, simulations int) ([]ActionResult, SearchMetric, error) {
	if simulations < 1 {
		return nil, SearchMetric{}, errors.Wrapf(ErrBudget, "got %d", simulations)
	}
	if m.workers < 1 {
		return nil, SearchMetric{}, errors.Wrapf(ErrPoolUnavailable, "%d workers", m.workers)
	}
	if m.batchSize < 1 {
		return nil, SearchMetric{}, errors.Wrapf(ErrPoolUnavailable, "batch size %d", m.batchSize)
	}

	tasks := make(chan rolloutJob)
	outcomes := make(chan rolloutResult, m.batchSize)
	var wg sync.WaitGroup
	for w := 0; w < m.workers; w++ {
		wg.Add(1)
		go rolloutWorker(tasks, outcomes, &wg)
	}
	// The pool is torn down on every exit path, including mid-run errors.
	defer func() {
		close(tasks)
		wg.Wait()
	}()

	rng := m.newRNG()
	cfg := &config{c2: m.c2, chanceNodes: m.chance}
	root := newDecision(cfg, nil, state)
	history := newHistory(root, m.interval)

	leaves := make([]Node, 0, m.batchSize)
	seeds := make([]uint64, 0, m.batchSize)
	scores := make([]float64, m.batchSize)

	m.metrics.Start()
	done := 0
	for done < simulations {
		batch := m.batchSize
		if remaining := simulations - done; remaining < batch {
			batch = remaining
		}

		// Selection and expansion, sequential on the shared tree.
		leaves = leaves[:0]
		seeds = seeds[:0]
		for j := 0; j < batch; j++ {
			leaf, err := selectThenExpand(root, rng)
			if err != nil {
				return nil, SearchMetric{}, err
			}
			seed := rng.Uint64()
			leaves = append(leaves, leaf)
			seeds = append(seeds, seed)
			tasks <- rolloutJob{index: j, state: leaf.State(), seed: seed}
		}

		// Collect the whole batch before touching the tree again.
		var failures error
		var failed []int
		for j := 0; j < batch; j++ {
			res := <-outcomes
			if res.err != nil {
				failures = multierror.Append(failures, res.err)
				failed = append(failed, res.index)
				continue
			}
			scores[res.index] = res.score
		}

		// A failed worker rollout is retried locally; the batch survives.
		for _, idx := range failed {
			m.metrics.AddRetry()
			score, err := rollout(leaves[idx].State(), seeds[idx])
			if err != nil {
				return nil, SearchMetric{}, err
			}
			scores[idx] = score
		}
		if failures != nil {
			log.Warn().Err(failures).Int("retries", len(failed)).
				Msg("recovered worker failures with local rollouts")
		}

		// Backpropagation in leaf-production order.
		for j := 0; j < batch; j++ {
			backup(leaves[j], scores[j])
			done++
			m.metrics.AddSimulation()
			history.record(done)
		}
	}

	return results(root, history), m.metrics.Complete(), nil
}

// rolloutWorker consumes leaf states and produces scalar scores. It holds
// no reference to the tree and mutates nothing visible outside itself.
func rolloutWorker(tasks <-chan rolloutJob, outcomes chan<- rolloutResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for job := range tasks {
		score, err := runWorkerRollout(job)
		outcomes <- rolloutResult{index: job.index, score: score, err: err}
	}
}

func runWorkerRollout(job rolloutJob) (float64, error) {
	return safeRollout(func() (float64, error) {
		return rollout(job.state, job.seed)
	})
}

// safeRollout converts a panicking rollout into an error so the
// orchestrator can fall back to a local retry for that one leaf.
func safeRollout(fn func() (float64, error)) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("rollout worker panic: %v", r)
		}
	}()
	return fn()
}
