// Package experiments measures how rollout parallelization changes search
// throughput across worker counts.
package experiments

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"pickomino/game"
	"pickomino/searcher"
)

const (
	// Repetitions per configuration, for stable averages.
	Repetitions = 5
	// Simulations per run. Large enough that rollouts dominate.
	Simulations = 50_000
)

// RunConfig is one measured configuration.
type RunConfig struct {
	ID        int
	Workers   int
	BatchSize int
}

// RunRecord is one timed run.
type RunRecord struct {
	Config      RunConfig
	Repetition  int
	Duration    time.Duration
	SimsPerSec  float64
	Simulations int
}

// Summary aggregates the repetitions of one configuration.
type Summary struct {
	Config         RunConfig
	MeanSeconds    float64
	StdDevSeconds  float64
	MeanSimsPerSec float64
	Speedup        float64 // mean throughput relative to the first config
}

// DefaultConfigs sweeps worker counts against a sequential baseline.
func DefaultConfigs() []RunConfig {
	return []RunConfig{
		{ID: 0, Workers: 1},
		{ID: 1, Workers: 2, BatchSize: 64},
		{ID: 2, Workers: 4, BatchSize: 64},
		{ID: 3, Workers: 8, BatchSize: 64},
		{ID: 4, Workers: 16, BatchSize: 128},
	}
}

// RunSpeedup times every configuration on the same fresh-turn position and
// returns the per-run records plus per-config summaries. The first config
// is the speedup baseline.
func RunSpeedup(configs []RunConfig) ([]RunRecord, []Summary, error) {
	if len(configs) == 0 {
		return nil, nil, errors.New("no configurations to run")
	}

	state := game.NewState(nil, nil, nil)
	var records []RunRecord
	summaries := make([]Summary, 0, len(configs))

	for _, cfg := range configs {
		log.Info().Int("id", cfg.ID).Int("workers", cfg.Workers).Msg("running configuration")

		seconds := make([]float64, 0, Repetitions)
		throughputs := make([]float64, 0, Repetitions)
		for rep := 0; rep < Repetitions; rep++ {
			metric, err := runOnce(cfg, state)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "config %d repetition %d", cfg.ID, rep)
			}

			secs := metric.Duration.Seconds()
			simsPerSec := float64(metric.Simulations) / secs
			seconds = append(seconds, secs)
			throughputs = append(throughputs, simsPerSec)
			records = append(records, RunRecord{
				Config:      cfg,
				Repetition:  rep,
				Duration:    metric.Duration,
				SimsPerSec:  simsPerSec,
				Simulations: metric.Simulations,
			})
		}

		summaries = append(summaries, Summary{
			Config:         cfg,
			MeanSeconds:    stat.Mean(seconds, nil),
			StdDevSeconds:  stat.StdDev(seconds, nil),
			MeanSimsPerSec: stat.Mean(throughputs, nil),
		})
	}

	baseline := summaries[0].MeanSimsPerSec
	for i := range summaries {
		summaries[i].Speedup = summaries[i].MeanSimsPerSec / baseline
		log.Info().
			Int("workers", summaries[i].Config.Workers).
			Float64("meanSeconds", summaries[i].MeanSeconds).
			Float64("speedup", summaries[i].Speedup).
			Msg("configuration summary")
	}
	return records, summaries, nil
}

func runOnce(cfg RunConfig, state game.GameState) (searcher.SearchMetric, error) {
	options := []searcher.Option{searcher.WithMetrics()}
	if cfg.BatchSize > 0 {
		options = append(options, searcher.WithBatchSize(cfg.BatchSize))
	}
	m := searcher.New(cfg.Workers, options...)

	var (
		metric searcher.SearchMetric
		err    error
	)
	if cfg.Workers > 1 {
		_, metric, err = m.RunParallel(state, Simulations)
	} else {
		_, metric, err = m.Run(state, Simulations)
	}
	return metric, err
}
