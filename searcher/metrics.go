package searcher

import (
	"sync/atomic"
	"time"
)

// SearchMetric summarizes one search run.
type SearchMetric struct {
	Duration      time.Duration
	Simulations   int
	WorkerRetries int
}

// Collector accumulates search counters. The parallel executor increments
// from the orchestrating goroutine only, but retries may be counted while
// a batch is in flight, so counters stay atomic.
type Collector interface {
	Start()
	AddSimulation()
	AddRetry()
	Complete() SearchMetric
}

type collector struct {
	startTime   time.Time
	simulations atomic.Int64
	retries     atomic.Int64
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start() {
	c.startTime = time.Now()
}

func (c *collector) AddSimulation() {
	c.simulations.Add(1)
}

func (c *collector) AddRetry() {
	c.retries.Add(1)
}

func (c *collector) Complete() SearchMetric {
	return SearchMetric{
		Duration:      time.Since(c.startTime),
		Simulations:   int(c.simulations.Load()),
		WorkerRetries: int(c.retries.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (dummyCollector) Start()                 {}
func (dummyCollector) AddSimulation()         {}
func (dummyCollector) AddRetry()              {}
func (dummyCollector) Complete() SearchMetric { return SearchMetric{} }
