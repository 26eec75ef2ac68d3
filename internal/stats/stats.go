// Package stats tracks model usage for the Sierra agent.
package stats

import (
	"sync"
	"time"
)

// Collector accumulates per-request metrics across a session.
type Collector struct {
	mu            sync.Mutex
	startTime     time.Time
	requestCount  int64
	tokenCount    int64
	errorCount    int64
	totalDuration time.Duration
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
	}
}

// Stats is a point-in-time snapshot of collected metrics.
type Stats struct {
	Uptime       time.Duration `json:"uptime"`
	RequestCount int64         `json:"request_count"`
	TokenCount   int64         `json:"token_count"`
	ErrorCount   int64         `json:"error_count"`
	AvgLatencyMs float64       `json:"avg_latency_ms"`
}

// Record tracks one completed model request.
func (c *Collector) Record(tokens int, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestCount++
	c.tokenCount += int64(tokens)
	c.totalDuration += duration
	if err != nil {
		c.errorCount++
	}
}

// Snapshot returns the current metrics.
func (c *Collector) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	avgLatency := float64(0)
	if c.requestCount > 0 {
		avgLatency = float64(c.totalDuration.Milliseconds()) / float64(c.requestCount)
	}

	return Stats{
		Uptime:       time.Since(c.startTime),
		RequestCount: c.requestCount,
		TokenCount:   c.tokenCount,
		ErrorCount:   c.errorCount,
		AvgLatencyMs: avgLatency,
	}
}
