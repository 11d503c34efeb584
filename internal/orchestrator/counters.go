package orchestrator

import (
	"sync"

	"couponprobe/internal/domain"
)

// SessionCounters aggregates results for one run. All mutation happens inside
// one critical section; workers never touch these fields directly.
type SessionCounters struct {
	mu        sync.Mutex
	tested    []string
	successes []string
	errs      int64
	last      string
}

func (c *SessionCounters) Record(res domain.ProbeResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tested = append(c.tested, res.Candidate)
	c.last = res.Candidate
	if res.Success {
		c.successes = append(c.successes, res.Candidate)
	}
	if res.Error != "" {
		c.errs++
	}
}

func (c *SessionCounters) Snapshot() domain.CountersSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return domain.CountersSnapshot{
		Tested:     int64(len(c.tested)),
		Successes:  int64(len(c.successes)),
		Errors:     c.errs,
		LastTested: c.last,
	}
}

// Tested returns a copy of the tested-candidate log.
func (c *SessionCounters) Tested() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.tested))
	copy(out, c.tested)
	return out
}

// Successes returns a copy of the successful-candidate log.
func (c *SessionCounters) Successes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.successes))
	copy(out, c.successes)
	return out
}
