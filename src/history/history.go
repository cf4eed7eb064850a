// Package history provides an in-memory, append-only build history.
// Each build links back to its predecessor, so a job's history is walked
// newest-first without ever being materialized. Used by local mode and
// as the reference implementation of result.BuildRef.
package history

import (
	"fmt"
	"sync"
	"time"

	"trendwatch/src/result"
)

// Build is a single recorded build. Builds are created running and
// transition to a terminal outcome exactly once; after that the outcome
// is immutable.
type Build struct {
	id      string
	number  int
	url     string
	jobKey  string
	started time.Time
	prev    *Build

	mu      sync.Mutex
	outcome result.Outcome
	done    bool
}

// ID returns the build's unique identifier.
func (b *Build) ID() string { return b.id }

// Number returns the build's sequential number within its job.
func (b *Build) Number() int { return b.number }

// URL returns the build's web URL, if any.
func (b *Build) URL() string { return b.url }

// JobKey returns the key of the job this build belongs to.
func (b *Build) JobKey() string { return b.jobKey }

// StartedAt returns the time the build was recorded.
func (b *Build) StartedAt() time.Time { return b.started }

// Outcome returns the build's terminal outcome. ok is false while the
// build is still running.
func (b *Build) Outcome() (result.Outcome, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outcome, b.done
}

// Predecessor returns the immediately prior build of the same job, or nil
// for the first build.
func (b *Build) Predecessor() result.BuildRef {
	if b.prev == nil {
		return nil
	}
	return b.prev
}

// Finish records the build's terminal outcome. A build can only finish
// once; finishing an already finished build is an error.
func (b *Build) Finish(outcome result.Outcome) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return fmt.Errorf("build %s already finished with %s", b, b.outcome)
	}
	b.outcome = outcome
	b.done = true
	return nil
}

func (b *Build) String() string { return fmt.Sprintf("%s#%d", b.jobKey, b.number) }

// Chain is the append-only history of a single job. New builds are added
// at the front; already linked builds are never modified, so walks that
// started before an append stay valid.
type Chain struct {
	jobKey string

	mu   sync.Mutex
	head *Build
	next int // next build number
}

// NewChain creates an empty history for the given job key.
func NewChain(jobKey string) *Chain {
	return &Chain{jobKey: jobKey, next: 1}
}

// JobKey returns the job key this chain records builds for.
func (c *Chain) JobKey() string { return c.jobKey }

// Start appends a new running build at the front of the history and
// returns it.
func (c *Chain) Start(id, url string) *Build {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := &Build{
		id:      id,
		number:  c.next,
		url:     url,
		jobKey:  c.jobKey,
		started: time.Now(),
		prev:    c.head,
	}
	c.next++
	c.head = b
	return b
}

// Record appends a build that already finished with the given outcome.
// Convenience for replaying known histories.
func (c *Chain) Record(id, url string, outcome result.Outcome) *Build {
	b := c.Start(id, url)
	// Finish only fails on an already-finished build, and b is brand new.
	_ = b.Finish(outcome)
	return b
}

// Head returns the most recent build, or nil for an empty history.
func (c *Chain) Head() *Build {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

// Len returns the number of builds recorded so far.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next - 1
}
