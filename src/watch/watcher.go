// Package watch polls a CI provider for newly finished builds, classifies
// each against the job's stored history, and publishes the resulting trend
// events.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trendwatch/src/broker"
	"trendwatch/src/contracts"
	"trendwatch/src/logger"
	"trendwatch/src/provider"
	"trendwatch/src/result"
	"trendwatch/src/store"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = 30 * time.Second

// Watcher follows one job's builds through a provider.
type Watcher struct {
	provider provider.Provider
	store    store.Store
	broker   broker.Broker
	logger   logger.Logger

	interval time.Duration

	// changesOnly suppresses trend events for builds that merely repeat
	// the previous state (SUCCESS, STILL_FAILING, STILL_UNSTABLE).
	changesOnly bool

	// processed holds numbers of builds handled ahead of the high-water
	// mark. Runs can overlap and finish out of order, so a finished build
	// may sit above a still-running one; the mark only advances once
	// every build below is settled.
	processed map[int]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithChangesOnly makes the watcher publish trend events only for builds
// whose trend marks a state change.
func WithChangesOnly() Option {
	return func(w *Watcher) { w.changesOnly = true }
}

// NewWatcher creates a watcher over the given provider, store, and broker.
func NewWatcher(prov provider.Provider, s store.Store, brk broker.Broker, log logger.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		provider:  prov,
		store:     s,
		broker:    brk,
		logger:    log,
		interval:  DefaultPollInterval,
		processed: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the job the ref points at until ctx is cancelled. The ref's
// own build is processed first if it has already finished; afterwards each
// poll picks up the newest build and backfills any that finished between
// polls.
func (w *Watcher) Run(ctx context.Context, ref *provider.BuildRef) error {
	build, err := w.provider.FetchBuild(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to fetch initial build: %w", err)
	}

	w.logger.Info("[Watcher] Watching %s (every %s)", build.JobKey, w.interval)

	lastDone := 0
	if build.Finished {
		if err := w.process(ctx, build); err != nil {
			w.logger.Error("[Watcher] %v", err)
		}
		lastDone = build.Number
	} else {
		w.logger.Info("[Watcher] %s is still running, waiting for it to finish", build)
		// Builds before the running one are settled history.
		lastDone = build.Number - 1
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			done, err := w.poll(ctx, build, lastDone)
			if err != nil {
				w.logger.Error("[Watcher] Poll failed: %v", err)
				continue
			}
			lastDone = done

		case <-ctx.Done():
			w.logger.Info("[Watcher] Shutting down")
			return ctx.Err()
		}
	}
}

// poll fetches the newest build and processes, oldest first, every finished
// build numbered after lastDone. It returns the new high-water mark: the
// highest number below which every build has been processed. A still-running
// build pins the mark so it is revisited on later polls even after newer
// builds finish around it.
func (w *Watcher) poll(ctx context.Context, sample *provider.Build, lastDone int) (int, error) {
	latest, err := w.provider.FetchLatest(ctx, sample)
	if err != nil {
		return lastDone, err
	}
	if latest.Number <= lastDone {
		return lastDone, nil
	}

	// Walk back from the latest build to the high-water mark so builds
	// that finished between polls are not skipped.
	var window []*provider.Build
	for b := latest; b != nil && b.Number > lastDone; {
		window = append(window, b)
		prev, err := w.provider.FetchPredecessor(ctx, b)
		if err != nil {
			return lastDone, err
		}
		b = prev
	}

	running := false
	for i := len(window) - 1; i >= 0; i-- {
		b := window[i]
		if b.Finished && !w.processed[b.Number] {
			if err := w.process(ctx, b); err != nil {
				return lastDone, err
			}
			w.processed[b.Number] = true
		}
		switch {
		case !b.Finished:
			w.logger.Debug("[Watcher] %s still running", b)
			running = true
		case !running:
			// Everything below is settled; the mark can pass this build.
			lastDone = b.Number
			delete(w.processed, b.Number)
		}
	}
	return lastDone, nil
}

// process classifies one finished build against stored history, saves it,
// and publishes the completion and trend messages.
func (w *Watcher) process(ctx context.Context, build *provider.Build) error {
	rec := &store.BuildRecord{
		Provider:   w.provider.Name(),
		JobKey:     build.JobKey,
		BuildID:    build.ID,
		Number:     build.Number,
		URL:        build.URL,
		Outcome:    build.Outcome,
		RecordedAt: time.Now().UTC(),
	}

	trend, previous, err := store.Trend(ctx, w.store, rec)
	if err != nil {
		return fmt.Errorf("failed to classify %s: %w", build, err)
	}
	rec.Trend = trend

	if err := w.store.SaveBuild(ctx, rec); err != nil {
		return fmt.Errorf("failed to save %s: %w", build, err)
	}

	w.logger.Info("[Watcher] %s finished %s: %s", build, build.Outcome, trend.Description())

	now := time.Now().UTC().Format(time.RFC3339)

	completed := contracts.BuildCompleted{
		Provider:  w.provider.Name(),
		JobKey:    build.JobKey,
		BuildID:   build.ID,
		Number:    build.Number,
		URL:       build.URL,
		Outcome:   build.Outcome.String(),
		Timestamp: now,
	}
	if err := w.publish(ctx, contracts.TopicBuildsCompleted, build.JobKey, completed); err != nil {
		return err
	}

	if w.changesOnly && !isStateChange(trend) {
		w.logger.Debug("[Watcher] Suppressing unchanged trend for %s", build)
		return nil
	}

	event := contracts.TrendEvent{
		Provider:    w.provider.Name(),
		JobKey:      build.JobKey,
		BuildID:     build.ID,
		Number:      build.Number,
		URL:         build.URL,
		Outcome:     build.Outcome.String(),
		Trend:       trend.String(),
		Description: trend.Description(),
		Timestamp:   now,
	}
	if previous != nil {
		event.PreviousOutcome = previous.Outcome.String()
		event.PreviousNumber = previous.Number
	}
	return w.publish(ctx, contracts.TopicTrends, build.JobKey, event)
}

func (w *Watcher) publish(ctx context.Context, topic, key string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", topic, err)
	}
	if err := w.broker.Publish(ctx, topic, key, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// isStateChange reports whether a trend marks a transition rather than a
// repeat of the previous state.
func isStateChange(trend result.Trend) bool {
	switch trend {
	case result.TrendSuccess, result.TrendStillFailing, result.TrendStillUnstable:
		return false
	default:
		return true
	}
}
