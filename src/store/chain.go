package store

import (
	"context"

	"trendwatch/src/result"
)

// Walk adapts a job's stored history into the classifier's BuildRef.
// Each Predecessor call is one store lookup, so classification over a
// long history stays lazy.
type Walk struct {
	ctx   context.Context
	store Store
	err   error
}

// NewWalk creates a lazy history walk over the given store.
func NewWalk(ctx context.Context, s Store) *Walk {
	return &Walk{ctx: ctx, store: s}
}

// Ref wraps a build record as a classifier BuildRef.
func (w *Walk) Ref(rec *BuildRecord) result.BuildRef {
	return &chainRef{walk: w, rec: rec}
}

// Err returns the first lookup error encountered during the walk, if any.
func (w *Walk) Err() error { return w.err }

type chainRef struct {
	walk *Walk
	rec  *BuildRecord

	// History below a record never changes, so a looked-up predecessor
	// can be reused when the same node is walked again.
	fetched bool
	prev    *chainRef
}

// Outcome returns the record's outcome. Only terminal builds are ever
// recorded, so the outcome is always present.
func (r *chainRef) Outcome() (result.Outcome, bool) {
	return r.rec.Outcome, true
}

func (r *chainRef) Predecessor() result.BuildRef {
	if r.fetched {
		if r.prev == nil {
			return nil
		}
		return r.prev
	}
	if r.walk.err != nil {
		return nil
	}
	prev, err := r.walk.store.PreviousBuild(r.walk.ctx, r.rec.JobKey, r.rec.Number)
	if err != nil {
		if IsNotFound(err) {
			r.fetched = true
			return nil
		}
		r.walk.err = err
		return nil
	}
	r.fetched = true
	r.prev = &chainRef{walk: r.walk, rec: prev}
	return r.prev
}

func (r *chainRef) String() string { return r.rec.String() }

// Classify classifies a (possibly not yet saved) build record against the
// job history already in the store.
func Classify(ctx context.Context, s Store, rec *BuildRecord) (result.Trend, error) {
	trend, _, err := Trend(ctx, s, rec)
	return trend, err
}

// Trend classifies a record against stored history and also returns the
// meaningful predecessor the classification compared against, nil if the
// record has none.
func Trend(ctx context.Context, s Store, rec *BuildRecord) (result.Trend, *BuildRecord, error) {
	walk := NewWalk(ctx, s)
	ref := walk.Ref(rec)

	trend, err := result.Classify(ref)
	if err != nil {
		return 0, nil, err
	}
	if err := walk.Err(); err != nil {
		return 0, nil, err
	}

	// Aborted and not-built trends ignore history, so no lookup happens
	// and there is no record to report as compared against.
	if trend == result.TrendAborted || trend == result.TrendNotBuilt {
		return trend, nil, nil
	}

	var previous *BuildRecord
	if prev := result.MeaningfulPredecessor(ref); prev != nil {
		previous = prev.(*chainRef).rec
	}
	if err := walk.Err(); err != nil {
		return 0, nil, err
	}
	return trend, previous, nil
}
