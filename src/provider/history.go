package provider

import (
	"context"

	"trendwatch/src/result"
)

// Walk adapts provider-backed builds into the classifier's BuildRef.
// Each Predecessor call is one provider lookup; nothing is prefetched, so
// the walk stays lazy however long the job's history is.
//
// The classifier's read interface has no error channel, so a lookup
// failure ends the walk and is remembered here. Callers must check Err
// after classifying.
type Walk struct {
	ctx  context.Context
	prov Provider
	err  error
}

// NewWalk creates a lazy history walk over the given provider.
func NewWalk(ctx context.Context, prov Provider) *Walk {
	return &Walk{ctx: ctx, prov: prov}
}

// Ref wraps a fetched build as a classifier BuildRef.
func (w *Walk) Ref(build *Build) result.BuildRef {
	return &walkRef{walk: w, build: build}
}

// Err returns the first lookup error encountered during the walk, if any.
func (w *Walk) Err() error { return w.err }

type walkRef struct {
	walk  *Walk
	build *Build

	// Outcomes are immutable once read, so a fetched predecessor can be
	// reused when the same node is walked again.
	fetched bool
	prev    *walkRef
}

func (r *walkRef) Outcome() (result.Outcome, bool) {
	return r.build.Outcome, r.build.Finished
}

func (r *walkRef) Predecessor() result.BuildRef {
	if r.fetched {
		if r.prev == nil {
			return nil
		}
		return r.prev
	}
	if r.walk.err != nil {
		return nil
	}
	prev, err := r.walk.prov.FetchPredecessor(r.walk.ctx, r.build)
	if err != nil {
		r.walk.err = err
		return nil
	}
	r.fetched = true
	if prev == nil {
		return nil
	}
	r.prev = &walkRef{walk: r.walk, build: prev}
	return r.prev
}

func (r *walkRef) String() string { return r.build.String() }

// Trend classifies a provider-fetched build against its lazily walked
// history. It returns the trend and the meaningful predecessor the
// classification compared against (nil if there was none).
func Trend(ctx context.Context, prov Provider, build *Build) (result.Trend, *Build, error) {
	walk := NewWalk(ctx, prov)
	ref := walk.Ref(build)

	trend, err := result.Classify(ref)
	if err != nil {
		return 0, nil, err
	}
	if err := walk.Err(); err != nil {
		return 0, nil, err
	}

	// Aborted and not-built trends ignore history, so no lookup happens
	// and there is no build to report as compared against.
	if trend == result.TrendAborted || trend == result.TrendNotBuilt {
		return trend, nil, nil
	}

	var previous *Build
	if prev := result.MeaningfulPredecessor(ref); prev != nil {
		previous = prev.(*walkRef).build
	}
	if err := walk.Err(); err != nil {
		return 0, nil, err
	}
	return trend, previous, nil
}
