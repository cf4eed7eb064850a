package result

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingOutcome is reported when the build being classified has
	// not finished yet. Callers must not classify in-progress builds.
	ErrMissingOutcome = errors.New("build has no outcome")

	// ErrUnknownOutcome is reported when the build's outcome is not one
	// of the five statuses the classifier understands. This indicates a
	// contract break (e.g. a newly added status not wired in here) and is
	// never silently mapped to a default trend.
	ErrUnknownOutcome = errors.New("unknown outcome")
)

// BuildRef is the read-only view of a build the classifier needs.
// Implementations wrap in-memory records, persisted rows, or live CI API
// lookups; the classifier never mutates or caches what they expose.
type BuildRef interface {
	// Outcome returns the build's terminal outcome. ok is false while the
	// build is still running.
	Outcome() (outcome Outcome, ok bool)

	// Predecessor returns the immediately prior build in the same job's
	// history, or nil if this is the first build.
	Predecessor() BuildRef
}

// MissingOutcomeError reports a classification attempt on a build that
// has no outcome yet.
type MissingOutcomeError struct {
	Build BuildRef
}

func (e *MissingOutcomeError) Error() string {
	return fmt.Sprintf("build has no outcome yet: %v", e.Build)
}

func (e *MissingOutcomeError) Unwrap() error { return ErrMissingOutcome }

// UnknownOutcomeError reports an outcome value outside the five statuses
// the classifier understands.
type UnknownOutcomeError struct {
	Outcome Outcome
	Build   BuildRef
}

func (e *UnknownOutcomeError) Error() string {
	return fmt.Sprintf("unknown outcome %s for build %v", e.Outcome, e.Build)
}

func (e *UnknownOutcomeError) Unwrap() error { return ErrUnknownOutcome }

// Classify returns the trend of a build by comparing its outcome against
// the most recent meaningful prior outcome in the same job's history.
//
// The walk over predecessors is lazy and stops at the first build whose
// outcome is Success, Unstable or Failure; aborted, not-built and
// still-running predecessors are skipped because they carry no signal
// about code health.
func Classify(build BuildRef) (Trend, error) {
	current, ok := build.Outcome()
	if !ok {
		return 0, &MissingOutcomeError{Build: build}
	}

	// Aborted and not-built need no history lookup.
	switch current {
	case Aborted:
		return TrendAborted, nil
	case NotBuilt:
		return TrendNotBuilt, nil
	}

	previous := MeaningfulPredecessor(build)

	switch current {
	case Success:
		if previous != nil {
			// Recovery from any non-success terminal state counts
			// as a fix, so Unstable→Success is FIXED too.
			if prev, _ := previous.Outcome(); prev.IsWorseThan(Success) {
				return TrendFixed, nil
			}
		}
		return TrendSuccess, nil

	case Unstable:
		if previous == nil {
			return TrendUnstable, nil
		}
		prev, _ := previous.Outcome()
		switch prev {
		case Unstable:
			return TrendStillUnstable, nil
		case Failure:
			return TrendNowUnstable, nil
		default:
			return TrendUnstable, nil
		}

	case Failure:
		if previous != nil {
			if prev, _ := previous.Outcome(); prev == Failure {
				return TrendStillFailing, nil
			}
		}
		return TrendFailure, nil
	}

	return 0, &UnknownOutcomeError{Outcome: current, Build: build}
}

// MeaningfulPredecessor walks backwards from build's immediate predecessor
// and returns the first build whose outcome is Success, Unstable or
// Failure, or nil if the walk exhausts the history. Predecessors with no
// outcome, Aborted or NotBuilt are skipped.
func MeaningfulPredecessor(build BuildRef) BuildRef {
	for prev := build.Predecessor(); prev != nil; prev = prev.Predecessor() {
		outcome, ok := prev.Outcome()
		if !ok || outcome == Aborted || outcome == NotBuilt {
			continue
		}
		return prev
	}
	return nil
}
