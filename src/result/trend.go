package result

import (
	"fmt"
	"strings"
)

// Trend describes how the current build's outcome compares to the most
// recent meaningful prior outcome of the same job.
type Trend int

const (
	// TrendFixed means the previous build was Failure or Unstable and the
	// current build is Success.
	TrendFixed Trend = iota
	// TrendSuccess means the current build is Success and so was the
	// previous build (if there is one).
	TrendSuccess
	// TrendNowUnstable means the previous build was Failure and the
	// current build is 'only' Unstable.
	TrendNowUnstable
	// TrendStillUnstable means the current and previous builds are both
	// Unstable.
	TrendStillUnstable
	// TrendUnstable means the previous build (if there is one) was Success
	// and the current build is Unstable.
	TrendUnstable
	// TrendStillFailing means the current and previous builds are both
	// Failure.
	TrendStillFailing
	// TrendFailure means the current build is Failure and the previous
	// build (if there is one) was not.
	TrendFailure
	// TrendAborted means the current build was aborted.
	TrendAborted
	// TrendNotBuilt means the current build did not run.
	TrendNotBuilt
)

// trendInfo is the per-variant name and human-readable description.
// An empty description means "capitalized lower-case of the name".
var trendInfo = [...]struct {
	name        string
	description string
}{
	TrendFixed:         {name: "FIXED"},
	TrendSuccess:       {name: "SUCCESS"},
	TrendNowUnstable:   {name: "NOW_UNSTABLE", description: "Now unstable"},
	TrendStillUnstable: {name: "STILL_UNSTABLE", description: "Still unstable"},
	TrendUnstable:      {name: "UNSTABLE"},
	TrendStillFailing:  {name: "STILL_FAILING", description: "Still failing"},
	TrendFailure:       {name: "FAILURE"},
	TrendAborted:       {name: "ABORTED"},
	TrendNotBuilt:      {name: "NOT_BUILT", description: "Not built"},
}

// String returns the canonical upper-case name of the trend.
func (t Trend) String() string {
	if t < 0 || int(t) >= len(trendInfo) {
		return fmt.Sprintf("Trend(%d)", int(t))
	}
	return trendInfo[t].name
}

// Description returns a short english description of the trend,
// e.g. "Fixed" or "Still failing".
func (t Trend) Description() string {
	if t < 0 || int(t) >= len(trendInfo) {
		return fmt.Sprintf("Trend(%d)", int(t))
	}
	info := trendInfo[t]
	if info.description != "" {
		return info.description
	}
	return info.name[:1] + strings.ToLower(info.name[1:])
}

// UpperCaseDescription returns Description in upper case,
// e.g. "FIXED" or "STILL FAILING".
func (t Trend) UpperCaseDescription() string {
	return strings.ToUpper(t.Description())
}

// ParseTrend converts a canonical trend name (as produced by String) back
// into a Trend. Used when hydrating persisted trend events.
func ParseTrend(name string) (Trend, error) {
	for i, info := range trendInfo {
		if info.name == name {
			return Trend(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trend name: %q", name)
}
