// Package result implements build outcome and trend classification.
// Given the outcome of the current build and a lazily walkable chain of
// prior builds, it determines a trend label such as "Fixed" or
// "Still failing" for the current build.
package result

import "fmt"

// Outcome is the terminal status of a single build.
//
// Success, Unstable and Failure form a total severity order
// (Success < Unstable < Failure). Aborted and NotBuilt are valid
// outcomes but carry no signal about code health and are excluded
// from trend comparison.
type Outcome int

const (
	Success Outcome = iota
	Unstable
	Failure
	Aborted
	NotBuilt
)

var outcomeNames = [...]string{
	Success:  "SUCCESS",
	Unstable: "UNSTABLE",
	Failure:  "FAILURE",
	Aborted:  "ABORTED",
	NotBuilt: "NOT_BUILT",
}

// String returns the canonical upper-case name of the outcome.
func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// IsWorseThan reports whether o is strictly more severe than other.
// Only meaningful for Success, Unstable and Failure.
func (o Outcome) IsWorseThan(other Outcome) bool {
	return o.comparable() && other.comparable() && o > other
}

// IsBetterThan reports whether o is strictly less severe than other.
// Only meaningful for Success, Unstable and Failure.
func (o Outcome) IsBetterThan(other Outcome) bool {
	return o.comparable() && other.comparable() && o < other
}

// comparable reports whether the outcome participates in the severity order.
func (o Outcome) comparable() bool {
	return o == Success || o == Unstable || o == Failure
}

// ParseOutcome converts a canonical outcome name (as produced by String)
// back into an Outcome. Used when hydrating persisted builds.
func ParseOutcome(name string) (Outcome, error) {
	for i, n := range outcomeNames {
		if n == name {
			return Outcome(i), nil
		}
	}
	return 0, fmt.Errorf("unknown outcome name: %q", name)
}
