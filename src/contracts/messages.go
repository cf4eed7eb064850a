// Package contracts defines the message types trendwatch components
// exchange over the broker, and the topics they travel on.
package contracts

import (
	"fmt"
	"strings"

	"trendwatch/src/result"
)

// BuildCompleted announces that a build reached a terminal state.
// Published to: trendwatch.builds.completed
// Key: {job_key}
type BuildCompleted struct {
	Provider  string `json:"provider"`
	JobKey    string `json:"job_key"`
	BuildID   string `json:"build_id"`
	Number    int    `json:"number"`
	URL       string `json:"url"`
	Outcome   string `json:"outcome"`
	Timestamp string `json:"timestamp"`
}

// TrendEvent is a classified build trend, ready for downstream
// notification templating.
// Published to: trendwatch.trends
// Key: {job_key}
type TrendEvent struct {
	Provider string `json:"provider"`
	JobKey   string `json:"job_key"`
	BuildID  string `json:"build_id"`
	Number   int    `json:"number"`
	URL      string `json:"url"`

	// Outcome of this build, canonical name (e.g. "FAILURE").
	Outcome string `json:"outcome"`
	// Outcome of the meaningful predecessor the trend was computed
	// against; empty if there was none.
	PreviousOutcome string `json:"previous_outcome,omitempty"`
	// Number of the meaningful predecessor; 0 if there was none.
	PreviousNumber int `json:"previous_number,omitempty"`

	// Trend is the canonical trend name (e.g. "STILL_FAILING").
	Trend string `json:"trend"`
	// Description is the human-readable form (e.g. "Still failing").
	Description string `json:"description"`

	Timestamp string `json:"timestamp"`
}

// TrendValue parses the event's trend name back into a result.Trend.
func (e TrendEvent) TrendValue() (result.Trend, error) {
	return result.ParseTrend(e.Trend)
}

// Subject returns a one-line summary suitable for a notification subject,
// e.g. "acme/deploy #42: Still failing".
func (e TrendEvent) Subject() string {
	return fmt.Sprintf("%s #%d: %s", e.JobKey, e.Number, e.Description)
}

// Headline returns the upper-case trend description, the form
// notification templates shout in, e.g. "STILL FAILING".
func (e TrendEvent) Headline() string {
	return strings.ToUpper(e.Description)
}

// TopicNames defines the broker topics used by trendwatch
const (
	// TopicBuildsCompleted contains terminal build announcements
	TopicBuildsCompleted = "trendwatch.builds.completed"

	// TopicTrends contains classified trend events
	TopicTrends = "trendwatch.trends"
)
