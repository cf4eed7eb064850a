package provider

import (
	"fmt"
	"time"

	"trendwatch/src/result"
)

// BuildRef identifies a build in a CI system
type BuildRef struct {
	Provider string            // "buildkite" or "github"
	BuildID  string            // Unique build identifier (build or run number)
	Metadata map[string]string // Provider-specific metadata
}

// Build represents a CI build as seen by a provider.
type Build struct {
	ID        string
	Number    int
	JobKey    string // Identifies the job whose history this build belongs to
	URL       string
	State     string // Provider-native state string, kept for display
	Outcome   result.Outcome
	Finished  bool // Whether Outcome is set; false while the build runs
	CreatedAt time.Time
}

func (b *Build) String() string { return fmt.Sprintf("%s#%d", b.JobKey, b.Number) }
