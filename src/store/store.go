// Package store persists observed builds and their classified trends.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trendwatch/src/result"
)

// BuildRecord is one observed terminal build with its classification.
type BuildRecord struct {
	Provider   string
	JobKey     string
	BuildID    string
	Number     int
	URL        string
	Outcome    result.Outcome
	Trend      result.Trend
	RecordedAt time.Time
}

func (r *BuildRecord) String() string { return fmt.Sprintf("%s#%d", r.JobKey, r.Number) }

// Store defines the interface for persisting classified builds.
// Histories are keyed by (job key, build number); numbers within a job
// are unique and ordered.
type Store interface {
	// SaveBuild upserts a build record.
	SaveBuild(ctx context.Context, rec *BuildRecord) error

	// GetBuild returns the record for a specific build.
	GetBuild(ctx context.Context, jobKey string, number int) (*BuildRecord, error)

	// PreviousBuild returns the recorded build with the greatest number
	// strictly below the given one, or ErrNotFound if there is none.
	PreviousBuild(ctx context.Context, jobKey string, number int) (*BuildRecord, error)

	// ListRecent returns up to limit records for a job, newest first.
	ListRecent(ctx context.Context, jobKey string, limit int) ([]BuildRecord, error)

	// ListJobs returns the keys of all jobs with recorded builds, sorted.
	ListJobs(ctx context.Context) ([]string, error)

	// Close closes the store connection.
	Close() error
}

// ErrNotFound reports a missing build record.
type ErrNotFound struct {
	JobKey string
	Number int
}

func (e ErrNotFound) Error() string {
	if e.Number == 0 {
		return fmt.Sprintf("no builds recorded for job %s", e.JobKey)
	}
	return fmt.Sprintf("build not found: %s#%d", e.JobKey, e.Number)
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
