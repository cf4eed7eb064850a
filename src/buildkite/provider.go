package buildkite

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"trendwatch/src/provider"
	"trendwatch/src/result"
)

func init() {
	// Register the Buildkite provider factory
	provider.RegisterProvider("buildkite", func(token string) provider.Provider {
		return NewProvider(token)
	})
}

// Provider implements provider.Provider for Buildkite
type Provider struct {
	client *Client
}

// NewProvider creates a Buildkite provider with API token
func NewProvider(token string) *Provider {
	return &Provider{client: NewClient(token)}
}

// Name returns "buildkite"
func (p *Provider) Name() string {
	return "buildkite"
}

// ParseURL delegates to provider.ParseURL
func (p *Provider) ParseURL(url string) (*provider.BuildRef, error) {
	return provider.ParseURL(url)
}

// FetchBuild retrieves build metadata using the Buildkite API
func (p *Provider) FetchBuild(ctx context.Context, ref *provider.BuildRef) (*provider.Build, error) {
	org := ref.Metadata["org"]
	pipeline := ref.Metadata["pipeline"]

	number, err := strconv.Atoi(ref.BuildID)
	if err != nil {
		return nil, fmt.Errorf("%w: build number %q", provider.ErrInvalidURL, ref.BuildID)
	}

	bkBuild, err := p.client.GetBuild(ctx, org, pipeline, number)
	if err != nil {
		return nil, err
	}

	return toBuild(org, pipeline, bkBuild), nil
}

// FetchPredecessor retrieves the prior build of the same pipeline.
// Buildkite build numbers are sequential per pipeline, so the predecessor
// of build N is build N-1; build 1 has none.
func (p *Provider) FetchPredecessor(ctx context.Context, build *provider.Build) (*provider.Build, error) {
	if build.Number <= 1 {
		return nil, nil
	}

	org, pipeline, ok := strings.Cut(build.JobKey, "/")
	if !ok {
		return nil, fmt.Errorf("malformed job key: %q", build.JobKey)
	}

	bkBuild, err := p.client.GetBuild(ctx, org, pipeline, build.Number-1)
	if err != nil {
		return nil, err
	}

	return toBuild(org, pipeline, bkBuild), nil
}

// FetchLatest retrieves the newest build of the same pipeline as build.
func (p *Provider) FetchLatest(ctx context.Context, build *provider.Build) (*provider.Build, error) {
	org, pipeline, ok := strings.Cut(build.JobKey, "/")
	if !ok {
		return nil, fmt.Errorf("malformed job key: %q", build.JobKey)
	}

	bkBuild, err := p.client.GetLatestBuild(ctx, org, pipeline)
	if err != nil {
		return nil, err
	}

	return toBuild(org, pipeline, bkBuild), nil
}

// toBuild maps a Buildkite build onto the provider build model.
func toBuild(org, pipeline string, b *Build) *provider.Build {
	outcome, finished := MapOutcome(b)
	return &provider.Build{
		ID:        b.ID,
		Number:    b.Number,
		JobKey:    org + "/" + pipeline,
		URL:       b.WebURL,
		State:     b.State,
		Outcome:   outcome,
		Finished:  finished,
		CreatedAt: b.CreatedAt,
	}
}

// MapOutcome converts a Buildkite build state to a terminal outcome.
// finished is false for states that are not terminal (running, scheduled,
// blocked, canceling, failing).
//
// A passed build with soft-failed jobs maps to Unstable: the pipeline is
// green overall but something in it needs attention.
func MapOutcome(b *Build) (outcome result.Outcome, finished bool) {
	switch b.State {
	case "passed":
		for _, job := range b.Jobs {
			if job.SoftFailed {
				return result.Unstable, true
			}
		}
		return result.Success, true
	case "failed":
		return result.Failure, true
	case "canceled":
		return result.Aborted, true
	case "skipped", "not_run":
		return result.NotBuilt, true
	default:
		return 0, false
	}
}
