package githubactions

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"trendwatch/src/provider"
	"trendwatch/src/result"
)

func init() {
	// Register the GitHub Actions provider factory
	provider.RegisterProvider("github", func(token string) provider.Provider {
		return NewProvider(token)
	})
}

// Provider implements provider.Provider for GitHub Actions
type Provider struct {
	client *Client
}

// NewProvider creates a GitHub Actions provider with API token
func NewProvider(token string) *Provider {
	return &Provider{client: NewClient(token)}
}

// Name returns "github"
func (p *Provider) Name() string {
	return "github"
}

// ParseURL delegates to provider.ParseURL
func (p *Provider) ParseURL(url string) (*provider.BuildRef, error) {
	return provider.ParseURL(url)
}

// FetchBuild retrieves workflow run metadata using the GitHub API
func (p *Provider) FetchBuild(ctx context.Context, ref *provider.BuildRef) (*provider.Build, error) {
	owner := ref.Metadata["owner"]
	repo := ref.Metadata["repo"]

	run, err := p.client.GetWorkflowRun(ctx, owner, repo, ref.BuildID)
	if err != nil {
		return nil, err
	}

	return toBuild(owner, repo, run), nil
}

// FetchPredecessor retrieves the most recent earlier run of the same
// workflow and branch. Run numbers are not addressable directly, so the
// lookup filters the run listing by creation time.
func (p *Provider) FetchPredecessor(ctx context.Context, build *provider.Build) (*provider.Build, error) {
	owner, repo, workflowID, branch, err := parseJobKey(build.JobKey)
	if err != nil {
		return nil, err
	}

	run, err := p.client.ListRunsBefore(ctx, owner, repo, workflowID, branch, build.CreatedAt)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil
	}

	return toBuild(owner, repo, run), nil
}

// FetchLatest retrieves the newest run of the same workflow and branch
// as build.
func (p *Provider) FetchLatest(ctx context.Context, build *provider.Build) (*provider.Build, error) {
	owner, repo, workflowID, branch, err := parseJobKey(build.JobKey)
	if err != nil {
		return nil, err
	}

	run, err := p.client.LatestRun(ctx, owner, repo, workflowID, branch)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: no runs for %s", provider.ErrBuildNotFound, build.JobKey)
	}

	return toBuild(owner, repo, run), nil
}

// toBuild maps a workflow run onto the provider build model.
func toBuild(owner, repo string, run *WorkflowRun) *provider.Build {
	outcome, finished := MapOutcome(run)
	return &provider.Build{
		ID:        strconv.FormatInt(run.ID, 10),
		Number:    run.RunNumber,
		JobKey:    jobKey(owner, repo, run.WorkflowID, run.HeadBranch),
		URL:       run.HTMLURL,
		State:     runState(run),
		Outcome:   outcome,
		Finished:  finished,
		CreatedAt: run.CreatedAt,
	}
}

// jobKey identifies one workflow on one branch, which is the history a
// trend is computed over.
func jobKey(owner, repo string, workflowID int64, branch string) string {
	return fmt.Sprintf("%s/%s/%d@%s", owner, repo, workflowID, branch)
}

func parseJobKey(key string) (owner, repo string, workflowID int64, branch string, err error) {
	rest, branch, ok := strings.Cut(key, "@")
	if !ok {
		return "", "", 0, "", fmt.Errorf("malformed job key: %q", key)
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 {
		return "", "", 0, "", fmt.Errorf("malformed job key: %q", key)
	}
	workflowID, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", "", 0, "", fmt.Errorf("malformed job key %q: %w", key, err)
	}
	return parts[0], parts[1], workflowID, branch, nil
}

// runState reports the provider-native state string for display.
func runState(run *WorkflowRun) string {
	if run.Status == "completed" && run.Conclusion != "" {
		return run.Conclusion
	}
	return run.Status
}

// MapOutcome converts a workflow run's status and conclusion to a
// terminal outcome. finished is false until the run completes.
//
// A neutral conclusion maps to Unstable: the run finished without failing
// outright but did not come out clean either.
func MapOutcome(run *WorkflowRun) (outcome result.Outcome, finished bool) {
	if run.Status != "completed" {
		return 0, false
	}
	switch run.Conclusion {
	case "success":
		return result.Success, true
	case "neutral":
		return result.Unstable, true
	case "failure", "timed_out":
		return result.Failure, true
	case "cancelled":
		return result.Aborted, true
	case "skipped", "stale":
		return result.NotBuilt, true
	default:
		// action_required and friends: the run is not over yet.
		return 0, false
	}
}
