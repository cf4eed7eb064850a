package githubactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"trendwatch/src/provider"
)

var (
	ErrInvalidURL = errors.New("invalid GitHub Actions URL")
)

var workflowRunURLPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/actions/runs/(\d+)`)

// Client is a GitHub Actions API client
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new GitHub Actions client
func NewClient(token string) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://api.github.com",
	}
}

// ParseWorkflowRunURL extracts owner, repo, and run ID from URL
func ParseWorkflowRunURL(url string) (owner, repo, runID string, err error) {
	matches := workflowRunURLPattern.FindStringSubmatch(url)
	if matches == nil {
		return "", "", "", fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}
	return matches[1], matches[2], matches[3], nil
}

// GetWorkflowRun fetches workflow run metadata
func (c *Client) GetWorkflowRun(ctx context.Context, owner, repo, runID string) (*WorkflowRun, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/actions/runs/%s", c.baseURL, owner, repo, runID)

	var run WorkflowRun
	if err := c.getJSON(ctx, url, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRunsBefore returns the most recent run of the same workflow created
// strictly before the given time, or nil if there is none. branch narrows
// the listing when non-empty. One API call per invocation, so the trend
// walk stays lazy however far back it has to look.
func (c *Client) ListRunsBefore(ctx context.Context, owner, repo string, workflowID int64, branch string, before time.Time) (*WorkflowRun, error) {
	q := url.Values{}
	q.Set("per_page", "1")
	q.Set("created", "<"+before.UTC().Format(time.RFC3339))
	if branch != "" {
		q.Set("branch", branch)
	}
	listURL := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%d/runs?%s",
		c.baseURL, owner, repo, workflowID, q.Encode())

	var runs WorkflowRunsResponse
	if err := c.getJSON(ctx, listURL, &runs); err != nil {
		return nil, err
	}
	if len(runs.WorkflowRuns) == 0 {
		return nil, nil
	}
	return &runs.WorkflowRuns[0], nil
}

// LatestRun returns the most recent run of a workflow, or nil if the
// workflow has never run. branch narrows the listing when non-empty.
func (c *Client) LatestRun(ctx context.Context, owner, repo string, workflowID int64, branch string) (*WorkflowRun, error) {
	q := url.Values{}
	q.Set("per_page", "1")
	if branch != "" {
		q.Set("branch", branch)
	}
	listURL := fmt.Sprintf("%s/repos/%s/%s/actions/workflows/%d/runs?%s",
		c.baseURL, owner, repo, workflowID, q.Encode())

	var runs WorkflowRunsResponse
	if err := c.getJSON(ctx, listURL, &runs); err != nil {
		return nil, err
	}
	if len(runs.WorkflowRuns) == 0 {
		return nil, nil
	}
	return &runs.WorkflowRuns[0], nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", provider.ErrBuildNotFound, url)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: check GITHUB_TOKEN", provider.ErrAuthFailed)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GitHub API error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
