// Package mcp exposes trend classification to MCP clients over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"trendwatch/src/config"
	"trendwatch/src/provider"
	"trendwatch/src/result"
	"trendwatch/src/store"
)

// Server is the MCP server for trendwatch.
type Server struct {
	mcpServer *server.MCPServer
	cfg       *config.Config
	store     store.Store
}

// NewServer creates a new MCP server. The store backs the
// job_trend_history tool; pass an in-memory store when no database is
// configured.
func NewServer(cfg *config.Config, s store.Store) *Server {
	mcpSrv := server.NewMCPServer(
		"trendwatch",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer: mcpSrv,
		cfg:       cfg,
		store:     s,
	}
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	trendTool := mcp.NewTool("build_trend",
		mcp.WithDescription("Classify a CI build's result trend against the job's history. Returns the trend (e.g. FIXED, STILL_FAILING), the build's outcome, and the prior build it was compared against. The build must be finished."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Build URL (Buildkite or GitHub Actions)"),
		),
	)

	historyTool := mcp.NewTool("job_trend_history",
		mcp.WithDescription("List the recorded trend sequence of a job, newest first. Only builds a watcher has recorded appear here."),
		mcp.WithString("job_key",
			mcp.Required(),
			mcp.Description("Job key, e.g. \"acme/deploy\" for Buildkite or \"owner/repo/12345@main\" for GitHub Actions"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max builds to return (default: 20)"),
		),
	)

	s.mcpServer.AddTool(trendTool, s.handleBuildTrend)
	s.mcpServer.AddTool(historyTool, s.handleJobTrendHistory)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

// handleBuildTrend handles the build_trend tool call.
func (s *Server) handleBuildTrend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url := request.GetString("url", "")
	if url == "" {
		return mcp.NewToolResultError("url parameter is required"), nil
	}

	report, err := s.classify(ctx, url)
	if err != nil {
		return mcp.NewToolResultError(provider.WrapError(err).Error()), nil
	}

	jsonBytes, err := json.Marshal(report)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleJobTrendHistory handles the job_trend_history tool call.
func (s *Server) handleJobTrendHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobKey := request.GetString("job_key", "")
	if jobKey == "" {
		return mcp.NewToolResultError("job_key parameter is required"), nil
	}

	limit := request.GetInt("limit", 20)

	recs, err := s.store.ListRecent(ctx, jobKey, limit)
	if err != nil {
		if store.IsNotFound(err) {
			return mcp.NewToolResultError(fmt.Sprintf("no recorded builds for job: %s", jobKey)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
	}

	jsonBytes, err := json.Marshal(historyReport(jobKey, recs))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// historyReport shapes stored records into the tool response.
func historyReport(jobKey string, recs []store.BuildRecord) HistoryReport {
	report := HistoryReport{JobKey: jobKey}
	for _, rec := range recs {
		report.Builds = append(report.Builds, HistoryEntry{
			Number:     rec.Number,
			URL:        rec.URL,
			Outcome:    rec.Outcome.String(),
			Trend:      rec.Trend.String(),
			RecordedAt: rec.RecordedAt.UTC().Format(time.RFC3339),
		})
	}
	return report
}

// classify fetches a build and classifies it against its live history.
func (s *Server) classify(ctx context.Context, url string) (*TrendReport, error) {
	ref, err := provider.ParseURL(url)
	if err != nil {
		return nil, err
	}

	token, err := s.cfg.TokenFor(ref.Provider)
	if err != nil {
		return nil, err
	}

	prov, err := provider.GetProvider(ref, token)
	if err != nil {
		return nil, err
	}

	build, err := prov.FetchBuild(ctx, ref)
	if err != nil {
		return nil, err
	}

	trend, previous, err := provider.Trend(ctx, prov, build)
	if err != nil {
		return nil, err
	}

	return trendReport(build, trend, previous), nil
}

// trendReport shapes a classified build into the tool response.
func trendReport(build *provider.Build, trend result.Trend, previous *provider.Build) *TrendReport {
	report := &TrendReport{
		URL:         build.URL,
		JobKey:      build.JobKey,
		Number:      build.Number,
		Outcome:     build.Outcome.String(),
		Trend:       trend.String(),
		Description: trend.Description(),
	}
	if previous != nil {
		report.PreviousOutcome = previous.Outcome.String()
		report.PreviousNumber = previous.Number
	}
	return report
}
