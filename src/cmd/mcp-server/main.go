// Package main provides the MCP server entry point for trendwatch.
// The server speaks the Model Context Protocol over stdio, exposing the
// build_trend and job_trend_history tools.
package main

import (
	"fmt"
	"log"
	"os"

	"trendwatch/src/config"
	"trendwatch/src/mcp"
	"trendwatch/src/store"

	// Providers register themselves on import.
	_ "trendwatch/src/buildkite"
	_ "trendwatch/src/githubactions"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		st, err = store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to Postgres: %v\n", err)
			os.Exit(1)
		}
	} else {
		st = store.NewMemoryStore()
	}
	defer st.Close()

	server := mcp.NewServer(cfg, st)
	if err := server.Run(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
