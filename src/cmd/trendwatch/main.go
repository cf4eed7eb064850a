// Package main provides the trendwatch CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trendwatch/src/broker"
	"trendwatch/src/config"
	"trendwatch/src/logger"
	"trendwatch/src/provider"
	"trendwatch/src/store"
	"trendwatch/src/tui"
	"trendwatch/src/watch"

	// Providers register themselves on import.
	_ "trendwatch/src/buildkite"
	_ "trendwatch/src/githubactions"
)

var appConfig *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trendwatch",
	Short: "Trendwatch - build result trend classification for CI pipelines",
	Long: `Trendwatch classifies CI build results against their job's history,
turning a raw pass/fail into a trend like FIXED or STILL FAILING.

Supported providers: Buildkite (BUILDKITE_API_TOKEN) and
GitHub Actions (GITHUB_TOKEN).

Optional backends:
- DATABASE_URL enables the Postgres build store (in-memory otherwise)
- REDPANDA_BROKERS publishes trend events to Redpanda (in-process otherwise)`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		appConfig, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(1)
		}
	},
}

var trendJSON bool

// trendCmd classifies a single build against its live history
var trendCmd = &cobra.Command{
	Use:   "trend [build-url]",
	Short: "Classify one build's trend",
	Long: `Fetch a build, walk back through its predecessors as far as needed,
and print the resulting trend.

The build must be finished; trends are only defined for terminal outcomes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		prov, build, err := fetchBuild(ctx, args[0])
		if err != nil {
			fail(err)
		}

		trend, previous, err := provider.Trend(ctx, prov, build)
		if err != nil {
			fail(err)
		}

		if trendJSON {
			out := map[string]any{
				"url":         build.URL,
				"job_key":     build.JobKey,
				"number":      build.Number,
				"state":       tui.CleanState(build.State),
				"outcome":     build.Outcome.String(),
				"trend":       trend.String(),
				"description": trend.Description(),
			}
			if previous != nil {
				out["previous_outcome"] = previous.Outcome.String()
				out["previous_number"] = previous.Number
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				fail(err)
			}
			fmt.Println(string(data))
			return
		}

		fmt.Printf("%s #%d: %s\n", build.JobKey, build.Number, trend.Description())
		fmt.Printf("  outcome: %s\n", build.Outcome)
		if previous != nil {
			fmt.Printf("  compared against: #%d (%s)\n", previous.Number, previous.Outcome)
		} else {
			fmt.Println("  compared against: no prior comparable build")
		}
	},
}

// watchCmd follows a pipeline and publishes trend events
var watchCmd = &cobra.Command{
	Use:   "watch [pipeline-url]",
	Short: "Watch a pipeline and publish trend events",
	Long: `Poll a pipeline for newly finished builds. Each one is classified
against the stored history, saved, and published to the trend topics.

The URL of any build in the pipeline identifies what to watch.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ref, err := provider.ParseURL(args[0])
		if err != nil {
			fail(provider.WrapError(err))
		}

		token, err := appConfig.TokenFor(ref.Provider)
		if err != nil {
			fail(err)
		}

		prov, err := provider.GetProvider(ref, token)
		if err != nil {
			fail(err)
		}

		st, err := newStore()
		if err != nil {
			fail(err)
		}
		defer st.Close()

		brk, err := newBroker()
		if err != nil {
			fail(err)
		}
		defer brk.Close()

		opts := []watch.Option{watch.WithInterval(appConfig.PollInterval)}
		if watchChangesOnly {
			opts = append(opts, watch.WithChangesOnly())
		}

		watcher := watch.NewWatcher(prov, st, brk, logger.NewConsoleLogger(), opts...)
		if err := watcher.Run(ctx, ref); err != nil && err != context.Canceled {
			fail(err)
		}
	},
}

var watchChangesOnly bool

var historyPlain bool

// historyCmd shows a job's recorded trend history
var historyCmd = &cobra.Command{
	Use:   "history [job-key]",
	Short: "Browse a job's recorded trend history",
	Long: `Show the trends recorded for a job, newest first.

Job keys look like "acme/deploy" for Buildkite pipelines and
"owner/repo/12345@main" for GitHub Actions workflows. Only builds a
watcher has recorded appear here.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		jobKey := args[0]

		st, err := newStore()
		if err != nil {
			fail(err)
		}
		defer st.Close()

		if !historyPlain {
			if err := tui.Run(st, jobKey, 50); err != nil {
				fail(err)
			}
			return
		}

		recs, err := st.ListRecent(cmd.Context(), jobKey, 50)
		if err != nil {
			if store.IsNotFound(err) {
				fmt.Printf("No recorded builds for %s\n", jobKey)
				return
			}
			fail(err)
		}
		for _, rec := range recs {
			fmt.Printf("#%-6d %-10s %-16s %s\n",
				rec.Number, rec.Outcome, rec.Trend.Description(),
				rec.RecordedAt.Local().Format("2006-01-02 15:04"))
		}
	},
}

// fetchBuild resolves a build URL to a provider and a fetched build.
func fetchBuild(ctx context.Context, url string) (provider.Provider, *provider.Build, error) {
	ref, err := provider.ParseURL(url)
	if err != nil {
		return nil, nil, provider.WrapError(err)
	}

	token, err := appConfig.TokenFor(ref.Provider)
	if err != nil {
		return nil, nil, err
	}

	prov, err := provider.GetProvider(ref, token)
	if err != nil {
		return nil, nil, err
	}

	build, err := prov.FetchBuild(ctx, ref)
	if err != nil {
		return nil, nil, provider.WrapError(err)
	}
	return prov, build, nil
}

// newStore picks Postgres when DATABASE_URL is set, memory otherwise.
func newStore() (store.Store, error) {
	if appConfig.DatabaseURL != "" {
		return store.NewPostgresStore(appConfig.DatabaseURL)
	}
	return store.NewMemoryStore(), nil
}

// newBroker picks Redpanda when REDPANDA_BROKERS is set, in-process otherwise.
func newBroker() (broker.Broker, error) {
	if len(appConfig.RedpandaBrokers) > 0 {
		return broker.NewRedpandaBroker(appConfig.RedpandaBrokers)
	}
	return broker.NewInMemoryBroker(), nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", provider.WrapError(err))
	os.Exit(1)
}

func init() {
	trendCmd.Flags().BoolVar(&trendJSON, "json", false, "print the classification as JSON")
	watchCmd.Flags().BoolVar(&watchChangesOnly, "changes-only", false, "publish trend events only for state changes")
	historyCmd.Flags().BoolVar(&historyPlain, "plain", false, "print plain text instead of the TUI")

	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
