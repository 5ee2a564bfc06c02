// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/naka-gawa/git-tracker/internal/config"
	"github.com/naka-gawa/git-tracker/internal/gateway"
	"github.com/naka-gawa/git-tracker/internal/logging"
	"github.com/naka-gawa/git-tracker/internal/resource"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "git-tracker",
		Short: "A terminal client for the git-tracker backend.",
		Long: `git-tracker talks to a running git-tracker backend and shows the GitHub
repositories it tracks: stars, views, clones, commit timelines and
AI-generated social posts. Run "git-tracker tui" for the interactive dashboard.`,
		SilenceUsage: true,
	}

	// Persistent flags are available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("api-url", "", "Backend origin (overrides api_url from the config)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("json", false, "Print raw records as JSON")

	rootCmd.AddCommand(
		newDashboardCmd(),
		newReposCmd(),
		newSyncCmd(),
		newRepoCmd(),
		newSummaryCmd(),
		newMetricsCmd(),
		newHealthCmd(),
		newOnboardCmd(),
		newTUICmd(),
		newInitCmd(),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// env bundles what every command needs once flags have been parsed.
type env struct {
	cfg     config.Config
	logger  *log.Logger
	tracker gateway.Tracker
	out     io.Writer
	json    bool
	printer *message.Printer
}

// loadConfig reads the layered config and applies the --api-url flag on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.APIURL = apiURL
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// newEnv loads the config and wires a command that logs to stderr when
// --verbose is set.
func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return envFor(cmd, cfg, nil)
}

// envFor wires logger and tracker gateway around an already loaded config.
// A nil logger means "log to stderr when --verbose is set".
func envFor(cmd *cobra.Command, cfg config.Config, logger *log.Logger) (*env, error) {
	if logger == nil {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = logging.New(verbose, cmd.ErrOrStderr())
	}
	tracker, err := gateway.NewTrackerGateway(cfg.APIURL, nil, cfg.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracker gateway: %w", err)
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	return &env{
		cfg:     cfg,
		logger:  logger,
		tracker: tracker,
		out:     cmd.OutOrStdout(),
		json:    asJSON,
		printer: message.NewPrinter(language.AmericanEnglish),
	}, nil
}

// reporter sends failures to the debug log; commands also return them.
func (e *env) reporter() resource.Reporter {
	return resource.LogReporter{Logger: e.logger}
}

// upstream returns the GitHub verifier, or nil when verification is off.
// It is on when forced, when verify_upstream is set, or when a token is present.
func (e *env) upstream(force bool) (gateway.Upstream, error) {
	if !force && !e.cfg.VerifyUpstream && e.cfg.GitHubToken == "" {
		return nil, nil
	}
	gh, err := gateway.NewGitHubGateway(e.cfg.GitHubToken, e.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	return gh, nil
}

// printJSON marshals v into a pretty-printed JSON string.
func (e *env) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	_, err = fmt.Fprintln(e.out, string(data))
	return err
}

// num groups thousands, e.g. 12,345.
func (e *env) num(n int) string {
	return e.printer.Sprintf("%d", n)
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}
