package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-tracker/internal/config"
	"github.com/naka-gawa/git-tracker/internal/logging"
	"github.com/naka-gawa/git-tracker/internal/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Opens the interactive dashboard",
		Long: `Opens the interactive dashboard. The terminal belongs to the UI while it
runs, so logs are appended to log_file (default ` + config.DefaultLogFile + `).`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logFile, err := logging.Open(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	e, err := envFor(cmd, cfg, logFile.Logger())
	if err != nil {
		return err
	}
	upstream, err := e.upstream(false)
	if err != nil {
		return err
	}
	e.logger.Printf("TUI: session opened against %s", e.cfg.APIURL)

	app := tui.NewApp(tui.Options{
		Tracker:  e.tracker,
		Upstream: upstream,
		Platform: e.cfg.Platform(),
		Logger:   e.logger,
		Context:  cmd.Context(),
	})
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		return fmt.Errorf("failed to run the interactive dashboard: %w", err)
	}
	return nil
}
