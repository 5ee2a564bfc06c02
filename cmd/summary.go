package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/usecase"
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <id>",
		Short: "Generates an AI summary and social post for a repository",
		Long:  `Asks the backend to analyze a repository and draft a post for LinkedIn or X. Every call runs a fresh generation.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runSummary,
	}
	cmd.Flags().StringP("platform", "p", "", "Target platform: linkedin or x (default from config)")
	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	platform := e.cfg.Platform()
	if p, _ := cmd.Flags().GetString("platform"); p != "" {
		if platform, err = domain.ParsePlatform(p); err != nil {
			return err
		}
	}

	summary := usecase.NewSummary(e.tracker, id, platform, e.reporter(), e.logger)
	if err := summary.Load(cmd.Context()); err != nil {
		return err
	}
	result := summary.View().Analysis.Value
	if e.json {
		return e.printJSON(result)
	}
	e.printf("Summary\n%s\n\n%s post\n%s\n", result.Summary, platformLabel(summary.Platform()), result.Post)
	return nil
}

func platformLabel(p domain.Platform) string {
	if p == domain.PlatformX {
		return "X"
	}
	return "LinkedIn"
}
