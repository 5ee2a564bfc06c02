package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-tracker/internal/resource"
	"github.com/naka-gawa/git-tracker/internal/usecase"
)

func newRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo <id>",
		Short: "Shows one repository with its history and commit timeline",
		Args:  cobra.ExactArgs(1),
		RunE:  runRepo,
	}
	cmd.Flags().IntP("commits", "n", 10, "Number of commits to show")
	return cmd
}

func runRepo(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	detail := usecase.NewRepoDetail(e.tracker, id, e.reporter(), e.logger)
	d, err := detail.Load(cmd.Context())
	if err != nil {
		return err
	}
	if detail.Snapshot().State == resource.StateEmpty {
		return fmt.Errorf("node #%d: %w", id, usecase.ErrRepoNotFound)
	}
	if e.json {
		return e.printJSON(d)
	}

	r := d.Repo
	e.printf("%s\n%s\n\n", r.FullName(), r.URL)
	e.printf("Stars %s · Views %s · Clones %s\n", e.num(r.Stars), e.num(r.Views), e.num(r.Clones))
	if r.LastChecked != nil {
		e.printf("Last checked %s\n", *r.LastChecked)
	}

	t := d.Telemetry
	if t.Samples > 0 {
		e.printf("\nTelemetry over %s samples\n", e.num(t.Samples))
		e.printf("  star growth   %s (%s%%)\n", e.printer.Sprintf("%+d", t.StarsGrowth), e.printer.Sprintf("%.1f", t.StarsGrowthPct))
		e.printf("  views         mean %s, peak %s\n", e.printer.Sprintf("%.1f", t.MeanViews), e.printer.Sprintf("%.0f", t.PeakViews))
		e.printf("  clones        median %s\n", e.printer.Sprintf("%.1f", t.MedianClones))
	} else {
		e.printf("\nNo telemetry recorded yet.\n")
	}

	limit, _ := cmd.Flags().GetInt("commits")
	if len(d.Commits) == 0 {
		e.printf("\nNo commits.\n")
		return nil
	}
	e.printf("\nCommits\n")
	for i, c := range d.Commits {
		if limit > 0 && i >= limit {
			e.printf("  … %s more\n", e.num(len(d.Commits)-limit))
			break
		}
		e.printf("  %s  %s  %s  %s\n", c.ShortSHA(), c.Commit.Author.Date.Format("2006-01-02"), c.Commit.Author.Name, c.Headline())
	}
	return nil
}
