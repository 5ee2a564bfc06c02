package cmd

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-tracker/internal/domain"
	"github.com/naka-gawa/git-tracker/internal/usecase"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Shows totals and every tracked repository",
		Long:  `Fetches the dashboard snapshot from the backend: aggregate stars, views and clones plus one row per tracked repository.`,
		Args:  cobra.NoArgs,
		RunE:  runDashboard,
	}
	cmd.Flags().StringP("filter", "f", "", "Only show repositories whose name or owner contains this text")
	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	dash := usecase.NewDashboard(e.tracker, e.reporter(), e.logger)
	filter, _ := cmd.Flags().GetString("filter")
	dash.SetFilter(filter)

	snap, err := dash.Load(cmd.Context())
	if err != nil {
		return err
	}
	repos := dash.Filtered()
	if e.json {
		snap.Repos = repos
		return e.printJSON(snap)
	}

	e.printf("Nodes %s · Stars %s · Views %s · Clones %s\n",
		e.num(snap.TotalRepos), e.num(snap.TotalStars), e.num(snap.TotalViews), e.num(snap.TotalClones))
	switch {
	case len(snap.Repos) == 0:
		e.printf("No nodes tracked yet. Add one with \"git-tracker repos add <url>\".\n")
		return nil
	case len(repos) == 0:
		e.printf("No nodes match %q.\n", filter)
		return nil
	}
	e.printf("%s\n", e.repoTable(repos))
	if snap.LastUpdated != "" {
		e.printf("Last updated %s\n", snap.LastUpdated)
	}
	return nil
}

// repoTable renders repos one per row.
func (e *env) repoTable(repos []domain.Repo) string {
	rows := make([][]string, 0, len(repos))
	for _, r := range repos {
		delta := "-"
		if d, ok := r.StarDelta(); ok {
			delta = e.printer.Sprintf("%+d", d)
		}
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			r.FullName(),
			e.num(r.Stars),
			delta,
			e.num(r.Views),
			e.num(r.Clones),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NODE", "STARS", "Δ", "VIEWS", "CLONES").
		Rows(rows...).
		String()
}
