package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-tracker/internal/usecase"
)

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <id>",
		Short: "Runs the telemetry agent for one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			report, err := usecase.NewMetrics(e.tracker, id, e.reporter(), e.logger).Load(cmd.Context())
			if err != nil {
				return err
			}
			if e.json {
				return e.printJSON(report)
			}
			c := report.Current
			e.printf("%s\n", report.Repo.FullName())
			e.printf("Stars %s · Views %s (%s unique) · Clones %s (%s unique)\n",
				e.num(c.Stars), e.num(c.Views), e.num(c.UniqueViews), e.num(c.Clones), e.num(c.UniqueClones))
			if report.Summary != "" {
				e.printf("\n%s\n", report.Summary)
			}
			return nil
		},
	}
}
