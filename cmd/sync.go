package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-tracker/internal/usecase"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Asks the backend to re-poll GitHub for every repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			dash := usecase.NewDashboard(e.tracker, e.reporter(), e.logger)
			results, err := dash.Sync(cmd.Context())
			if err != nil {
				return err
			}
			if e.json {
				return e.printJSON(results)
			}
			for _, r := range results {
				if r.Message != "" {
					e.printf("%-40s %s: %s\n", r.Repo, r.Status, r.Message)
					continue
				}
				e.printf("%-40s %s\n", r.Repo, r.Status)
			}
			e.printf("Synced %s nodes.\n", e.num(len(results)))
			return nil
		},
	}
}
