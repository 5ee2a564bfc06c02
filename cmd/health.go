package cmd

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Checks that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			h, err := e.tracker.Health(cmd.Context())
			if err != nil {
				return err
			}
			if e.json {
				return e.printJSON(h)
			}
			e.printf("%s: %s (%s)\n", e.cfg.APIURL, h.Status, h.Timestamp)
			return nil
		},
	}
}
