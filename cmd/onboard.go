package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-tracker/internal/usecase"
)

func newOnboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard <github-url>",
		Short: "Connects the first repository",
		Long: `Runs the onboarding flow non-interactively: the repository is optionally
checked on GitHub, then added to the backend.`,
		Args: cobra.ExactArgs(1),
		RunE: runOnboard,
	}
	cmd.Flags().Bool("verify", false, "Check the repository on GitHub before adding it")
	return cmd
}

func runOnboard(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	verify, _ := cmd.Flags().GetBool("verify")
	upstream, err := e.upstream(verify)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	wizard := usecase.NewOnboarding(e.tracker, upstream, e.reporter(), e.logger)
	if _, err := wizard.Next(ctx); err != nil {
		return err
	}
	wizard.SetURL(args[0])
	if _, err := wizard.Next(ctx); err != nil {
		return err
	}
	repo, verified := wizard.Connected()
	if _, err := wizard.Next(ctx); err != nil {
		return err
	}

	if e.json {
		return e.printJSON(map[string]any{"repo": repo, "upstream": verified})
	}
	if verified != nil {
		e.printf("GitHub: %s, %s stars.\n", verified.FullName, e.num(verified.Stars))
	}
	e.printf("Connected %s (#%d). Run \"git-tracker dashboard\" to see it.\n", repo.FullName(), repo.ID)
	return nil
}
