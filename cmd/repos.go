package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/git-tracker/internal/usecase"
)

func newReposCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Lists, adds and removes tracked repositories",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Lists tracked repositories",
			Args:  cobra.NoArgs,
			RunE:  runReposList,
		},
		&cobra.Command{
			Use:   "add <github-url>",
			Short: "Starts tracking a GitHub repository",
			Args:  cobra.ExactArgs(1),
			RunE:  runReposAdd,
		},
		&cobra.Command{
			Use:     "rm <id>",
			Aliases: []string{"delete"},
			Short:   "Stops tracking a repository",
			Args:    cobra.ExactArgs(1),
			RunE:    runReposRemove,
		},
	)
	return cmd
}

func runReposList(cmd *cobra.Command, _ []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	repos, err := e.tracker.FetchRepos(cmd.Context())
	if err != nil {
		return err
	}
	if e.json {
		return e.printJSON(repos)
	}
	if len(repos) == 0 {
		e.printf("No nodes tracked yet.\n")
		return nil
	}
	e.printf("%s\n", e.repoTable(repos))
	return nil
}

func runReposAdd(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	dash := usecase.NewDashboard(e.tracker, e.reporter(), e.logger)
	repo, err := dash.AddRepo(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if e.json {
		return e.printJSON(repo)
	}
	e.printf("Tracking %s (#%d).\n", repo.FullName(), repo.ID)
	return nil
}

func runReposRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	e, err := newEnv(cmd)
	if err != nil {
		return err
	}
	dash := usecase.NewDashboard(e.tracker, e.reporter(), e.logger)
	if err := dash.DeleteRepo(cmd.Context(), id); err != nil {
		return err
	}
	e.printf("Stopped tracking #%d. %s nodes remain.\n", id, e.num(len(dash.Snapshot().Value.Repos)))
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid repository id %q", s)
	}
	return id, nil
}
