package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/switchyard-dev/switchyard/pkg/git"
	"github.com/urfave/cli/v3"
)

// fetchCmd returns the CLI command that runs `git fetch origin` in every
// repository.
func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch origin in every repository",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return eachRepo(ctx, func(ctx context.Context, repoGit *git.Repo) error {
				if err := repoGit.Fetch(ctx); err != nil {
					return err
				}

				fmt.Println("Fetched origin")
				return nil
			})
		},
	}
}

// pullCmd returns the CLI command that runs `git pull` in every
// repository.
func pullCmd() *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Pull the current branch in every repository",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return eachRepo(ctx, func(ctx context.Context, repoGit *git.Repo) error {
				if err := repoGit.Pull(ctx); err != nil {
					return err
				}

				fmt.Println("Pulled")
				return nil
			})
		},
	}
}

// eachRepo runs fn against every configured repository under its colored
// header. A failing repo is reported and the remaining repos still run.
func eachRepo(ctx context.Context, fn func(context.Context, *git.Repo) error) error {
	ws, err := requireWorkspace()
	if err != nil {
		return err
	}

	for i := range ws.Config().Repositories {
		repo := &ws.Config().Repositories[i]
		repoHeader(os.Stdout, repo)

		if err := fn(ctx, git.New(ws.RepoPath(repo.Name))); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}

		fmt.Println()
	}

	return nil
}
