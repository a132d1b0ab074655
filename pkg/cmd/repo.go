package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// repoCommand returns the dynamically registered command for one
// repository alias, carrying the env subcommands scoped to that repo:
//
//	switchyard db env ls
//	switchyard db env set DB_HOST localhost
//
// Together with the aliases command this gives the original short-hand
// shell workflow, `db env ls` after eval'ing `switchyard aliases`.
func repoCommand(alias string) *cli.Command {
	return &cli.Command{
		Name:  alias,
		Usage: "Manage repo " + alias,
		Commands: []*cli.Command{
			{
				Name:  "env",
				Usage: "Manage environment variables",
				Commands: []*cli.Command{
					{
						Name:  "ls",
						Usage: "List environment variables",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							ws, err := requireWorkspace()
							if err != nil {
								return err
							}

							repo, err := ws.Repository(alias)
							if err != nil {
								return err
							}

							return listRepoEnv(ws, repo)
						},
					},
					{
						Name:      "set",
						Usage:     "Set an environment variable",
						ArgsUsage: "<KEY> <value>",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							ws, err := requireWorkspace()
							if err != nil {
								return err
							}

							if cmd.Args().Len() != 2 {
								return errors.Errorf("usage: switchyard %s env set <KEY> <value>", alias)
							}

							return setEnvKey(ws, alias, cmd.Args().Get(0), cmd.Args().Get(1))
						},
					},
				},
			},
		},
	}
}
