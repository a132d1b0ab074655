package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/config"
	"github.com/switchyard-dev/switchyard/pkg/envfile"
	"github.com/switchyard-dev/switchyard/pkg/workspace"
	"github.com/urfave/cli/v3"
)

// keyRegex is the shape of an acceptable env variable name.
var keyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// envCmd returns the CLI command group for env file management across
// the workspace's repositories.
//
// Example usage:
//
//	# List env vars, for one repo or all of them
//	switchyard env ls db
//	switchyard env ls
//
//	# Update a key, preserving the existing quoting style
//	switchyard env set db DB_HOST localhost
//
//	# Cross-repo consistency check (exit code 4 on conflict in strict mode)
//	switchyard env check
func envCmd() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "Manage repository env files",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List env variables for one repository or all of them",
				ArgsUsage: "[repo]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ws, err := requireWorkspace()
					if err != nil {
						return err
					}

					if selector := cmd.Args().First(); selector != "" {
						repo, err := ws.Repository(selector)
						if err != nil {
							return err
						}

						return listRepoEnv(ws, repo)
					}

					for i := range ws.Config().Repositories {
						if err := listRepoEnv(ws, &ws.Config().Repositories[i]); err != nil {
							return err
						}

						fmt.Println()
					}

					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Set an env variable in a repository's env file",
				ArgsUsage: "<repo> <KEY> <value>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ws, err := requireWorkspace()
					if err != nil {
						return err
					}

					if cmd.Args().Len() != 3 {
						return errors.New("usage: switchyard env set <repo> <KEY> <value>")
					}

					return setEnvKey(ws, cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2))
				},
			},
			{
				Name:  "check",
				Usage: "Check env consistency across repositories",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ws, err := requireWorkspace()
					if err != nil {
						return err
					}

					return checkEnvs(ws)
				},
			},
		},
	}
}

// listRepoEnv prints a repository's env vars under its colored header,
// sorted by key. A missing env file is handled per the configured
// missing_env_file policy.
func listRepoEnv(ws *workspace.Workspace, repo *config.Repository) error {
	path := filepath.Join(ws.RepoPath(repo.Name), repo.EnvFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		switch ws.Config().Env.MissingEnvFile {
		case envfile.ModeStrict:
			return errors.Errorf("env file missing: %s", path)
		case envfile.ModeIgnore:
			return nil
		default:
			fmt.Printf("%s %s (missing)\n", repo.Name, path)
			return nil
		}
	}

	vars, err := envfile.ParseFile(path)
	if err != nil {
		return err
	}

	colorFor(repo.Color).Printf("--- %s (%s) ---\n", repo.Name, repo.EnvFile)

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, vars[k])
	}

	return nil
}

func setEnvKey(ws *workspace.Workspace, selector, key, value string) error {
	repo, err := ws.Repository(selector)
	if err != nil {
		return err
	}

	if !keyRegex.MatchString(key) {
		return errors.Errorf("invalid env key %q, expected [A-Za-z_][A-Za-z0-9_]*", key)
	}

	changed, err := envfile.UpdateKey(filepath.Join(ws.RepoPath(repo.Name), repo.EnvFile), key, value)
	if err != nil {
		return err
	}

	if !changed {
		fmt.Println("Value unchanged.")
		return nil
	}

	fmt.Printf("Updated %s.\n", key)

	// Updating one repo can break agreement with the others, so check
	// right away while the operator is still looking.
	return checkEnvs(ws)
}

// checkEnvs validates env consistency across all repositories and prints
// any conflicts. In strict mode conflicts fail the command with exit
// code 4; in warn mode they're only reported.
func checkEnvs(ws *workspace.Workspace) error {
	rules := ws.Config().Env

	envs := make(map[string]map[string]string)
	for _, repo := range ws.Config().Repositories {
		path := filepath.Join(ws.RepoPath(repo.Name), repo.EnvFile)

		if _, err := os.Stat(path); os.IsNotExist(err) {
			switch rules.MissingEnvFile {
			case envfile.ModeStrict:
				return errors.Errorf("env file missing: %s", path)
			case envfile.ModeIgnore:
			default:
				fmt.Fprintf(os.Stderr, "warning: env file missing: %s\n", path)
			}

			continue
		}

		vars, err := envfile.ParseFile(path)
		if err != nil {
			return err
		}

		envs[repo.Name] = vars
	}

	conflicts := envfile.Validate(rules, envs)
	if len(conflicts) == 0 {
		fmt.Println("No env conflicts.")
		return nil
	}

	for _, c := range conflicts {
		fmt.Fprintln(os.Stderr, c)
	}

	if rules.Mode == envfile.ModeStrict {
		return cli.Exit(fmt.Sprintf("%d env conflict(s) detected", len(conflicts)), 4)
	}

	fmt.Fprintf(os.Stderr, "warning: %d env conflict(s) detected\n", len(conflicts))
	return nil
}
