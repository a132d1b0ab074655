package cmd

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/consts"
	"github.com/switchyard-dev/switchyard/pkg/workspace"
	"github.com/urfave/cli/v3"
)

var currentWorkspace *workspace.Workspace

// Run creates and executes the main switchyard CLI application with the
// given version and command-line arguments. This function serves as the
// main entry point for all CLI operations and handles global
// configuration.
//
// The function creates a CLI application with:
//   - Global --dir flag for specifying the workspace root
//   - Workspace auto-detection based on switchyard.yaml presence
//   - Command registration, including one command per repository alias
//   - Context propagation for cancellation support
//
// The application automatically detects a workspace by looking for
// switchyard.yaml in the specified directory. If found, it initializes
// the global currentWorkspace variable for use by subcommands; commands
// that require a workspace report a hint to run `switchyard init`
// otherwise.
//
// Example usage:
//
//	# Run in current directory (auto-detect workspace)
//	err := Run(ctx, "v1.0.0", []string{"switchyard", "status"})
//
//	# Run against a specific workspace root
//	err := Run(ctx, "v1.0.0", []string{"switchyard", "--dir", "/path/to/workspace", "switch", "main"})
func Run(ctx context.Context, version string, args []string) error {
	app := &cli.Command{
		Name:  "switchyard",
		Usage: "A tool for branch-aware multi-repo workspace management",
		Description: `switchyard is a CLI tool that keeps a multi-repository workspace in sync
when switching branches. For the repository carrying Alembic migration
scripts it plans and applies the database downgrade/upgrade needed to
match the target branch before checking it out.`,
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "the workspace root directory",
				Value:       ".",
				DefaultText: "Current directory",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			root := cmd.String("dir")

			// Work relative to the workspace root from here on
			if err := os.Chdir(root); err != nil {
				return ctx, err
			}

			_, err := os.Stat(consts.ConfigFile)
			if os.IsNotExist(err) {
				return ctx, nil
			}

			if err != nil {
				return ctx, err
			}

			pwd, _ := os.Getwd()
			ws, err := workspace.Open(pwd)
			if err != nil {
				return ctx, err
			}

			currentWorkspace = ws
			return ctx, nil
		},
		Commands: []*cli.Command{
			initCmd(),
			switchCmd(),
			planCmd(),
			statusCmd(),
			fetchCmd(),
			pullCmd(),
			envCmd(),
			aliasesCmd(),
		},
	}

	// Register one command per repository alias so `switchyard db env ls`
	// works. The workspace at the default root is used; a broken or
	// missing config just means no dynamic commands, the Before hook
	// reports the real problem when a command runs.
	if ws, err := workspace.Open("."); err == nil {
		for _, repo := range ws.Config().Repositories {
			if repo.Alias != "" {
				app.Commands = append(app.Commands, repoCommand(repo.Alias))
			}
		}
	}

	return app.Run(ctx, args)
}

// requireWorkspace returns the workspace loaded by the root Before hook,
// running preflight checks on it first.
func requireWorkspace() (*workspace.Workspace, error) {
	if currentWorkspace == nil {
		return nil, errors.Errorf("%s not found. Run: switchyard init", consts.ConfigFile)
	}

	if err := currentWorkspace.Preflight(); err != nil {
		return nil, err
	}

	return currentWorkspace, nil
}
