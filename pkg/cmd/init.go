package cmd

import (
	"context"
	"fmt"

	"github.com/switchyard-dev/switchyard/pkg/consts"
	"github.com/switchyard-dev/switchyard/pkg/workspace"
	"github.com/urfave/cli/v3"
)

// initCmd returns the CLI command that writes a starter switchyard.yaml
// in the workspace root. The file is created with defaults and no
// repositories; edit it to add the workspace's repositories and env
// rules.
//
// Example usage:
//
//	# Start a workspace config in the current directory
//	switchyard init
//
//	# Or in a specific directory
//	switchyard --dir /path/to/workspace init
func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a starter configuration in the workspace root",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// The Before hook already moved us into the workspace root.
			if err := workspace.Init("."); err != nil {
				return err
			}

			fmt.Printf("Wrote %s. Add your repositories to it.\n", consts.ConfigFile)
			return nil
		},
	}
}
