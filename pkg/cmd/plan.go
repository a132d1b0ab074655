package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/git"
	"github.com/switchyard-dev/switchyard/pkg/planner"
	"github.com/urfave/cli/v3"
)

// planCmd returns the CLI command that computes and prints the migration
// plan for switching the db-alembic repository to a branch, without
// executing anything or touching the checkout. Useful for inspecting
// what `switchyard switch` would do to the database.
//
// Example usage:
//
//	switchyard plan feature/billing
func planCmd() *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Show the migration plan for a branch switch",
		ArgsUsage: "<branch>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			target := cmd.Args().First()
			if target == "" {
				return errors.New("a target branch is required")
			}

			ws, err := requireWorkspace()
			if err != nil {
				return err
			}

			repo := ws.Config().DBRepository()
			if repo == nil {
				return errors.New("no db-alembic repository configured")
			}

			repoHeader(os.Stdout, repo)

			plan, _, err := computePlan(ctx, ws, repo, git.New(ws.RepoPath(repo.Name)), target)
			if err != nil {
				return err
			}

			if plan == nil || (!plan.NeedsDowngrade && !plan.NeedsUpgrade) {
				fmt.Println("Database already in sync; no migration needed.")
				return nil
			}

			writePlan(os.Stdout, plan)
			return nil
		},
	}
}

// writePlan renders a plan in the order it would execute: downgrade
// first, then upgrade.
func writePlan(w io.Writer, plan *planner.Plan) {
	fmt.Fprintf(w, "Current database revision: %s\n", plan.CurrentDBRevision)

	if plan.NeedsDowngrade {
		fmt.Fprintf(w, "  downgrade to %s\n", plan.CommonRevision)
	}
	if plan.NeedsUpgrade {
		fmt.Fprintf(w, "  upgrade to head (%s)\n", plan.TargetHeadRevision)
	}
}
