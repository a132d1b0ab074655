package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/alembic"
	"github.com/switchyard-dev/switchyard/pkg/config"
	"github.com/switchyard-dev/switchyard/pkg/git"
	"github.com/switchyard-dev/switchyard/pkg/planner"
	"github.com/switchyard-dev/switchyard/pkg/revision"
	"github.com/switchyard-dev/switchyard/pkg/workspace"
	"github.com/urfave/cli/v3"
)

// switchCmd returns the CLI command that switches every repository in the
// workspace to the given branch. For the db-alembic repository the
// database is migrated to match the target branch before the checkout:
// the plan is computed from the two branches' committed revision scripts
// and the database's live revision, a destructive downgrade is confirmed
// with the operator, and the downgrade/upgrade pair is applied in that
// fixed order.
//
// A migration failure aborts the checkout of the db repository unless
// --force is given, in which case the branch is switched anyway and the
// schema is left for the operator to reconcile.
//
// Example usage:
//
//	# Switch the whole workspace to a feature branch
//	switchyard switch feature/billing
//
//	# Skip the downgrade confirmation (CI, scripts)
//	switchyard switch feature/billing --yes
//
//	# Check the branch out even if the migration fails
//	switchyard switch feature/billing --force
func switchCmd() *cli.Command {
	return &cli.Command{
		Name:      "switch",
		Usage:     "Switch all repositories to a branch, migrating the database",
		ArgsUsage: "<branch>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "skip the confirmation prompt before a downgrade",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "check the branch out even if the migration fails",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			target := cmd.Args().First()
			if target == "" {
				return errors.New("a target branch is required")
			}

			ws, err := requireWorkspace()
			if err != nil {
				return err
			}

			return runSwitch(ctx, ws, target, cmd.Bool("yes"), cmd.Bool("force"))
		},
	}
}

func runSwitch(ctx context.Context, ws *workspace.Workspace, target string, yes, force bool) error {
	for i := range ws.Config().Repositories {
		repo := &ws.Config().Repositories[i]
		repoHeader(os.Stdout, repo)

		repoGit := git.New(ws.RepoPath(repo.Name))

		if err := repoGit.Fetch(ctx); err != nil {
			// Keep going on fetch failures; the local refs may be stale
			// but the switch can still work offline.
			fmt.Fprintf(os.Stderr, "git fetch failed: %v\n", err)
		}

		if repo.Type == config.TypeDBAlembic {
			if err := migrateForSwitch(ctx, ws, repo, repoGit, target, yes); err != nil {
				if !force {
					return err
				}

				fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
				fmt.Println("Proceeding with checkout anyway (--force); the schema may not match the branch.")
			}
		}

		if err := repoGit.Checkout(ctx, target); err != nil {
			return errors.Wrapf(err, "failed to checkout %s in %s", target, repo.Name)
		}

		fmt.Printf("Switched to branch '%s'\n\n", target)
	}

	return nil
}

// migrateForSwitch brings the database in line with the target branch
// before the db repository is checked out. The downgrade, when one is
// needed, is destructive and requires operator confirmation; declining
// aborts the whole switch without issuing any migration command.
func migrateForSwitch(ctx context.Context, ws *workspace.Workspace, repo *config.Repository, repoGit *git.Repo, target string, yes bool) error {
	plan, runner, err := computePlan(ctx, ws, repo, repoGit, target)
	if err != nil {
		return err
	}

	if plan == nil || (!plan.NeedsDowngrade && !plan.NeedsUpgrade) {
		fmt.Println("Database already in sync; no migration needed.")
		return nil
	}

	writePlan(os.Stdout, plan)

	if plan.NeedsDowngrade && !yes {
		if !confirm(os.Stdin, os.Stdout, fmt.Sprintf("Downgrade database to %s?", plan.CommonRevision)) {
			return errors.New("downgrade declined; branch switch aborted")
		}
	}

	slog.Info("Applying migration plan",
		"repo", repo.Name,
		"target", target,
		"downgrade", plan.NeedsDowngrade,
		"upgrade", plan.NeedsUpgrade,
	)

	result := alembic.NewExecutor(runner).Apply(ctx, plan)
	if result.Status == alembic.StatusFailed {
		return result.Error
	}

	if result.DowngradedTo != "" {
		fmt.Printf("Downgraded to %s\n", result.DowngradedTo)
	}
	if result.Upgraded {
		fmt.Println("Upgraded to head")
	}

	return nil
}

// computePlan queries the database's applied revision and plans the
// migration from the currently checked-out branch to target. The runner
// is returned alongside so the caller can execute the plan with the same
// env.
func computePlan(ctx context.Context, ws *workspace.Workspace, repo *config.Repository, repoGit *git.Repo, target string) (*planner.Plan, *alembic.Runner, error) {
	runner := alembic.NewRunner(ws.RepoPath(repo.Name), repo.EnvFile)

	current, err := runner.Current(ctx)
	if err != nil {
		return nil, nil, err
	}

	source, err := repoGit.CurrentBranch(ctx)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("Computing migration plan",
		"repo", repo.Name,
		"current_revision", current,
		"source", source,
		"target", target,
	)

	p := planner.New(revision.NewStore(repoGit), repoGit, repo.Alembic.RevisionsDir)

	plan, err := p.Plan(ctx, current, source, target)
	if err != nil {
		var planErr *planner.PlanError
		if errors.As(err, &planErr) && len(planErr.FoundInBranches) > 0 {
			fmt.Fprintf(os.Stderr, "Revision %s was found in: %v\n", planErr.MissingRevision, planErr.FoundInBranches)
			fmt.Fprintln(os.Stderr, "Check one of those branches out first, or downgrade the database manually.")
		}

		return nil, nil, err
	}

	return plan, runner, nil
}
