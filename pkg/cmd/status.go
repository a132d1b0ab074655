package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/switchyard-dev/switchyard/pkg/git"
	"github.com/urfave/cli/v3"
)

// statusCmd returns the CLI command that prints a compact git status for
// every repository: a colored header carrying the checked-out branch,
// the ahead/behind tracking summary when one exists, and the dirty
// paths.
//
// Example usage:
//
//	switchyard status
func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show git status for every repository",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ws, err := requireWorkspace()
			if err != nil {
				return err
			}

			for i := range ws.Config().Repositories {
				repo := &ws.Config().Repositories[i]
				repoGit := git.New(ws.RepoPath(repo.Name))

				out, err := repoGit.StatusShort(ctx)
				if err != nil {
					statusHeader(os.Stdout, repo, "unknown")
					fmt.Fprintf(os.Stderr, "failed to check status: %v\n", err)
					continue
				}

				st := git.ParseStatus(out)
				statusHeader(os.Stdout, repo, st.Branch)

				if st.Tracking != "" {
					color.New(color.FgYellow).Printf("  [%s]\n", st.Tracking)
				}
				for _, change := range st.Changes {
					fmt.Println(change)
				}

				fmt.Println()
			}

			return nil
		},
	}
}
