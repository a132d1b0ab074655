package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/switchyard-dev/switchyard/pkg/config"
	"github.com/urfave/cli/v3"
)

// aliasesCmd returns the CLI command that emits shell alias lines for the
// configured repository aliases, so `db env ls` works at the shell after
// evaluating the output.
//
// Example usage:
//
//	# In .zshrc or .bashrc
//	eval "$(switchyard aliases)"
func aliasesCmd() *cli.Command {
	return &cli.Command{
		Name:  "aliases",
		Usage: "Emit shell alias lines for configured repositories",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// Emit nothing rather than an error so a broken config can't
			// wedge shell startup.
			if currentWorkspace == nil {
				return nil
			}

			WriteAliases(os.Stdout, currentWorkspace.Config())
			return nil
		},
	}
}

// WriteAliases writes one shell alias line per repository that has an
// alias configured.
func WriteAliases(w io.Writer, cfg *config.Config) {
	for _, repo := range cfg.Repositories {
		if repo.Alias != "" {
			fmt.Fprintf(w, "alias %s='switchyard %s'\n", repo.Alias, repo.Alias)
		}
	}
}
