// Package cmd provides CLI commands for the switchyard tool.
//
// This package implements the command-line interface for switchyard,
// providing commands for branch switching with database migration
// coordination, workspace status, and env file management across the
// configured repositories.
//
// # Available Commands
//
// The cmd package currently provides:
//   - init: Write a starter switchyard.yaml in the workspace root
//   - switch: Switch every repository to a branch, migrating the database
//   - plan: Show the migration plan for a branch switch without executing
//   - status: Show git status for every repository
//   - fetch, pull: Run the corresponding git command in every repository
//   - env ls/set/check: Inspect and update repository env files
//   - aliases: Emit shell alias lines for the configured repositories
//
// # Command Structure
//
// Each command is implemented as a separate function that returns a
// *cli.Command, following the urfave/cli/v3 pattern. The root command's
// Before hook loads the workspace configuration when one is present;
// commands that need it fail with a pointer at `switchyard init` when it
// isn't.
//
// One command named after each configured repository alias is registered
// dynamically, so `switchyard db env ls` works alongside
// `switchyard env ls db`.
//
// # Example Usage
//
//	switchyard init                      # Start a workspace config
//	switchyard switch feature/billing    # Switch all repos, migrate the DB
//	switchyard plan feature/billing      # Inspect the plan first
//	switchyard status                    # Colored per-repo git status
//	switchyard env check                 # Cross-repo env consistency
//	eval "$(switchyard aliases)"         # Shell aliases for repo commands
package cmd
