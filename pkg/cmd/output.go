package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/switchyard-dev/switchyard/pkg/config"
)

// colorFor maps a configured color name to a printable color. Unknown
// names fall back to white so a typo in the config never breaks output.
func colorFor(name string) *color.Color {
	switch name {
	case "red":
		return color.New(color.FgRed)
	case "green":
		return color.New(color.FgGreen)
	case "yellow":
		return color.New(color.FgYellow)
	case "blue":
		return color.New(color.FgBlue)
	case "magenta":
		return color.New(color.FgMagenta)
	case "cyan":
		return color.New(color.FgCyan)
	case "black":
		return color.New(color.FgBlack)
	default:
		return color.New(color.FgWhite)
	}
}

// repoHeader prints the colored separator line shown before each repo's
// output.
func repoHeader(w io.Writer, repo *config.Repository) {
	colorFor(repo.Color).Fprintf(w, "--- %s ---\n", repo.Name)
}

// statusHeader is the variant used by the status command, which folds the
// checked-out branch into the header.
func statusHeader(w io.Writer, repo *config.Repository, branch string) {
	colorFor(repo.Color).Fprintf(w, "--- [%s] %s ---\n", branch, repo.Name)
}

// confirm asks the operator a yes/no question, defaulting to no. Only an
// explicit y/yes proceeds.
func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N] ", prompt)

	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
