package git

import "strings"

type (
	// Status is a parsed git status -sb listing.
	Status struct {
		// Branch is the local branch name from the header line.
		Branch string

		// Tracking holds the ahead/behind summary from the header, e.g.
		// "ahead 2, behind 1". Empty when in sync or untracked.
		Tracking string

		// Changes are the porcelain change lines, one per dirty path.
		Changes []string
	}
)

// ParseStatus parses git status -sb output. The header line carries the
// branch and optional tracking info in brackets; the remaining lines are
// change entries.
func ParseStatus(out string) Status {
	var st Status

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return st
	}

	header := strings.TrimPrefix(lines[0], "## ")
	if open := strings.Index(header, "["); open >= 0 {
		if end := strings.Index(header[open:], "]"); end >= 0 {
			st.Tracking = header[open+1 : open+end]
		}
		header = strings.TrimSpace(header[:open])
	}

	// Strip "...origin/branch" from "branch...origin/branch".
	if i := strings.Index(header, "..."); i >= 0 {
		header = header[:i]
	}
	st.Branch = header

	for _, line := range lines[1:] {
		if line != "" {
			st.Changes = append(st.Changes, line)
		}
	}

	return st
}
