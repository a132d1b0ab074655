package revision

import (
	"context"
	"path"
	"strings"
)

const (
	scriptExt   = ".py"
	packageInit = "__init__.py"
)

type (
	// TreeReader reads files from a branch's committed tree without
	// checking the branch out. Implemented by the git package; faked in
	// tests.
	TreeReader interface {
		// ListTree returns the names of direct children of dir on branch.
		// A dir that doesn't exist on the branch yields an empty list.
		ListTree(ctx context.Context, branch, dir string) ([]string, error)

		// ShowFile returns the content of path as committed to branch.
		ShowFile(ctx context.Context, branch, path string) (string, error)
	}

	// Store parses the migration scripts visible in a branch's revisions
	// directory into Records.
	Store struct {
		reader TreeReader
	}
)

// NewStore creates a Store backed by the given tree reader.
func NewStore(r TreeReader) *Store {
	return &Store{reader: r}
}

// ForBranch returns the revision records for the scripts directly inside
// dir as committed on branch. Nested subdirectories are not descended
// into; scripts moved there are treated as archived and excluded, which
// matches Alembic's non-recursive version location behavior.
//
// Scripts with no extractable revision id are skipped silently. A branch
// on which dir doesn't exist produces an empty (valid) history.
func (s *Store) ForBranch(ctx context.Context, branch, dir string) ([]*Record, error) {
	dir = strings.TrimSuffix(dir, "/")

	names, err := s.reader.ListTree(ctx, branch, dir)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Missing directory on this branch is a valid, empty history.
		return nil, nil
	}

	var records []*Record
	for _, name := range names {
		if !strings.HasSuffix(name, scriptExt) || strings.HasSuffix(name, packageInit) {
			continue
		}

		rel := path.Join(dir, name)
		content, err := s.reader.ShowFile(ctx, branch, rel)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		if rec, ok := ParseScript(rel, content); ok {
			records = append(records, rec)
		}
	}

	return records, nil
}
