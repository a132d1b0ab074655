package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single git invocation. Local git operations are
// fast; anything slower than this points at a hung credential helper or a
// wedged remote.
const DefaultTimeout = 30 * time.Second

type (
	// Repo runs git commands against a single repository directory.
	Repo struct {
		dir     string
		timeout time.Duration
	}
)

// New creates a Repo for the repository at dir.
func New(dir string) *Repo {
	return NewWithTimeout(dir, DefaultTimeout)
}

// NewWithTimeout creates a Repo whose git invocations are bounded by the
// given timeout.
func NewWithTimeout(dir string, timeout time.Duration) *Repo {
	return &Repo{dir: dir, timeout: timeout}
}

// Dir returns the repository directory this Repo operates on.
func (r *Repo) Dir() string { return r.dir }

// CurrentBranch returns the short name of the checked-out branch.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}

// Branches returns the short names of all local branches.
func (r *Repo) Branches(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}

	var branches []string
	for _, line := range strings.Split(out, "\n") {
		if b := strings.TrimSpace(line); b != "" {
			branches = append(branches, b)
		}
	}

	return branches, nil
}

// ListTree returns the names of the direct children of dir as committed
// on branch, without touching the working copy. The listing is
// non-recursive; subdirectories appear as bare names.
//
// A dir that doesn't exist on the branch is reported as an error by git;
// callers that treat a missing directory as an empty history should
// swallow it.
func (r *Repo) ListTree(ctx context.Context, branch, dir string) ([]string, error) {
	out, err := r.run(ctx, "ls-tree", "--name-only", branch+":"+strings.TrimSuffix(dir, "/"))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}

	return names, nil
}

// ShowFile returns the content of path as committed on branch.
func (r *Repo) ShowFile(ctx context.Context, branch, path string) (string, error) {
	return r.run(ctx, "show", branch+":"+path)
}

// Checkout switches the working copy to branch.
func (r *Repo) Checkout(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "checkout", branch)
	return err
}

// Fetch updates remote-tracking refs from origin.
func (r *Repo) Fetch(ctx context.Context) error {
	_, err := r.run(ctx, "fetch", "origin")
	return err
}

// Pull fetches and integrates the current branch's upstream.
func (r *Repo) Pull(ctx context.Context) error {
	_, err := r.run(ctx, "pull")
	return err
}

// StatusShort returns the output of git status -sb.
func (r *Repo) StatusShort(ctx context.Context) (string, error) {
	return r.run(ctx, "status", "-sb")
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.Wrapf(ctx.Err(), "git %s timed out after %s", args[0], r.timeout)
		}

		return "", errors.Wrapf(err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
