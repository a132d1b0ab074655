package alembic

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/envfile"
)

const (
	// StatusTimeout bounds the alembic current query. It's generous
	// because a cold database connection may take a while to establish.
	StatusTimeout = 25 * time.Second

	// MigrateTimeout bounds a downgrade or upgrade run. Migrations run
	// DDL and legitimately take longer than read-only queries.
	MigrateTimeout = 30 * time.Second
)

// ErrTimeout marks an alembic invocation that exceeded its bound. A hung
// migration engine is reported distinctly so callers don't confuse it
// with a migration that ran and failed.
var ErrTimeout = errors.New("alembic command timed out")

// locateRegex recovers a revision id from alembic's complaint when the
// database points at a revision whose script is gone.
var locateRegex = regexp.MustCompile(`Can't locate revision identified by '([a-zA-Z0-9]+)'`)

type (
	// Runner executes alembic commands for one repository, using the
	// repo's .venv-local executable and the connection settings from its
	// env file.
	Runner struct {
		repoDir string
		envFile string
	}
)

// NewRunner creates a Runner for the repository at repoDir. envFile is
// the repo-relative env file merged into the subprocess environment
// (database connection settings live there).
func NewRunner(repoDir, envFile string) *Runner {
	return &Runner{repoDir: repoDir, envFile: envFile}
}

// Current returns the database's currently applied revision id.
//
// When alembic itself cannot locate the applied revision's script, the id
// is recovered from the error message; the database still knows where it
// is even if the current branch doesn't. An empty result is an error:
// planning cannot start without a known revision.
func (r *Runner) Current(ctx context.Context) (string, error) {
	stdout, stderr, err := r.run(ctx, StatusTimeout, "current")
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return "", err
		}

		if rev := missingRevisionFromError(stderr); rev != "" {
			return rev, nil
		}

		return "", errors.Wrap(err, "failed to query current database revision")
	}

	if rev := ParseCurrentOutput(stdout); rev != "" {
		return rev, nil
	}

	return "", errors.New("could not determine current database revision; database may be unreachable")
}

// Downgrade unwinds the database to the given revision.
func (r *Runner) Downgrade(ctx context.Context, rev string) error {
	if _, stderr, err := r.run(ctx, MigrateTimeout, "downgrade", rev); err != nil {
		return wrapRunError(err, "downgrade", stderr)
	}

	return nil
}

// UpgradeHead replays migrations up to the current branch's head.
func (r *Runner) UpgradeHead(ctx context.Context) error {
	if _, stderr, err := r.run(ctx, MigrateTimeout, "upgrade", "head"); err != nil {
		return wrapRunError(err, "upgrade", stderr)
	}

	return nil
}

// ParseCurrentOutput extracts the applied revision id from alembic
// current output, typically "abc123def456 (head)". Revision ids are
// short alphanumeric tokens of at least 12 characters; INFO noise lines
// are skipped.
func ParseCurrentOutput(out string) string {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "INFO") {
			continue
		}

		for _, part := range strings.Fields(line) {
			if len(part) >= 12 && isAlnum(part) {
				return part
			}
		}
	}

	return ""
}

func missingRevisionFromError(stderr string) string {
	if m := locateRegex.FindStringSubmatch(stderr); m != nil {
		return m[1]
	}

	return ""
}

func isAlnum(s string) bool {
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}

	return len(s) > 0
}

func wrapRunError(err error, op, stderr string) error {
	if errors.Is(err, ErrTimeout) {
		return errors.Wrapf(err, "%s did not finish within %s; check the database connection", op, MigrateTimeout)
	}

	if msg := strings.TrimSpace(stderr); msg != "" {
		return errors.Wrapf(err, "%s failed: %s", op, msg)
	}

	return errors.Wrapf(err, "%s failed", op)
}

// run executes the repo's venv alembic with the env file merged into the
// environment. stdout and stderr are always returned so callers can mine
// them even on failure.
func (r *Runner) run(ctx context.Context, timeout time.Duration, args ...string) (string, string, error) {
	bin, err := r.binPath()
	if err != nil {
		return "", "", err
	}

	env, err := r.subprocessEnv()
	if err != nil {
		return "", "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = r.repoDir
	cmd.Env = env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return stdout.String(), stderr.String(), errors.Wrapf(ErrTimeout, "after %s", timeout)
		}

		return stdout.String(), stderr.String(), errors.Wrapf(err, "alembic %s", strings.Join(args, " "))
	}

	return stdout.String(), stderr.String(), nil
}

func (r *Runner) binPath() (string, error) {
	bin := filepath.Join(r.repoDir, ".venv", "bin", "alembic")
	if _, err := os.Stat(bin); err != nil {
		return "", errors.Errorf(
			"alembic not found in venv at %s; set up the repo's virtual environment first", r.repoDir,
		)
	}

	return bin, nil
}

func (r *Runner) subprocessEnv() ([]string, error) {
	env := os.Environ()
	env = append(env, "VIRTUAL_ENV="+filepath.Join(r.repoDir, ".venv"))

	vars, err := envfile.ParseFile(filepath.Join(r.repoDir, r.envFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read env file")
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, k+"="+envfile.Normalize(vars[k]))
	}

	return env, nil
}
