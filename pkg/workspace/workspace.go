package workspace

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/config"
	"github.com/switchyard-dev/switchyard/pkg/consts"
)

// Workspace ties a configuration to the directory it was loaded from.
type Workspace struct {
	root string
	cfg  *config.Config
}

// New creates a Workspace from an already loaded configuration. Most
// callers should use Open instead.
func New(root string, cfg *config.Config) *Workspace {
	return &Workspace{root: root, cfg: cfg}
}

// Open loads the workspace rooted at the given directory. A missing
// configuration file is reported with a hint to run `switchyard init`.
func Open(root string) (*Workspace, error) {
	path := filepath.Join(root, consts.ConfigFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%s not found in %s. Run: switchyard init", consts.ConfigFile, root)
		}

		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}

	return New(root, cfg), nil
}

// Init writes a starter configuration to the given directory. It refuses
// to overwrite an existing configuration file.
func Init(root string) error {
	path := filepath.Join(root, consts.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("%s already exists in %s", consts.ConfigFile, root)
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", path)
	}

	return config.Default().Save(path)
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string { return w.root }

// Config returns the loaded workspace configuration.
func (w *Workspace) Config() *config.Config { return w.cfg }

// ConfigPath returns the path of the workspace configuration file.
func (w *Workspace) ConfigPath() string {
	return filepath.Join(w.root, consts.ConfigFile)
}

// RepoPath resolves a repository name to its directory under the
// workspace root.
func (w *Workspace) RepoPath(name string) string {
	return filepath.Join(w.root, name)
}

// RepoExists reports whether the named repository is present as a git
// repository under the workspace root.
func (w *Workspace) RepoExists(name string) bool {
	if info, err := os.Stat(w.RepoPath(name)); err != nil || !info.IsDir() {
		return false
	}

	info, err := os.Stat(filepath.Join(w.RepoPath(name), ".git"))

	return err == nil && info.IsDir()
}

// Repository finds a configured repository by alias or name.
func (w *Workspace) Repository(selector string) (*config.Repository, error) {
	if repo := w.cfg.Repository(selector); repo != nil {
		return repo, nil
	}

	return nil, errors.Errorf("no repository matches %q", selector)
}

// Preflight verifies the workspace is in a usable state: every
// configured repository is present as a git repository and repository
// aliases are unique. Configuration shape itself is validated at load
// time.
func (w *Workspace) Preflight() error {
	seen := make(map[string]string, len(w.cfg.Repositories))

	for _, repo := range w.cfg.Repositories {
		if !w.RepoExists(repo.Name) {
			return errors.Errorf("configured repo %q missing or not a git repo", repo.Name)
		}

		if repo.Alias == "" {
			continue
		}

		if other, ok := seen[repo.Alias]; ok {
			return errors.Errorf("alias %q is not unique (used by %s and %s)", repo.Alias, other, repo.Name)
		}
		seen[repo.Alias] = repo.Name
	}

	return nil
}
