package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/switchyard-dev/switchyard/pkg/consts"
	"github.com/switchyard-dev/switchyard/pkg/envfile"
	"gopkg.in/yaml.v3"
)

type (
	// Config represents the workspace configuration for switchyard.
	//
	// One file at the workspace root describes every managed repository,
	// the env consistency rules applied across them, and which repository
	// carries the Alembic migration scripts.
	Config struct {
		// SchemaVersion is the configuration format version. Only
		// consts.SchemaVersion is accepted by this build.
		SchemaVersion int `yaml:"schema_version"`

		// Workspace contains workspace-level settings
		Workspace Workspace `yaml:"workspace"`

		// Env contains the cross-repository env consistency rules
		Env envfile.Rules `yaml:"env"`

		// Repositories lists every repository managed in this workspace
		Repositories []Repository `yaml:"repositories"`
	}

	// Workspace contains workspace-level settings.
	Workspace struct {
		// Name is a human-readable label for the workspace
		Name string `yaml:"name"`
	}

	// Repository describes one managed repository, located in a directory
	// named Name directly under the workspace root.
	Repository struct {
		// Name is the repository directory name under the workspace root
		Name string `yaml:"name"`

		// Alias is a short selector for the repository, unique within the
		// workspace, usable anywhere a repository name is accepted
		Alias string `yaml:"alias,omitempty"`

		// Type is either TypeApp or TypeDBAlembic. At most one repository
		// may be TypeDBAlembic.
		Type string `yaml:"type"`

		// EnvFile is the repository's env file, relative to the repository
		// root. Defaults to consts.DefaultEnvFile.
		EnvFile string `yaml:"env_file,omitempty"`

		// Color names the display color for the repository's output
		// headers (e.g. "cyan", "magenta")
		Color string `yaml:"color,omitempty"`

		// Alembic holds migration settings. Only meaningful for
		// TypeDBAlembic repositories.
		Alembic Alembic `yaml:"alembic,omitempty"`
	}

	// Alembic holds migration settings for the database repository.
	Alembic struct {
		// RevisionsDir is the directory containing migration scripts,
		// relative to the repository root
		RevisionsDir string `yaml:"revisions_dir"`
	}
)

// Repository types.
const (
	TypeApp       = "app"
	TypeDBAlembic = "db-alembic"
)

// Default returns a fresh configuration with sane defaults and no
// repositories, suitable as the starting point for `switchyard init`.
func Default() *Config {
	return &Config{
		SchemaVersion: consts.SchemaVersion,
		Workspace:     Workspace{Name: "default"},
		Env: envfile.Rules{
			Mode:           envfile.ModeStrict,
			MissingEnvFile: envfile.ModeWarn,
		},
	}
}

// LoadConfig parses a workspace configuration from the provided io.Reader.
//
// The function expects YAML-formatted configuration data. After decoding
// it validates the schema version, applies per-repository defaults, and
// enforces that at most one repository is of type db-alembic.
//
// Example:
//
//	yamlData := `
//	schema_version: 1
//	repositories:
//	  - name: billing-db
//	    type: db-alembic
//	    alembic:
//	      revisions_dir: migrations/versions
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
//
//	fmt.Println(cfg.Repositories[0].Name)
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal workspace config")
	}

	if cfg.SchemaVersion != consts.SchemaVersion {
		return nil, errors.Errorf("unsupported schema_version: %d", cfg.SchemaVersion)
	}

	for i := range cfg.Repositories {
		applyDefaults(&cfg.Repositories[i])
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigFile loads a workspace configuration from the specified file
// path. This is a convenience function that opens the file and calls
// LoadConfig.
//
// Example:
//
//	cfg, err := config.LoadConfigFile("switchyard.yaml")
//	if err != nil {
//		log.Fatal("Failed to load config:", err)
//	}
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Save writes the configuration to path with stable two-space indented
// YAML formatting, so repeated saves of the same configuration produce
// identical files.
func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.ModeFile)
	if err != nil {
		return errors.Wrapf(err, "failed to create file: %s", path)
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "failed to marshal workspace config")
	}

	return errors.Wrap(enc.Close(), "failed to flush workspace config")
}

// DBRepository returns the single db-alembic repository, or nil when the
// workspace has none configured.
func (c *Config) DBRepository() *Repository {
	for i := range c.Repositories {
		if c.Repositories[i].Type == TypeDBAlembic {
			return &c.Repositories[i]
		}
	}

	return nil
}

// Repository finds a repository by alias or name. The alias is checked
// first so a repository can't shadow another's alias with its name.
func (c *Config) Repository(selector string) *Repository {
	for i := range c.Repositories {
		if c.Repositories[i].Alias == selector {
			return &c.Repositories[i]
		}
	}

	for i := range c.Repositories {
		if c.Repositories[i].Name == selector {
			return &c.Repositories[i]
		}
	}

	return nil
}

func applyDefaults(repo *Repository) {
	if repo.Type == "" {
		repo.Type = TypeApp
	}
	if repo.EnvFile == "" {
		repo.EnvFile = consts.DefaultEnvFile
	}
}

func validate(cfg *Config) error {
	var dbRepos []string

	for _, repo := range cfg.Repositories {
		if repo.Name == "" {
			return errors.New("repository missing name")
		}

		switch repo.Type {
		case TypeApp:
		case TypeDBAlembic:
			dbRepos = append(dbRepos, repo.Name)
			if repo.Alembic.RevisionsDir == "" {
				return errors.Errorf("repository %s: alembic.revisions_dir is required for %s repositories", repo.Name, TypeDBAlembic)
			}
		default:
			return errors.Errorf("repository %s: unknown type: %s", repo.Name, repo.Type)
		}
	}

	if len(dbRepos) > 1 {
		return errors.Errorf("only one %s repository is allowed, found %d: %v", TypeDBAlembic, len(dbRepos), dbRepos)
	}

	return nil
}
