package config_test

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/switchyard-dev/switchyard/pkg/config"
	"github.com/switchyard-dev/switchyard/pkg/envfile"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/switchyard.yaml
var testConfigYAML string

func TestLoadConfig(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		config, err := LoadConfig(strings.NewReader(testConfigYAML))
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		// Invalid YAML
		config, err := LoadConfig(strings.NewReader("invalid: yaml: ["))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to unmarshal workspace config")

		// Empty input
		config, err = LoadConfig(strings.NewReader(""))
		require.Error(t, err)
		require.Nil(t, config)

		// Wrong schema version
		config, err = LoadConfig(strings.NewReader("schema_version: 2"))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "unsupported schema_version: 2")
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		config, err := LoadConfigFile("testdata/switchyard.yaml")
		require.NoError(t, err)
		validateTestConfig(t, config)
	})

	t.Run("error", func(t *testing.T) {
		config, err := LoadConfigFile("nonexistent.yaml")
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "failed to open file")
	})
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Run("rejects second db-alembic repository", func(t *testing.T) {
		yamlData := `
schema_version: 1
repositories:
  - name: db-one
    type: db-alembic
    alembic:
      revisions_dir: versions
  - name: db-two
    type: db-alembic
    alembic:
      revisions_dir: versions
`
		config, err := LoadConfig(strings.NewReader(yamlData))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "only one db-alembic repository is allowed")
	})

	t.Run("rejects db-alembic without revisions_dir", func(t *testing.T) {
		yamlData := `
schema_version: 1
repositories:
  - name: billing-db
    type: db-alembic
`
		config, err := LoadConfig(strings.NewReader(yamlData))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "alembic.revisions_dir is required")
	})

	t.Run("rejects unknown repository type", func(t *testing.T) {
		yamlData := `
schema_version: 1
repositories:
  - name: billing-api
    type: db-mongo
`
		config, err := LoadConfig(strings.NewReader(yamlData))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "unknown type: db-mongo")
	})

	t.Run("rejects repository without name", func(t *testing.T) {
		yamlData := `
schema_version: 1
repositories:
  - type: app
`
		config, err := LoadConfig(strings.NewReader(yamlData))
		require.Error(t, err)
		require.Nil(t, config)
		require.Contains(t, err.Error(), "repository missing name")
	})

	t.Run("applies repository defaults", func(t *testing.T) {
		yamlData := `
schema_version: 1
repositories:
  - name: billing-api
`
		config, err := LoadConfig(strings.NewReader(yamlData))
		require.NoError(t, err)
		require.Equal(t, TypeApp, config.Repositories[0].Type)
		require.Equal(t, ".env", config.Repositories[0].EnvFile)
	})
}

func TestConfigLookups(t *testing.T) {
	config, err := LoadConfig(strings.NewReader(testConfigYAML))
	require.NoError(t, err)

	t.Run("db repository", func(t *testing.T) {
		db := config.DBRepository()
		require.NotNil(t, db)
		require.Equal(t, "billing-db", db.Name)

		require.Nil(t, Default().DBRepository())
	})

	t.Run("by alias", func(t *testing.T) {
		repo := config.Repository("api")
		require.NotNil(t, repo)
		require.Equal(t, "billing-api", repo.Name)
	})

	t.Run("by name", func(t *testing.T) {
		repo := config.Repository("billing-db")
		require.NotNil(t, repo)
		require.Equal(t, "db", repo.Alias)
	})

	t.Run("unknown selector", func(t *testing.T) {
		require.Nil(t, config.Repository("payments"))
	})
}

func TestConfigSave(t *testing.T) {
	config, err := LoadConfig(strings.NewReader(testConfigYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "switchyard.yaml")
	require.NoError(t, config.Save(path))

	reloaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	require.Equal(t, config, reloaded)

	// Saving again produces identical bytes
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, reloaded.Save(path))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(first), string(second))
}

func TestDefault(t *testing.T) {
	config := Default()
	require.Equal(t, 1, config.SchemaVersion)
	require.Equal(t, "default", config.Workspace.Name)
	require.Equal(t, envfile.ModeStrict, config.Env.Mode)
	require.Equal(t, envfile.ModeWarn, config.Env.MissingEnvFile)
	require.Empty(t, config.Repositories)
}

// validateTestConfig validates that a config contains the expected test data
func validateTestConfig(t *testing.T, config *Config) {
	t.Helper()
	require.NotNil(t, config)
	require.Equal(t, "acme", config.Workspace.Name)
	require.Equal(t, envfile.ModeStrict, config.Env.Mode)
	require.Equal(t, []string{"DEBUG"}, config.Env.IgnoreKeys)
	require.Len(t, config.Env.MatchGroups, 1)
	require.Equal(t, "database-host", config.Env.MatchGroups[0].Name)
	require.Len(t, config.Repositories, 2)
	require.Equal(t, "billing-api", config.Repositories[0].Name)
	require.Equal(t, TypeApp, config.Repositories[0].Type)
	require.Equal(t, "billing-db", config.Repositories[1].Name)
	require.Equal(t, TypeDBAlembic, config.Repositories[1].Type)
	require.Equal(t, ".env.local", config.Repositories[1].EnvFile)
	require.Equal(t, "migrations/versions", config.Repositories[1].Alembic.RevisionsDir)
}
