package envfile_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	. "github.com/switchyard-dev/switchyard/pkg/envfile"
)

func TestParse(t *testing.T) {
	content := `# database settings
DB_HOST=localhost
DB_PORT=5432
QUOTED="hello world"
  INDENTED=ok

not a var
export IGNORED=yes
`

	vars, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"DB_HOST":  "localhost",
		"DB_PORT":  "5432",
		"QUOTED":   `"hello world"`,
		"INDENTED": "ok",
	}, vars)
}

func TestParseFileMissing(t *testing.T) {
	vars, err := ParseFile(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	require.Empty(t, vars)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"value"`, "value"},
		{`'value'`, "value"},
		{`  value  `, "value"},
		{`"mismatched'`, `"mismatched'`},
		{``, ``},
		{`"`, `"`},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Normalize(tt.in), "input: %q", tt.in)
	}
}

func TestUpdateKey(t *testing.T) {
	t.Run("updates existing key preserving quotes", func(t *testing.T) {
		path := writeEnv(t, "DB_HOST=\"localhost\"\nDB_PORT=5432\n")

		changed, err := UpdateKey(path, "DB_HOST", "db.internal")
		require.NoError(t, err)
		require.True(t, changed)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "DB_HOST=\"db.internal\"\nDB_PORT=5432\n", string(content))
	})

	t.Run("appends missing key", func(t *testing.T) {
		path := writeEnv(t, "DB_HOST=localhost\n")

		changed, err := UpdateKey(path, "DB_NAME", "app")
		require.NoError(t, err)
		require.True(t, changed)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "DB_HOST=localhost\nDB_NAME=app\n", string(content))
	})

	t.Run("no-op when value unchanged", func(t *testing.T) {
		path := writeEnv(t, "DB_HOST='localhost'\n")

		changed, err := UpdateKey(path, "DB_HOST", "localhost")
		require.NoError(t, err)
		require.False(t, changed)
	})

	t.Run("creates missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")

		changed, err := UpdateKey(path, "KEY", "value")
		require.NoError(t, err)
		require.True(t, changed)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, "KEY=value\n", string(content))
	})
}

func TestValidate(t *testing.T) {
	t.Run("assumed matching conflict", func(t *testing.T) {
		conflicts := Validate(Rules{}, map[string]map[string]string{
			"api": {"DB_PORT": "5432"},
			"web": {"DB_PORT": "5433"},
		})

		require.Len(t, conflicts, 1)
		require.Contains(t, conflicts[0], "DB_PORT")
	})

	t.Run("quoting differences are not conflicts", func(t *testing.T) {
		conflicts := Validate(Rules{}, map[string]map[string]string{
			"api": {"DB_HOST": `"localhost"`},
			"web": {"DB_HOST": "localhost"},
		})

		require.Empty(t, conflicts)
	})

	t.Run("ignored keys are exempt", func(t *testing.T) {
		conflicts := Validate(Rules{IgnoreKeys: []string{"PORT"}}, map[string]map[string]string{
			"api": {"PORT": "8080"},
			"web": {"PORT": "3000"},
		})

		require.Empty(t, conflicts)
	})

	t.Run("match group crosses key names", func(t *testing.T) {
		rules := Rules{MatchGroups: []MatchGroup{
			{Name: "sql-server", Keys: []string{"DB_HOST", "SQL_SERVER"}},
		}}

		conflicts := Validate(rules, map[string]map[string]string{
			"api": {"DB_HOST": "db.internal"},
			"web": {"SQL_SERVER": "other.internal"},
		})

		require.Len(t, conflicts, 1)
		require.Contains(t, conflicts[0], "sql-server")
	})

	t.Run("match group internal conflict", func(t *testing.T) {
		rules := Rules{MatchGroups: []MatchGroup{
			{Name: "db", Keys: []string{"DB_HOST", "DATABASE_HOST"}},
		}}

		conflicts := Validate(rules, map[string]map[string]string{
			"api": {"DB_HOST": "a", "DATABASE_HOST": "b"},
		})

		require.Len(t, conflicts, 1)
		require.Contains(t, conflicts[0], "internal conflict")
	})

	t.Run("deterministic ordering", func(t *testing.T) {
		envs := map[string]map[string]string{
			"api": {"A": "1", "B": "x"},
			"web": {"A": "2", "B": "y"},
		}

		first := Validate(Rules{}, envs)
		for i := 0; i < 5; i++ {
			require.Equal(t, first, Validate(Rules{}, envs))
		}
	})
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
