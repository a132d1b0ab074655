package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the name of the workspace configuration file, expected
	// at the workspace root
	ConfigFile = "switchyard.yaml"

	// SchemaVersion is the configuration schema version this build reads
	// and writes
	SchemaVersion = 1

	// DefaultEnvFile is the env file name used when a repository doesn't
	// configure one
	DefaultEnvFile = ".env"
)
