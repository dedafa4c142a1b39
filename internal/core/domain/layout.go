package domain

import "path/filepath"

const (
	// ChoreDirName is the name of the internal project directory.
	ChoreDirName = ".chore"

	// StateDirName is the name of the run state directory.
	StateDirName = "state"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "chore.yaml"

	// EnvDirOverrideVar overrides the configured environment directory.
	EnvDirOverrideVar = "CHORE_ENV_DIR"

	// DefaultEnvDir is the virtual environment directory used when none is configured.
	DefaultEnvDir = ".venv"

	// DefaultManifest is the dependency manifest installed into the environment.
	DefaultManifest = "requirements.txt"

	// DefaultLockFile is the file freeze writes the resolved dependency set to.
	DefaultLockFile = "requirements.lock"

	// DefaultScript is the script the experiments command runs.
	DefaultScript = "experiments.py"

	// DefaultPython is the interpreter used to create the environment.
	DefaultPython = "python3"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultChorePath returns the default root directory for chore metadata.
func DefaultChorePath() string {
	return ChoreDirName
}

// DefaultStatePath returns the default path for the run state store.
// It joins .chore and state.
func DefaultStatePath() string {
	return filepath.Join(ChoreDirName, StateDirName)
}
