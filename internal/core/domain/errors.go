package domain

import "go.trai.ch/zerr"

var (
	// ErrCommandAlreadyExists is returned when attempting to add a command with a name that already exists.
	ErrCommandAlreadyExists = zerr.New("command already exists")

	// ErrMissingPrerequisite is returned when a command depends on a command that doesn't exist in the graph.
	ErrMissingPrerequisite = zerr.New("missing prerequisite")

	// ErrCycleDetected is returned when a cycle is detected between command prerequisites.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnknownCommand is returned when a requested command is not defined.
	ErrUnknownCommand = zerr.New("unknown command")

	// ErrNoCommandsSpecified is returned when no commands are specified for the run command.
	ErrNoCommandsSpecified = zerr.New("no commands specified")

	// ErrInvalidCommandName is returned when a command name contains invalid characters.
	ErrInvalidCommandName = zerr.New("command name can only contain alphanumeric characters, hyphens and underscores")

	// ErrEmptyCommand is returned when a command has neither steps nor a builtin.
	ErrEmptyCommand = zerr.New("command has no steps")

	// ErrEmptyStep is returned when a step has an empty argument vector.
	ErrEmptyStep = zerr.New("step has no program")

	// ErrUnknownRecipe is returned when the configuration names a recipe that does not exist.
	ErrUnknownRecipe = zerr.New("unknown recipe, expected 'python' or 'none'")

	// ErrRequiredFileMissing is returned when a file a command requires (e.g., the dependency manifest) is absent.
	ErrRequiredFileMissing = zerr.New("required file not found")

	// ErrStepFailed is returned when an external step exits unsuccessfully.
	ErrStepFailed = zerr.New("step failed")

	// ErrInterrupted is returned when the user quits the interactive view before the run finishes.
	ErrInterrupted = zerr.New("interrupted")

	// ErrRunFailed is returned when one of the requested commands fails.
	ErrRunFailed = zerr.New("run failed")

	// ErrCommandExecutionFailed is returned when a command execution fails.
	ErrCommandExecutionFailed = zerr.New("command execution failed")

	// ErrBuiltinNotRegistered is returned when a builtin command has no implementation.
	ErrBuiltinNotRegistered = zerr.New("builtin not registered")

	// ErrInputNotFound is returned when a declared input file or directory is not found.
	ErrInputNotFound = zerr.New("input not found")

	// ErrInputHashComputationFailed is returned when input hash computation fails.
	ErrInputHashComputationFailed = zerr.New("failed to compute input hash")

	// ErrStoreCreateFailed is returned when the run state directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create run state directory")

	// ErrStoreReadFailed is returned when the run info cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read run info")

	// ErrStoreUnmarshalFailed is returned when the run info cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal run info")

	// ErrStoreMarshalFailed is returned when the run info cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal run info")

	// ErrStoreWriteFailed is returned when the run info cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write run info")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrDotenvReadFailed is returned when a dotenv file exists but cannot be parsed.
	ErrDotenvReadFailed = zerr.New("failed to read dotenv file")

	// ErrFailedToGetRoot is returned when the project root path cannot be determined.
	ErrFailedToGetRoot = zerr.New("failed to get absolute path of project root")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrWriteHashFailed is returned when writing the hash to the digest fails.
	ErrWriteHashFailed = zerr.New("failed to write hash to digest")

	// ErrRedirectFailed is returned when a step's stdout redirect target cannot be prepared or committed.
	ErrRedirectFailed = zerr.New("failed to redirect step output")
)
