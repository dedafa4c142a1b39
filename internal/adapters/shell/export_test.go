package shell

// Exported for white-box testing.
var (
	ResolveEnvironment = resolveEnvironment
	LookPath           = lookPath
)
