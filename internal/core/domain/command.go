package domain

// Builtin identifies a command implemented inside chore instead of by external steps.
type Builtin uint8

const (
	// BuiltinNone marks a command made of external steps.
	BuiltinNone Builtin = iota
	// BuiltinHelp prints the command listing.
	BuiltinHelp
)

// String returns the configuration name of the builtin.
func (b Builtin) String() string {
	switch b {
	case BuiltinHelp:
		return "help"
	default:
		return ""
	}
}

// Step is a single external program invocation.
// Argv is executed directly, without a shell.
type Step struct {
	Argv []string
	// Stdout, when set, receives the step's standard output instead of the
	// terminal. The file is replaced only if the step succeeds.
	Stdout string
}

// Command represents a named, ordered sequence of steps.
// It uses InternedString for fields that are frequently repeated to save memory.
type Command struct {
	Name          InternedString
	Description   string
	Steps         []Step
	Prerequisites []InternedString
	Requires      []InternedString
	Inputs        []InternedString
	Outputs       []InternedString
	Environment   map[string]string
	WorkingDir    InternedString
	Activate      bool
	Builtin       Builtin
}

// Cacheable reports whether the command declares inputs that allow it to be
// skipped when nothing changed since its last successful run.
func (c *Command) Cacheable() bool {
	return c.Builtin == BuiltinNone && len(c.Inputs) > 0
}
