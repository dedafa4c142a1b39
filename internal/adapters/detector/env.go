// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode represents the rendering mode for the application.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTUI forces the interactive TUI renderer.
	ModeTUI
	// ModeLinear forces the linear CI renderer.
	ModeLinear
)

// ErrUnknownOutputMode is returned for an output mode flag that is not recognized.
var ErrUnknownOutputMode = zerr.New("unknown output mode")

// String returns the flag value selecting the mode.
func (m OutputMode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeLinear:
		return "linear"
	default:
		return "auto"
	}
}

// IsCI reports whether the CI environment variable marks a CI run.
func IsCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// DetectEnvironment returns the recommended output mode based on the environment.
// It checks if stdout is a TTY and if CI environment variables are set.
func DetectEnvironment() OutputMode {
	isTTY := term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // file descriptors fit in int

	if !isTTY || IsCI() {
		return ModeLinear
	}
	return ModeTUI
}

// ResolveMode applies the user's --output-mode flag to the auto-detected mode.
func ResolveMode(autoDetected OutputMode, userFlag string) (OutputMode, error) {
	switch userFlag {
	case "tui":
		return ModeTUI, nil
	case "linear", "ci":
		return ModeLinear, nil
	case "auto", "":
		return autoDetected, nil
	default:
		return autoDetected, zerr.With(zerr.Wrap(ErrUnknownOutputMode, "invalid output mode"), "mode", userFlag)
	}
}
