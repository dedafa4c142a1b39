// Package output creates termenv outputs for the places chore prints to.
// NO_COLOR always disables styling.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// Surface is where output ends up, which decides its color profile.
type Surface int

const (
	// Interactive output detects what the terminal supports.
	Interactive Surface = iota
	// CI output sticks to the basic ANSI colors every log viewer renders.
	CI
)

// Profile returns the color profile for the surface.
func (s Surface) Profile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if s == CI {
		return termenv.ANSI
	}
	return termenv.EnvColorProfile()
}

// New creates an output writing to w with the surface's profile.
// A nil writer means stderr.
func New(w io.Writer, s Surface, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	opts = append(opts, termenv.WithProfile(s.Profile()), termenv.WithTTY(true))
	return termenv.NewOutput(w, opts...)
}
