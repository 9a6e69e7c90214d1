// Package color provides small helpers for coloring CLI output with ANSI
// escape sequences.
//
//nolint:revive // package name conflicts with standard library
package color

// ANSI color codes
const (
	resetCode  = "\033[0m"
	grayCode   = "\033[90m"
	greenCode  = "\033[32m"
	yellowCode = "\033[33m"
	redCode    = "\033[31m"
	cyanCode   = "\033[36m"
)

// Color wraps text with an ANSI escape sequence.
type Color func(text string) string

// NewColor creates a color function with the specified ANSI code.
func NewColor(ansiCode string) Color {
	return func(text string) string {
		return ansiCode + text + resetCode
	}
}

// None returns text unchanged; used when color output is disabled.
func None(text string) string { return text }

// Predefined color functions
var (
	Gray   = NewColor(grayCode)
	Green  = NewColor(greenCode)
	Yellow = NewColor(yellowCode)
	Red    = NewColor(redCode)
	Cyan   = NewColor(cyanCode)
)

// Palette selects the colors the CLI uses, or passthroughs when disabled.
type Palette struct {
	Allowed  Color
	Rejected Color
	Reason   Color
	Muted    Color
}

// NewPalette returns a colored or plain palette.
func NewPalette(enabled bool) Palette {
	if !enabled {
		return Palette{Allowed: None, Rejected: None, Reason: None, Muted: None}
	}
	return Palette{Allowed: Green, Rejected: Red, Reason: Yellow, Muted: Gray}
}
