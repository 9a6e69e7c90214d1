// Package terminal detects whether the current process is talking to an
// interactive terminal or running under CI, so the CLI can decide whether
// colored output is appropriate.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// ciEnvVars contains environment variables that indicate a CI environment.
var ciEnvVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"JENKINS_URL",
	"BUILDKITE",
	"CIRCLECI",
	"TRAVIS",
	"TF_BUILD",
}

// DetectorOptions force the detection outcome regardless of environment.
type DetectorOptions struct {
	ForceInteractive    bool
	ForceNonInteractive bool
}

// Detector reports terminal capabilities.
type Detector interface {
	IsInteractive() bool
	IsTerminal() bool
	IsCIEnvironment() bool
}

// DefaultDetector implements Detector against the real process state.
type DefaultDetector struct {
	options DetectorOptions
}

// NewDetector creates a detector with the given options.
func NewDetector(options DetectorOptions) *DefaultDetector {
	return &DefaultDetector{options: options}
}

// IsInteractive returns true when output should be formatted for a human:
// explicit overrides first, then CI detection, then the terminal check.
func (d *DefaultDetector) IsInteractive() bool {
	if d.options.ForceInteractive {
		return true
	}
	if d.options.ForceNonInteractive {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if d.IsCIEnvironment() {
		return false
	}
	return d.IsTerminal()
}

// IsTerminal reports whether stdout is attached to a terminal.
func (d *DefaultDetector) IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsCIEnvironment reports whether a known CI environment variable is set.
func (d *DefaultDetector) IsCIEnvironment() bool {
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}
