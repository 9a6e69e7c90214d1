package parser

import (
	"errors"
	"os/exec"
	"sync"
)

// ErrInterpreterUnavailable is returned when no PowerShell interpreter
// could be found on the host.
var ErrInterpreterUnavailable = errors.New("no usable PowerShell interpreter found")

// interpreterNames lists the binaries probed, in preference order. pwsh
// (PowerShell 7+) is preferred over Windows PowerShell.
var interpreterNames = []string{"pwsh", "pwsh.exe", "powershell.exe", "powershell"}

// Locator resolves the path of the PowerShell interpreter binary.
// Implementations must be safe for concurrent use.
type Locator interface {
	Locate() (string, error)
}

// DefaultLocator probes PATH for an interpreter and memoizes the outcome
// for the lifetime of the process. Interpreter availability cannot change
// while the process runs, so the probe result is never invalidated.
type DefaultLocator struct {
	once sync.Once
	path string
	err  error

	// lookPath is replaceable for tests; defaults to exec.LookPath.
	lookPath func(string) (string, error)
}

// NewDefaultLocator creates a locator that probes PATH on first use.
func NewDefaultLocator() *DefaultLocator {
	return &DefaultLocator{lookPath: exec.LookPath}
}

// Locate returns the interpreter path, probing at most once.
func (l *DefaultLocator) Locate() (string, error) {
	l.once.Do(func() {
		lookPath := l.lookPath
		if lookPath == nil {
			lookPath = exec.LookPath
		}
		for _, name := range interpreterNames {
			if path, err := lookPath(name); err == nil {
				l.path = path
				return
			}
		}
		l.err = ErrInterpreterUnavailable
	})
	return l.path, l.err
}

// FixedLocator always returns the given path. Useful for tests and for
// callers that resolve the interpreter themselves.
type FixedLocator struct {
	Path string
}

// Locate implements Locator.
func (l FixedLocator) Locate() (string, error) {
	if l.Path == "" {
		return "", ErrInterpreterUnavailable
	}
	return l.Path, nil
}
