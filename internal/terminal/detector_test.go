package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForcedOptions(t *testing.T) {
	d := NewDetector(DetectorOptions{ForceInteractive: true})
	assert.True(t, d.IsInteractive())

	d = NewDetector(DetectorOptions{ForceNonInteractive: true})
	assert.False(t, d.IsInteractive())

	// ForceInteractive wins over everything else, including CI vars.
	t.Setenv("CI", "true")
	d = NewDetector(DetectorOptions{ForceInteractive: true})
	assert.True(t, d.IsInteractive())
}

func TestCIEnvironment(t *testing.T) {
	for _, name := range ciEnvVars {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, "1")
			d := NewDetector(DetectorOptions{})
			assert.True(t, d.IsCIEnvironment())
			assert.False(t, d.IsInteractive())
		})
	}
}

func TestNoColorDisablesInteractive(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	d := NewDetector(DetectorOptions{})
	assert.False(t, d.IsInteractive())
}
