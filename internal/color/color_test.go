package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewColor(t *testing.T) {
	c := NewColor("\033[32m")
	assert.Equal(t, "\033[32mok\033[0m", c("ok"))
}

func TestNone(t *testing.T) {
	assert.Equal(t, "plain", None("plain"))
}

func TestNewPalette(t *testing.T) {
	colored := NewPalette(true)
	assert.Contains(t, colored.Allowed("x"), "\033[")
	assert.Contains(t, colored.Rejected("x"), "\033[")

	plain := NewPalette(false)
	assert.Equal(t, "x", plain.Allowed("x"))
	assert.Equal(t, "x", plain.Rejected("x"))
	assert.Equal(t, "x", plain.Reason("x"))
	assert.Equal(t, "x", plain.Muted("x"))
}
