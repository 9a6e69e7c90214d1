package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompiledPatternMatches(t *testing.T) {
	tests := []struct {
		name      string
		spec      PatternSpec
		candidate string
		want      bool
	}{
		{
			name:      "exact case match",
			spec:      PatternSpec{Source: `^Get-Process\b`},
			candidate: "Get-Process",
			want:      true,
		},
		{
			name:      "lower case falls back to case-insensitive retry",
			spec:      PatternSpec{Source: `^Get-Process\b`},
			candidate: "get-process",
			want:      true,
		},
		{
			name:      "upper case falls back to case-insensitive retry",
			spec:      PatternSpec{Source: `^Get-Process\b`},
			candidate: "GET-PROCESS -Id 42",
			want:      true,
		},
		{
			name:      "case-sensitive pattern gets no retry",
			spec:      PatternSpec{Source: `^Get-Process\b`, CaseSensitive: true},
			candidate: "get-process",
			want:      false,
		},
		{
			name:      "case-sensitive pattern still matches as written",
			spec:      PatternSpec{Source: `^Get-Process\b`, CaseSensitive: true},
			candidate: "Get-Process",
			want:      true,
		},
		{
			name:      "inherently case-insensitive pattern matches directly",
			spec:      PatternSpec{Source: `(?i)^get-childitem\b`},
			candidate: "Get-ChildItem -Recurse",
			want:      true,
		},
		{
			name:      "no match at all",
			spec:      PatternSpec{Source: `^Get-Process\b`},
			candidate: "Stop-Process",
			want:      false,
		},
		{
			name:      "word boundary prevents prefix spoofing",
			spec:      PatternSpec{Source: `^Get-Process\b`},
			candidate: "Get-Processes-And-Kill",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patterns, err := CompilePatterns([]PatternSpec{tt.spec})
			require.NoError(t, err)
			require.Len(t, patterns, 1)
			assert.Equal(t, tt.want, patterns[0].Matches(tt.candidate))
		})
	}
}

func TestCompilePatternsInvalid(t *testing.T) {
	_, err := CompilePatterns([]PatternSpec{{Source: `^Get-(`}})
	require.ErrorIs(t, err, ErrInvalidPattern)
	assert.Contains(t, err.Error(), "^Get-(")
}

func TestDefaultReadOnlyPatterns(t *testing.T) {
	patterns := DefaultReadOnlyPatterns()
	require.NotEmpty(t, patterns)

	matchAny := func(candidate string) bool {
		for i := range patterns {
			if patterns[i].Matches(candidate) {
				return true
			}
		}
		return false
	}

	assert.True(t, matchAny("Get-ChildItem -Path C:\\repo"))
	assert.True(t, matchAny("get-childitem"))
	assert.True(t, matchAny("Select-String -Pattern TODO -Path main.go"))
	assert.True(t, matchAny("ls -Force"))
	assert.False(t, matchAny("Set-Content -Path out.txt"))
	assert.False(t, matchAny("Remove-Item x"))
}
