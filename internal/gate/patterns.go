package gate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern is returned when an allow-list pattern fails to
// compile, in either its original or case-insensitive form.
var ErrInvalidPattern = errors.New("invalid allow-list pattern")

// PatternSpec is one allow-list entry as supplied by configuration.
// CaseSensitive opts the pattern out of the case-insensitive retry for
// patterns that deliberately rely on case; the default (false) keeps the
// retry, because cmdlet names are case-insensitive in the dialect and the
// allow-list must not be defeated by casing tricks.
type PatternSpec struct {
	Source        string
	CaseSensitive bool
}

// CompiledPattern is an allow-list entry reduced to an executable matcher.
// The case-insensitive variant is compiled once here rather than on every
// failed match.
type CompiledPattern struct {
	source string
	re     *regexp.Regexp
	fold   *regexp.Regexp // nil when no case-insensitive retry applies
}

// Source returns the original pattern text.
func (p *CompiledPattern) Source() string { return p.source }

// Matches tests a candidate command string against the pattern as
// compiled, retrying with the case-insensitive variant when the pattern is
// neither inherently case-insensitive nor marked case-sensitive.
func (p *CompiledPattern) Matches(candidate string) bool {
	if p.re.MatchString(candidate) {
		return true
	}
	return p.fold != nil && p.fold.MatchString(candidate)
}

// CompilePatterns compiles allow-list pattern specs. A pattern whose
// source already carries a (?i) flag is treated as inherently
// case-insensitive and gets no retry variant.
func CompilePatterns(specs []PatternSpec) ([]CompiledPattern, error) {
	patterns := make([]CompiledPattern, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile(spec.Source)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, spec.Source, err)
		}
		cp := CompiledPattern{source: spec.Source, re: re}
		if !spec.CaseSensitive && !strings.Contains(spec.Source, "(?i") {
			fold, err := regexp.Compile("(?i)" + spec.Source)
			if err != nil {
				return nil, fmt.Errorf("%w: %q (case-insensitive variant): %w", ErrInvalidPattern, spec.Source, err)
			}
			cp.fold = fold
		}
		patterns = append(patterns, cp)
	}
	return patterns, nil
}

// defaultReadOnlySources lists the built-in approved read-only command
// shapes used when configuration supplies no allow-list. Structural rules
// (redirections, script blocks, subexpressions) still apply on top.
var defaultReadOnlySources = []string{
	`^Get-ChildItem\b`,
	`^Get-Content\b`,
	`^Get-Item\b`,
	`^Get-ItemProperty\b`,
	`^Get-Location\b`,
	`^Get-Process\b`,
	`^Get-Service\b`,
	`^Get-Date\b`,
	`^Get-Command\b`,
	`^Get-Help\b`,
	`^Get-Member\b`,
	`^Get-History\b`,
	`^Get-FileHash\b`,
	`^Select-String\b`,
	`^Select-Object\b`,
	`^Sort-Object\b`,
	`^Measure-Object\b`,
	`^Compare-Object\b`,
	`^Format-List\b`,
	`^Format-Table\b`,
	`^Out-String\b`,
	`^Test-Path\b`,
	`^Resolve-Path\b`,
	`^Split-Path\b`,
	`^Join-Path\b`,
	`^ConvertTo-Json\b`,
	`^ConvertFrom-Json\b`,
	`^Write-Output\b`,
	`^echo\b`,
	`^pwd$`,
	`^ls\b`,
	`^dir\b`,
	`^cat\b`,
	`^gci\b`,
	`^gc\b`,
	`^gi\b`,
	`^gps\b`,
	`^type\b`,
}

// DefaultReadOnlyPatterns compiles the built-in read-only allow-list.
func DefaultReadOnlyPatterns() []CompiledPattern {
	specs := make([]PatternSpec, len(defaultReadOnlySources))
	for i, src := range defaultReadOnlySources {
		specs[i] = PatternSpec{Source: src}
	}
	patterns, err := CompilePatterns(specs)
	if err != nil {
		// The built-in sources are constants; failing to compile them is
		// a programmer error, not an input condition.
		panic(err)
	}
	return patterns
}
