// Package gate decides whether a candidate PowerShell command is provably
// read-only. It consumes syntax trees produced by the external interpreter
// (internal/pwsh/parser) and applies per-node-kind policy rules; anything
// it cannot structurally prove safe is rejected. There is no default allow
// for unrecognized structure.
package gate

import (
	"log/slog"
	"strings"

	"github.com/agentfence/go-pwsh-gate/internal/pwsh/ast"
)

// nullSink is the shell's null device. Redirecting to it discards output
// rather than writing anywhere, so it is the one permitted redirection
// target. Comparison is case-insensitive per the dialect's rules.
const nullSink = "$null"

// Validator is the recursive per-node-kind policy dispatcher. It is pure:
// ValidateTree performs no I/O and Validator is safe for concurrent use.
type Validator struct {
	patterns []CompiledPattern
	logger   *slog.Logger
}

// NewValidator creates a validator over the given compiled allow-list.
// A nil logger falls back to slog.Default.
func NewValidator(patterns []CompiledPattern, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{patterns: patterns, logger: logger}
}

// ValidateTree walks the tree and returns the verdict. The per-stage
// breakdown covers every pipeline stage visited before the first
// rejection.
func (v *Validator) ValidateTree(root *ast.Node) Verdict {
	var stages []StageResult
	rejection := v.validateNode(root, &stages)
	return Verdict{
		Allowed:   rejection == nil,
		Rejection: rejection,
		Stages:    stages,
	}
}

// validateNode dispatches on the node kind. A nil return means this
// subtree raised no objection; it is not a positive safety proof on its
// own (command-level checks do that).
func (v *Validator) validateNode(n *ast.Node, stages *[]StageResult) *Rejection {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KindScriptRoot, ast.KindNamedBlock:
		for _, stmt := range n.Statements {
			if r := v.validateNode(stmt, stages); r != nil {
				return r
			}
		}
		return nil

	case ast.KindPipeline:
		if n.Background {
			return rejectf(ReasonPipelineBackground, n.Text,
				"background execution (&) hides activity from the session")
		}
		for _, stage := range n.Stages {
			if r := v.validateNode(stage, stages); r != nil {
				return r
			}
		}
		return nil

	case ast.KindCommand:
		return v.validateCommand(n, stages)

	case ast.KindCommandExpression:
		for _, rd := range n.Redirections {
			if r := checkRedirection(rd); r != nil {
				return r
			}
		}
		return v.validateNode(n.Expression, stages)

	case ast.KindAssignment:
		return reject(ReasonAssignment, n.Text)

	case ast.KindSubExpression:
		return reject(ReasonSubexpression, n.Text)

	case ast.KindScriptBlockExpression:
		return reject(ReasonScriptBlock, n.Text)

	case ast.KindFileRedirection, ast.KindExpandableString,
		ast.KindCommandParameter, ast.KindInvokeMember,
		ast.KindStringConstant, ast.KindVariableReference, ast.KindOther:
		// No dedicated rule: the scanner still sweeps the subtree, and
		// any command string built from these nodes goes through the
		// allow-list at the enclosing Command.
		return scanElement(n)

	default:
		// Unreachable with the closed Kind set; treat like Other.
		return scanElement(n)
	}
}

// validateCommand applies the detailed Command rule: invocation operator,
// redirections, per-element scan, deny-set lookup, then allow-list match.
func (v *Validator) validateCommand(n *ast.Node, stages *[]StageResult) *Rejection {
	switch n.Invocation {
	case ast.InvocationDot:
		return rejectf(ReasonDotSourcing, n.Text,
			"dot-sourcing executes a script in the current scope")
	case ast.InvocationCall:
		return rejectf(ReasonInvokeExpression, n.Text,
			"the call operator (&) invokes a computed command")
	}

	for _, rd := range n.Redirections {
		if r := checkRedirection(rd); r != nil {
			return r
		}
	}

	for _, el := range n.Elements {
		if r := scanElement(el); r != nil {
			return r
		}
	}

	candidate := commandText(n)
	if candidate == "" {
		return rejectf(ReasonUnsafeCommand, n.Text, "empty command")
	}

	name := elementText(n.Elements[0])
	if isDangerousCommand(name) {
		*stages = append(*stages, StageResult{
			Command: candidate,
			Allowed: false,
			Note:    "unsafe command: " + name,
		})
		return rejectf(ReasonUnsafeCommand, candidate,
			"%s is not permitted in read-only mode", name)
	}

	for i := range v.patterns {
		if v.patterns[i].Matches(candidate) {
			*stages = append(*stages, StageResult{Command: candidate, Allowed: true})
			return nil
		}
	}
	*stages = append(*stages, StageResult{
		Command: candidate,
		Allowed: false,
		Note:    "not in read-only allowlist",
	})
	return rejectf(ReasonUnsafeCommand, candidate,
		"command does not match any read-only allowlist pattern")
}

// checkRedirection rejects every redirection except one to the null sink.
// The target name is otherwise never inspected: any writable target is a
// mutation vector, whatever it is called.
func checkRedirection(rd *ast.Node) *Rejection {
	if rd == nil {
		return nil
	}
	if rd.Kind == ast.KindFileRedirection &&
		strings.EqualFold(strings.TrimSpace(rd.Target), nullSink) {
		return nil
	}
	return rejectf(ReasonRedirect, rd.Text,
		"redirection to anything but %s is not permitted", nullSink)
}

// commandText concatenates the textual form of all command elements,
// space-joined, into the candidate string tested against the allow-list.
func commandText(n *ast.Node) string {
	parts := make([]string, 0, len(n.Elements))
	for _, el := range n.Elements {
		if t := elementText(el); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// elementText returns the verbatim source span of an element.
func elementText(n *ast.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}
