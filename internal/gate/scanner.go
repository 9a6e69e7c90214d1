package gate

import (
	"strings"

	"github.com/agentfence/go-pwsh-gate/internal/pwsh/ast"
)

// executionMemberHints are substrings of member names whose invocation
// suggests code execution outside the command-dispatch surface the
// validator reasons about (e.g. [System.Diagnostics.Process]::Start,
// $client.CreateInstance).
var executionMemberHints = []string{
	"invoke",
	"create",
	"start",
	"exec",
	"run",
	"write",
	"delete",
	"kill",
}

// scanConstruct flags constructs that are unsafe in any context. It
// inspects a single node; absence of a flag is not proof of safety, only
// absence of this category of danger.
func scanConstruct(n *ast.Node) *Rejection {
	switch n.Kind {
	case ast.KindSubExpression:
		return reject(ReasonSubexpression, n.Text)
	case ast.KindScriptBlockExpression:
		return reject(ReasonScriptBlock, n.Text)
	case ast.KindInvokeMember:
		member := strings.ToLower(n.Member)
		for _, hint := range executionMemberHints {
			if strings.Contains(member, hint) {
				return rejectf(ReasonInvokeExpression, n.Text,
					"member invocation %q suggests code execution", n.Member)
			}
		}
	}
	return nil
}

// scanElement applies scanConstruct to a node and every descendant, so a
// $(...) nested inside an interpolated string is caught at any depth.
func scanElement(n *ast.Node) *Rejection {
	if n == nil {
		return nil
	}
	var found *Rejection
	n.Walk(func(node *ast.Node) bool {
		if r := scanConstruct(node); r != nil {
			found = r
			return false
		}
		return true
	})
	return found
}
