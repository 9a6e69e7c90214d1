package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentfence/go-pwsh-gate/internal/pwsh/ast"
)

func TestScanElement(t *testing.T) {
	tests := []struct {
		name       string
		node       *ast.Node
		wantReason Reason // empty means no issue found
	}{
		{
			name: "plain string constant",
			node: strConst("README.md"),
		},
		{
			name:       "direct subexpression",
			node:       &ast.Node{Kind: ast.KindSubExpression, Text: "$(whoami)"},
			wantReason: ReasonSubexpression,
		},
		{
			name:       "direct script block",
			node:       &ast.Node{Kind: ast.KindScriptBlockExpression, Text: "{ rm -rf / }"},
			wantReason: ReasonScriptBlock,
		},
		{
			name: "subexpression nested two levels deep in interpolated strings",
			node: &ast.Node{
				Kind: ast.KindExpandableString,
				Text: `"outer $("inner $(whoami)")"`,
				Nested: []*ast.Node{{
					Kind: ast.KindSubExpression,
					Text: `$("inner $(whoami)")`,
				}},
			},
			wantReason: ReasonSubexpression,
		},
		{
			name: "expandable string without nested expressions",
			node: &ast.Node{Kind: ast.KindExpandableString, Text: `"hello world"`},
		},
		{
			name: "unrecognized structure hiding a script block",
			node: &ast.Node{
				Kind: ast.KindOther,
				Text: "@{ Action = { Stop-Service x } }",
				Children: []*ast.Node{{
					Kind: ast.KindScriptBlockExpression,
					Text: "{ Stop-Service x }",
				}},
			},
			wantReason: ReasonScriptBlock,
		},
		{
			name:       "member invocation named Invoke",
			node:       &ast.Node{Kind: ast.KindInvokeMember, Text: "$m.Invoke()", Member: "Invoke"},
			wantReason: ReasonInvokeExpression,
		},
		{
			name:       "member invocation containing create",
			node:       &ast.Node{Kind: ast.KindInvokeMember, Text: "$f.CreateInstance()", Member: "CreateInstance"},
			wantReason: ReasonInvokeExpression,
		},
		{
			name:       "member invocation WriteAllText",
			node:       &ast.Node{Kind: ast.KindInvokeMember, Text: "[IO.File]::WriteAllText('x','y')", Member: "WriteAllText"},
			wantReason: ReasonInvokeExpression,
		},
		{
			name: "benign member invocation",
			node: &ast.Node{Kind: ast.KindInvokeMember, Text: "$s.ToUpper()", Member: "ToUpper"},
		},
		{
			name: "subexpression inside member invocation arguments",
			node: &ast.Node{
				Kind:   ast.KindInvokeMember,
				Text:   "$s.Contains($(whoami))",
				Member: "Contains",
				Children: []*ast.Node{
					{Kind: ast.KindSubExpression, Text: "$(whoami)"},
				},
			},
			wantReason: ReasonSubexpression,
		},
		{
			name: "nil node",
			node: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejection := scanElement(tt.node)
			if tt.wantReason == "" {
				assert.Nil(t, rejection)
				return
			}
			require.NotNil(t, rejection)
			assert.Equal(t, tt.wantReason, rejection.Reason)
			assert.NotEmpty(t, rejection.Offending)
		})
	}
}

func TestScanConstructIsSingleNode(t *testing.T) {
	// scanConstruct must not recurse; the sweep belongs to scanElement.
	parent := &ast.Node{
		Kind:     ast.KindStringConstant,
		Text:     "wrapper",
		Children: []*ast.Node{{Kind: ast.KindSubExpression, Text: "$(x)"}},
	}
	assert.Nil(t, scanConstruct(parent))
	assert.NotNil(t, scanElement(parent))
}
