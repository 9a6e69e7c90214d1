package gate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentfence/go-pwsh-gate/internal/pwsh/ast"
	"github.com/agentfence/go-pwsh-gate/internal/pwsh/parser"
)

// stubParser serves canned trees keyed by command text. Unknown commands
// fall back to err (or a parse failure when err is nil).
type stubParser struct {
	trees map[string]*ast.ParseResult
	err   error
}

func (s *stubParser) Parse(_ context.Context, commandText string) (*ast.ParseResult, error) {
	if res, ok := s.trees[commandText]; ok {
		return res, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, fmt.Errorf("%w: no canned tree for %q", parser.ErrParseFailed, commandText)
}

func usableResult(root *ast.Node) *ast.ParseResult {
	return &ast.ParseResult{OK: true, Root: root}
}

func TestGateCheckAllowed(t *testing.T) {
	stub := &stubParser{trees: map[string]*ast.ParseResult{
		"Get-ChildItem -Path C:\\repo": usableResult(script(pipeline(
			command("Get-ChildItem", "-Path", "C:\\repo"),
		))),
	}}
	g := New(stub, DefaultReadOnlyPatterns(), nil)

	verdict, err := g.Check(context.Background(), "Get-ChildItem -Path C:\\repo")
	require.NoError(t, err)
	assert.True(t, verdict.Allowed)
	require.Len(t, verdict.Stages, 1)
	assert.True(t, verdict.Stages[0].Allowed)
}

func TestGateCheckRejectedByValidator(t *testing.T) {
	stub := &stubParser{trees: map[string]*ast.ParseResult{
		"Remove-Item x.txt": usableResult(script(pipeline(
			command("Remove-Item", "x.txt"),
		))),
	}}
	g := New(stub, DefaultReadOnlyPatterns(), nil)

	verdict, err := g.Check(context.Background(), "Remove-Item x.txt")
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	require.NotNil(t, verdict.Rejection)
	assert.Equal(t, ReasonUnsafeCommand, verdict.Rejection.Reason)
}

func TestGateCheckParserErrors(t *testing.T) {
	tests := []struct {
		name       string
		parserErr  error
		wantReason Reason
		wantHard   bool
	}{
		{
			name:       "interpreter unavailable is a policy rejection",
			parserErr:  parser.ErrInterpreterUnavailable,
			wantReason: ReasonInterpreterUnavailable,
		},
		{
			name:       "parse failure is a policy rejection",
			parserErr:  fmt.Errorf("%w: unexpected token", parser.ErrParseFailed),
			wantReason: ReasonParseError,
		},
		{
			name:      "spawn failure propagates as a hard error",
			parserErr: fmt.Errorf("%w: fork failed", parser.ErrSpawn),
			wantHard:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&stubParser{err: tt.parserErr}, DefaultReadOnlyPatterns(), nil)
			verdict, err := g.Check(context.Background(), "Get-Date")
			if tt.wantHard {
				require.Error(t, err)
				assert.ErrorIs(t, err, parser.ErrSpawn)
				return
			}
			require.NoError(t, err)
			assert.False(t, verdict.Allowed)
			require.NotNil(t, verdict.Rejection)
			assert.Equal(t, tt.wantReason, verdict.Rejection.Reason)
		})
	}
}

func TestGateCheckUnusableResult(t *testing.T) {
	tests := []struct {
		name       string
		result     *ast.ParseResult
		wantDetail string
	}{
		{
			name:       "parser reported syntax errors",
			result:     &ast.ParseResult{OK: false, Errors: []string{"missing closing brace"}},
			wantDetail: "missing closing brace",
		},
		{
			name:       "diagnostic preferred when present",
			result:     &ast.ParseResult{OK: false, Diag: "dump script threw", Errors: []string{"x"}},
			wantDetail: "dump script threw",
		},
		{
			name:       "ok without root still rejects",
			result:     &ast.ParseResult{OK: true},
			wantDetail: "parser returned no usable tree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubParser{trees: map[string]*ast.ParseResult{"Get-Date": tt.result}}
			g := New(stub, DefaultReadOnlyPatterns(), nil)
			verdict, err := g.Check(context.Background(), "Get-Date")
			require.NoError(t, err)
			assert.False(t, verdict.Allowed)
			require.NotNil(t, verdict.Rejection)
			assert.Equal(t, ReasonParseError, verdict.Rejection.Reason)
			assert.Equal(t, tt.wantDetail, verdict.Rejection.Detail)
		})
	}
}

func TestGateCheckNilPatternsFailClosed(t *testing.T) {
	stub := &stubParser{trees: map[string]*ast.ParseResult{
		"Get-Date": usableResult(script(pipeline(command("Get-Date")))),
	}}
	g := New(stub, nil, nil)

	verdict, err := g.Check(context.Background(), "Get-Date")
	require.NoError(t, err)
	assert.False(t, verdict.Allowed)
	require.NotNil(t, verdict.Rejection)
	assert.Equal(t, ReasonUnsafeCommand, verdict.Rejection.Reason)
}

func TestGateExtractWriteTargetErrors(t *testing.T) {
	g := New(&stubParser{err: parser.ErrInterpreterUnavailable}, DefaultReadOnlyPatterns(), nil)
	_, found, err := g.ExtractWriteTarget(context.Background(), "Out-File x.txt")
	assert.False(t, found)
	assert.True(t, errors.Is(err, parser.ErrInterpreterUnavailable))
}
