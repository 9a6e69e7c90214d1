package gate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/agentfence/go-pwsh-gate/internal/pwsh/ast"
	"github.com/agentfence/go-pwsh-gate/internal/pwsh/parser"
	"github.com/agentfence/go-pwsh-gate/internal/redaction"
)

// TreeParser turns a raw command string into a syntax tree. Satisfied by
// *parser.Parser; stubbed in tests.
type TreeParser interface {
	Parse(ctx context.Context, commandText string) (*ast.ParseResult, error)
}

// Gate combines the external parser and the recursive validator into the
// allow/reject entry point used by the agent's permission layer. Safe for
// concurrent use; calls are independent.
type Gate struct {
	parser    TreeParser
	validator *Validator
	redactor  *redaction.Redactor
	logger    *slog.Logger
}

// New creates a Gate. A nil logger falls back to slog.Default; nil or
// empty patterns mean nothing can match the allow-list, so every command
// is rejected (fail closed).
func New(treeParser TreeParser, patterns []CompiledPattern, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		parser:    treeParser,
		validator: NewValidator(patterns, logger),
		redactor:  redaction.NewRedactor(),
		logger:    logger,
	}
}

// Check validates one candidate command. Policy outcomes, including parse
// errors and a missing interpreter, come back as rejected verdicts with a
// nil error; the error return is reserved for infrastructure failure
// (inability to spawn the parser subprocess at all).
func (g *Gate) Check(ctx context.Context, command string) (Verdict, error) {
	res, err := g.parser.Parse(ctx, command)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrInterpreterUnavailable):
			return Rejected(ReasonInterpreterUnavailable, err.Error()), nil
		case errors.Is(err, parser.ErrParseFailed):
			return Rejected(ReasonParseError, err.Error()), nil
		default:
			return Verdict{}, err
		}
	}
	if !res.Usable() {
		detail := res.Diag
		if detail == "" && len(res.Errors) > 0 {
			detail = res.Errors[0]
		}
		if detail == "" {
			detail = "parser returned no usable tree"
		}
		return Rejected(ReasonParseError, detail), nil
	}

	verdict := g.validator.ValidateTree(res.Root)
	if verdict.Allowed {
		g.logger.Debug("command allowed",
			"command", g.redactor.Redact(command),
			"stages", len(verdict.Stages))
	} else {
		g.logger.Info("command rejected",
			"command", g.redactor.Redact(command),
			"reason", verdict.Rejection.Reason.String(),
			"detail", verdict.Rejection.Detail)
	}
	return verdict, nil
}
