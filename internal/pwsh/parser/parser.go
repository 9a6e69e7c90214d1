// Package parser spawns the external PowerShell interpreter to turn a raw
// command string into the syntax tree consumed by the gate. The interpreter
// is the only process this module ever starts: each Parse call runs one
// bounded subprocess and performs no further I/O.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/agentfence/go-pwsh-gate/internal/pwsh/ast"
)

// Defaults for the subprocess bounds. Both are caller-overridable; the
// output cap exists because the parser echoes the candidate text inside
// the tree and a hostile candidate must not balloon memory.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultOutputLimit = 4 << 20 // 4 MiB
)

// Errors returned by Parse. ErrParseFailed covers every way the
// interpreter can fail to produce a usable tree (timeout, non-zero exit
// with no output, oversized or malformed output); callers treat it as a
// policy rejection, not an infrastructure fault. ErrSpawn is the one hard
// error: the subprocess could not be started at all.
var (
	ErrParseFailed = errors.New("powershell parse failed")
	ErrSpawn       = errors.New("failed to spawn powershell interpreter")
)

// commandRunner runs the interpreter once and returns its stdout. It is a
// seam for tests; the default implementation wraps os/exec.
type commandRunner interface {
	run(ctx context.Context, interpreter string, stdin string, limit int64) ([]byte, error)
}

// Parser converts raw command strings into syntax trees via the external
// interpreter. Safe for concurrent use; every call is independent.
type Parser struct {
	locator Locator
	runner  commandRunner
	timeout time.Duration
	limit   int64
	logger  *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithTimeout overrides the subprocess timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Parser) { p.timeout = d }
}

// WithOutputLimit overrides the subprocess output cap in bytes.
func WithOutputLimit(limit int64) Option {
	return func(p *Parser) { p.limit = limit }
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// withRunner injects a fake interpreter for tests.
func withRunner(r commandRunner) Option {
	return func(p *Parser) { p.runner = r }
}

// New creates a Parser using the given interpreter locator.
func New(locator Locator, opts ...Option) *Parser {
	p := &Parser{
		locator: locator,
		runner:  execRunner{},
		timeout: DefaultTimeout,
		limit:   DefaultOutputLimit,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs the interpreter on commandText and decodes the resulting
// tree. The returned error is ErrInterpreterUnavailable when no
// interpreter exists, ErrParseFailed when the interpreter produced no
// usable tree, or ErrSpawn when the subprocess could not start.
func (p *Parser) Parse(ctx context.Context, commandText string) (*ast.ParseResult, error) {
	interpreter, err := p.locator.Locate()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.runner.run(ctx, interpreter, commandText, p.limit)
	if err != nil {
		if errors.Is(err, ErrSpawn) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, ctx.Err())
		}
		// Non-zero exit can still carry a usable JSON document (the
		// script reports parse errors itself); fall through only when
		// output decodes.
		if res, decErr := ast.DecodeParseResult(out); decErr == nil {
			return res, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	res, err := ast.DecodeParseResult(out)
	if err != nil {
		p.logger.Debug("parser output rejected",
			"error", err,
			"output_bytes", len(out))
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return res, nil
}

// execRunner invokes the interpreter via os/exec, feeding the candidate on
// stdin and capping captured stdout at limit bytes.
type execRunner struct{}

var errOutputLimitExceeded = errors.New("parser output exceeds size limit")

func (execRunner) run(ctx context.Context, interpreter string, stdin string, limit int64) ([]byte, error) {
	// #nosec G204 -- interpreter comes from the locator, never from the
	// candidate command; the candidate travels over stdin only.
	cmd := exec.CommandContext(ctx, interpreter,
		"-NoProfile", "-NonInteractive", "-Command", dumpScript)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout limitedBuffer
	stdout.limit = limit
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	err := cmd.Wait()
	if stdout.truncated {
		return nil, errOutputLimitExceeded
	}
	if err != nil {
		return stdout.buf.Bytes(), fmt.Errorf("interpreter exited: %w (stderr: %s)",
			err, strings.TrimSpace(stderr.String()))
	}
	return stdout.buf.Bytes(), nil
}

// limitedBuffer captures writes up to a byte limit and records overflow
// instead of growing without bound.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.truncated {
		return len(p), nil
	}
	remaining := b.limit - int64(b.buf.Len())
	if int64(len(p)) > remaining {
		b.truncated = true
		if remaining > 0 {
			b.buf.Write(p[:remaining])
		}
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

var _ io.Writer = (*limitedBuffer)(nil)
