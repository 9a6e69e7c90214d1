package gate

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/agentfence/go-pwsh-gate/internal/pwsh/ast"
)

// maxWrapperDepth bounds interpreter-wrapper unwrapping. Each unwrap
// yields a proper substring of its input, so termination is guaranteed by
// input length alone; the cap is a second bound against pathological
// input.
const maxWrapperDepth = 8

// writeCmdlets is the fixed set of commands whose destination path the
// extractor knows how to locate. Keys are lower-case.
var writeCmdlets = map[string]struct{}{
	"out-file":      {},
	"set-content":   {},
	"add-content":   {},
	"new-item":      {},
	"export-csv":    {},
	"export-clixml": {},
	"tee-object":    {},
	"sc":            {},
	"ac":            {},
	"ni":            {},
	"tee":           {},
}

// writeTargetParams lists the named parameters that carry the destination
// path, tried in order.
var writeTargetParams = []string{"FilePath", "Path", "LiteralPath", "Destination"}

// wrapperPattern matches an interpreter binary invoked with an embedded
// inner command: powershell.exe -Command "<inner>" and variants. The
// wrapped form must be resolved before structural inspection, because the
// tree would otherwise show a single opaque invocation of the interpreter
// binary rather than of the real write command.
var wrapperPattern = regexp.MustCompile(
	`(?is)^\s*(?:&\s+)?(?:\S*[\\/])?(?:powershell|pwsh)(?:\.exe)?\s+(?:.*?\s)?-c(?:ommand)?\s+"(.*)"\s*$`)

// unwrapInterpreterCall extracts and unescapes the inner command of a
// wrapper invocation. ok is false when the text is not wrapper-shaped.
func unwrapInterpreterCall(text string) (inner string, ok bool) {
	m := wrapperPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	inner = m[1]
	// Undo the quoting the wrapping layer applied: backslash-escaped,
	// backtick-escaped, and doubled quotes all read back as one quote.
	inner = strings.ReplaceAll(inner, `\"`, `"`)
	inner = strings.ReplaceAll(inner, "`\"", `"`)
	inner = strings.ReplaceAll(inner, `""`, `"`)
	return inner, true
}

// ExtractWriteTarget locates the file-system destination of a write-class
// command, unwrapping interpreter-wrapper invocations first. It returns
// ok=false when the command is not write-shaped or no path could be
// determined; the error return mirrors Check (infrastructure only).
func (g *Gate) ExtractWriteTarget(ctx context.Context, command string) (string, bool, error) {
	text := command
	for i := 0; i < maxWrapperDepth; i++ {
		inner, unwrapped := unwrapInterpreterCall(text)
		if !unwrapped {
			break
		}
		text = inner
	}

	res, err := g.parser.Parse(ctx, text)
	if err != nil {
		return "", false, err
	}
	if !res.Usable() {
		return "", false, nil
	}
	target, found := writeTargetFromTree(res.Root)
	return target, found, nil
}

// writeTargetFromTree walks to the last stage of the first pipeline (write
// cmdlets characteristically end a pipeline) and pulls the destination
// from a named parameter or the first positional argument.
func writeTargetFromTree(root *ast.Node) (string, bool) {
	pipeline := findFirstPipeline(root)
	if pipeline == nil || len(pipeline.Stages) == 0 {
		return "", false
	}
	cmd := pipeline.Stages[len(pipeline.Stages)-1]
	if cmd == nil || cmd.Kind != ast.KindCommand || len(cmd.Elements) == 0 {
		return "", false
	}

	name := strings.ToLower(elementText(cmd.Elements[0]))
	if _, isWrite := writeCmdlets[name]; !isWrite {
		return "", false
	}

	// Named parameter forms: -Path:value attaches the argument to the
	// parameter node; -Path value parses as two adjacent elements.
	for _, want := range writeTargetParams {
		for i, el := range cmd.Elements {
			if el.Kind != ast.KindCommandParameter || !strings.EqualFold(el.Name, want) {
				continue
			}
			if el.Argument != nil {
				if t := constantText(el.Argument); t != "" {
					return t, true
				}
			}
			if i+1 < len(cmd.Elements) && cmd.Elements[i+1].Kind != ast.KindCommandParameter {
				if t := constantText(cmd.Elements[i+1]); t != "" {
					return t, true
				}
			}
		}
	}

	// Positional fallback: first non-parameter element after the command
	// name that is not consumed as some other parameter's value.
	consumed := false
	for _, el := range cmd.Elements[1:] {
		if el.Kind == ast.KindCommandParameter {
			consumed = el.Argument == nil
			continue
		}
		if consumed {
			consumed = false
			continue
		}
		if t := constantText(el); t != "" {
			return t, true
		}
		return "", false
	}
	return "", false
}

// findFirstPipeline returns the first Pipeline node in depth-first order.
func findFirstPipeline(root *ast.Node) *ast.Node {
	var found *ast.Node
	root.Walk(func(n *ast.Node) bool {
		if n.Kind == ast.KindPipeline {
			found = n
			return false
		}
		return true
	})
	return found
}

// constantText extracts the literal value of a path-bearing element.
func constantText(n *ast.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ast.KindStringConstant:
		if n.Value != "" {
			return n.Value
		}
		return strings.Trim(n.Text, `"'`)
	case ast.KindExpandableString:
		// Only usable when the string has no embedded expressions; an
		// interpolated path cannot be resolved statically.
		if len(n.Nested) == 0 {
			return strings.Trim(n.Text, `"`)
		}
	}
	return ""
}

// WithinDir reports whether target lies inside dir, for the caller's
// approved-directory exception. Comparison is lexical, separator-agnostic,
// and case-insensitive (the dialect's filesystems are case-insensitive).
func WithinDir(target, dir string) bool {
	if target == "" || dir == "" {
		return false
	}
	norm := func(p string) string {
		p = strings.ReplaceAll(p, `\`, "/")
		p = path.Clean(p)
		return strings.ToLower(strings.TrimSuffix(p, "/"))
	}
	t, d := norm(target), norm(dir)
	return t == d || strings.HasPrefix(t, d+"/")
}
