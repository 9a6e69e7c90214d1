// Package ast defines the syntax-tree node schema shared with the external
// PowerShell parser process. The validator never parses PowerShell syntax
// itself; it consumes trees in this schema and fails closed when the schema
// is violated.
package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies the syntactic category of a Node. The set is closed:
// kind strings the decoder does not recognize are mapped to KindOther so
// that unrecognized structure still flows through the dangerous-construct
// scanner instead of being silently trusted.
type Kind string

// Node kinds relevant to validation.
const (
	KindScriptRoot            Kind = "ScriptRoot"
	KindNamedBlock            Kind = "NamedBlock"
	KindPipeline              Kind = "Pipeline"
	KindCommand               Kind = "Command"
	KindCommandExpression     Kind = "CommandExpression"
	KindAssignment            Kind = "Assignment"
	KindSubExpression         Kind = "SubExpression"
	KindScriptBlockExpression Kind = "ScriptBlockExpression"
	KindFileRedirection       Kind = "FileRedirection"
	KindExpandableString      Kind = "ExpandableString"
	KindCommandParameter      Kind = "CommandParameter"
	KindInvokeMember          Kind = "InvokeMemberExpression"
	KindStringConstant        Kind = "StringConstant"
	KindVariableReference     Kind = "VariableReference"
	KindOther                 Kind = "Other"
)

var knownKinds = map[Kind]struct{}{
	KindScriptRoot:            {},
	KindNamedBlock:            {},
	KindPipeline:              {},
	KindCommand:               {},
	KindCommandExpression:     {},
	KindAssignment:            {},
	KindSubExpression:         {},
	KindScriptBlockExpression: {},
	KindFileRedirection:       {},
	KindExpandableString:      {},
	KindCommandParameter:      {},
	KindInvokeMember:          {},
	KindStringConstant:        {},
	KindVariableReference:     {},
	KindOther:                 {},
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// UnmarshalJSON maps unrecognized kind strings to KindOther.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("node kind: %w", err)
	}
	if _, ok := knownKinds[Kind(s)]; ok {
		*k = Kind(s)
	} else {
		*k = KindOther
	}
	return nil
}

// Invocation operator recorded on a Command node.
const (
	// InvocationDot marks a command invoked via the dot-source operator
	// (". script.ps1"), which runs a script in the current scope.
	InvocationDot = "dot"
	// InvocationCall marks a command invoked via the call operator
	// ("& expr"), an indirect invocation of a computed command.
	InvocationCall = "call"
)

// Node is the universal syntax-tree element. Every node carries the kind
// discriminator and the verbatim source span; the remaining fields are
// kind-specific and empty for other kinds.
type Node struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`

	// ScriptRoot / NamedBlock
	Statements []*Node `json:"statements,omitempty"`

	// Pipeline
	Stages     []*Node `json:"stages,omitempty"`
	Background bool    `json:"background,omitempty"`

	// Command
	Elements     []*Node `json:"elements,omitempty"`
	Redirections []*Node `json:"redirections,omitempty"`
	Invocation   string  `json:"invocation,omitempty"`

	// CommandExpression
	Expression *Node `json:"expression,omitempty"`

	// ExpandableString
	Nested []*Node `json:"nested,omitempty"`

	// CommandParameter
	Name     string `json:"name,omitempty"`
	Argument *Node  `json:"argument,omitempty"`

	// InvokeMemberExpression
	Member string `json:"member,omitempty"`

	// StringConstant
	Value string `json:"value,omitempty"`

	// FileRedirection
	Target string `json:"target,omitempty"`

	// Other (unrecognized structure keeps its children visible to the
	// scanner rather than flattening to text)
	Children []*Node `json:"children,omitempty"`
}

// ChildNodes returns every child of the node, in source order per slice.
// Nil entries are skipped.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	appendAll := func(nodes ...*Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}
	appendAll(n.Statements...)
	appendAll(n.Stages...)
	appendAll(n.Elements...)
	appendAll(n.Redirections...)
	appendAll(n.Expression)
	appendAll(n.Nested...)
	appendAll(n.Argument)
	appendAll(n.Children...)
	return out
}

// Walk visits n and its descendants depth-first, pre-order. The visit
// function returns false to stop the walk; Walk reports whether the walk
// ran to completion.
func (n *Node) Walk(visit func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, c := range n.ChildNodes() {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}

// ParseResult is the outcome reported by the external parser: either a
// root node plus zero or more parse-error messages, or a failure with a
// diagnostic string. A result with OK set but non-empty Errors must still
// be treated as non-validatable by callers.
type ParseResult struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
	Root   *Node    `json:"ast,omitempty"`
	Diag   string   `json:"diag,omitempty"`
}

// Usable reports whether the result carries a tree the validator may
// inspect: a successful parse with a root and no reported syntax errors.
func (r *ParseResult) Usable() bool {
	return r != nil && r.OK && r.Root != nil && len(r.Errors) == 0
}

// Decode errors.
var (
	ErrEmptyDocument = errors.New("parser returned an empty document")
	ErrMalformedTree = errors.New("parser returned a malformed tree")
)

// DecodeParseResult decodes the JSON document produced by the parser
// process. Any schema violation is an error; the caller treats it as a
// parse failure and rejects the command.
func DecodeParseResult(data []byte) (*ParseResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var res ParseResult
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTree, err)
	}
	if res.OK && res.Root == nil {
		return nil, fmt.Errorf("%w: ok result without a root node", ErrMalformedTree)
	}
	return &res, nil
}
