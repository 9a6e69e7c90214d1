package gate

import "fmt"

// Reason is the closed set of rejection causes. Every rejected verdict
// carries exactly one.
type Reason string

// Rejection reasons.
const (
	ReasonParseError             Reason = "parse_error"
	ReasonInterpreterUnavailable Reason = "interpreter_unavailable"
	ReasonPipelineBackground     Reason = "pipeline_background"
	ReasonRedirect               Reason = "redirect"
	ReasonSubexpression          Reason = "subexpression"
	ReasonScriptBlock            Reason = "script_block"
	ReasonInvokeExpression       Reason = "invoke_expression"
	ReasonDotSourcing            Reason = "dot_sourcing"
	ReasonUnsafeCommand          Reason = "unsafe_command"
	ReasonAssignment             Reason = "assignment"
)

// String implements fmt.Stringer.
func (r Reason) String() string { return string(r) }

// description returns the fixed human-readable explanation for a reason.
func (r Reason) description() string {
	switch r {
	case ReasonParseError:
		return "the command could not be parsed"
	case ReasonInterpreterUnavailable:
		return "no PowerShell interpreter is available to analyze the command"
	case ReasonPipelineBackground:
		return "background execution hides activity from the session"
	case ReasonRedirect:
		return "output redirection writes outside the session"
	case ReasonSubexpression:
		return "embedded $(...) execution defeats static analysis"
	case ReasonScriptBlock:
		return "arbitrary {...} code blocks are unauditable"
	case ReasonInvokeExpression:
		return "indirect invocation can execute code outside the command surface"
	case ReasonDotSourcing:
		return "dot-sourcing runs a script with current-scope side effects"
	case ReasonUnsafeCommand:
		return "the command is not permitted in read-only mode"
	case ReasonAssignment:
		return "variable assignment mutates session state"
	default:
		return "the command was rejected"
	}
}

// Rejection explains why a command was refused. Offending carries the raw
// text of the construct that triggered the rejection, when one exists.
type Rejection struct {
	Reason    Reason
	Detail    string
	Offending string
}

// Error-style rendering for user-facing surfaces.
func (r *Rejection) String() string {
	msg := r.Reason.description()
	if r.Detail != "" {
		msg = r.Detail
	}
	if r.Offending != "" {
		return fmt.Sprintf("%s [%s]: %s", r.Reason, msg, r.Offending)
	}
	return fmt.Sprintf("%s [%s]", r.Reason, msg)
}

func reject(reason Reason, offending string) *Rejection {
	return &Rejection{Reason: reason, Offending: offending}
}

func rejectf(reason Reason, offending, format string, args ...any) *Rejection {
	return &Rejection{
		Reason:    reason,
		Detail:    fmt.Sprintf(format, args...),
		Offending: offending,
	}
}

// StageResult records the outcome for one pipeline stage: the extracted
// command string, whether it matched the read-only allow-list, and why
// not. Stages after the first rejection are not recorded (validation
// short-circuits).
type StageResult struct {
	Command string
	Allowed bool
	Note    string
}

// Verdict is the outcome of validating one candidate command.
type Verdict struct {
	Allowed   bool
	Rejection *Rejection
	Stages    []StageResult
}

// Rejected builds a rejected verdict with no stage breakdown.
func Rejected(reason Reason, detail string) Verdict {
	return Verdict{
		Allowed:   false,
		Rejection: &Rejection{Reason: reason, Detail: detail},
	}
}
