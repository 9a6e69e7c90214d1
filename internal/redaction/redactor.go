// Package redaction scrubs credential-looking substrings from candidate
// command text before it reaches logs. Candidate commands are adversarial
// input and routinely embed tokens and passwords; verdicts must be
// loggable without leaking them.
package redaction

import "regexp"

// DefaultPlaceholder replaces matched secrets in redacted output.
const DefaultPlaceholder = "[REDACTED]"

// sensitivePatterns matches common credential shapes inside command text.
var sensitivePatterns = []*regexp.Regexp{
	// key=value / key: value forms with secret-suggesting keys
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token|api[_-]?key|access[_-]?key)\s*[=:]\s*\S+`),
	// bearer and basic authorization values
	regexp.MustCompile(`(?i)\b(bearer|basic)\s+[A-Za-z0-9._~+/=-]{8,}`),
	// AWS access key IDs
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	// -Credential / -Token style named arguments
	regexp.MustCompile(`(?i)-(credential|token|password|apikey)\s+\S+`),
}

// Redactor replaces sensitive substrings with a placeholder. Safe for
// concurrent use.
type Redactor struct {
	placeholder string
}

// NewRedactor creates a redactor with the default placeholder.
func NewRedactor() *Redactor {
	return &Redactor{placeholder: DefaultPlaceholder}
}

// Redact returns text with every sensitive match replaced.
func (r *Redactor) Redact(text string) string {
	for _, pattern := range sensitivePatterns {
		text = pattern.ReplaceAllString(text, r.placeholder)
	}
	return text
}
