// Package config loads and validates the gate's TOML configuration: the
// read-only allow-list, parser bounds, and the approved write-exception
// directories.
package config

import (
	"time"

	"github.com/agentfence/go-pwsh-gate/internal/gate"
)

// SupportedVersion is the config schema version this binary understands.
const SupportedVersion = "1.0"

// Defaults applied when fields are absent.
const (
	DefaultParserTimeout     = 10 * time.Second
	DefaultParserOutputLimit = 4 << 20 // 4 MiB
)

// Config is the root of the TOML document.
type Config struct {
	Version        string               `toml:"version"`
	Gate           GateConfig           `toml:"gate"`
	WriteException WriteExceptionConfig `toml:"write_exception"`
}

// GateConfig bounds the parser subprocess and supplies the allow-list.
type GateConfig struct {
	// ParserTimeout is a duration string ("10s"); zero value keeps the
	// default. Parsed during validation.
	ParserTimeout string `toml:"parser_timeout"`
	// ParserOutputLimit caps parser stdout in bytes; 0 keeps the default.
	ParserOutputLimit int64 `toml:"parser_output_limit"`
	// Allow lists the approved read-only command patterns. Empty means
	// the built-in allow-list is used.
	Allow []AllowPattern `toml:"allow"`

	parserTimeout time.Duration
}

// AllowPattern is one allow-list entry. CaseSensitive opts the pattern out
// of the case-insensitive matching retry.
type AllowPattern struct {
	Pattern       string `toml:"pattern"`
	CaseSensitive bool   `toml:"case_sensitive"`
}

// WriteExceptionConfig lists directories inside which otherwise-rejected
// write commands may be permitted by the caller.
type WriteExceptionConfig struct {
	AllowedDirs []string `toml:"allowed_dirs"`
}

// Timeout returns the effective parser timeout.
func (c *GateConfig) Timeout() time.Duration {
	if c.parserTimeout > 0 {
		return c.parserTimeout
	}
	return DefaultParserTimeout
}

// OutputLimit returns the effective parser output cap.
func (c *GateConfig) OutputLimit() int64 {
	if c.ParserOutputLimit > 0 {
		return c.ParserOutputLimit
	}
	return DefaultParserOutputLimit
}

// PatternSpecs bridges the configured allow-list to the pattern compiler.
// Returns nil when no patterns are configured.
func (c *Config) PatternSpecs() []gate.PatternSpec {
	if len(c.Gate.Allow) == 0 {
		return nil
	}
	specs := make([]gate.PatternSpec, len(c.Gate.Allow))
	for i, p := range c.Gate.Allow {
		specs[i] = gate.PatternSpec{Source: p.Pattern, CaseSensitive: p.CaseSensitive}
	}
	return specs
}
