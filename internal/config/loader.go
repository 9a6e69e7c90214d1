package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/agentfence/go-pwsh-gate/internal/gate"
)

// Error definitions for the config package
var (
	ErrUnsupportedVersion = errors.New("unsupported config version")
	ErrInvalidTimeout     = errors.New("invalid parser_timeout")
	ErrEmptyPattern       = errors.New("allow entry with empty pattern")
	ErrRelativeDir        = errors.New("write_exception directory must be absolute")
)

// Loader handles loading and validating gate configurations.
type Loader struct{}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads, parses, and validates the config file at path.
func (l *Loader) Load(path string) (*Config, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator's -config flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return l.Parse(content)
}

// Parse decodes and validates TOML config content.
func (l *Loader) Parse(content []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := l.validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Version != "" && cfg.Version != SupportedVersion {
		return fmt.Errorf("%w: %q (want %q)", ErrUnsupportedVersion, cfg.Version, SupportedVersion)
	}

	if cfg.Gate.ParserTimeout != "" {
		d, err := time.ParseDuration(cfg.Gate.ParserTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, cfg.Gate.ParserTimeout)
		}
		cfg.Gate.parserTimeout = d
	}

	for _, p := range cfg.Gate.Allow {
		if strings.TrimSpace(p.Pattern) == "" {
			return ErrEmptyPattern
		}
	}
	// Compile once here so a broken pattern fails at load time, not on
	// the first validation call.
	if specs := cfg.PatternSpecs(); specs != nil {
		if _, err := gate.CompilePatterns(specs); err != nil {
			return err
		}
	}

	for _, dir := range cfg.WriteException.AllowedDirs {
		if !isAbsolutePath(dir) {
			return fmt.Errorf("%w: %q", ErrRelativeDir, dir)
		}
	}
	return nil
}

// isAbsolutePath accepts both Unix-absolute and Windows drive-letter
// forms, since the gate's config may describe paths for either host.
func isAbsolutePath(p string) bool {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\\`) {
		return true
	}
	if len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/') {
		return true
	}
	return false
}
