// Package main provides the pwshgate command-line driver. It reads one
// candidate PowerShell command (argument or stdin), runs it through the
// read-only gate, and prints the verdict; with -write-target it runs the
// write-target extractor instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agentfence/go-pwsh-gate/internal/color"
	"github.com/agentfence/go-pwsh-gate/internal/config"
	"github.com/agentfence/go-pwsh-gate/internal/gate"
	"github.com/agentfence/go-pwsh-gate/internal/logging"
	"github.com/agentfence/go-pwsh-gate/internal/pwsh/parser"
	"github.com/agentfence/go-pwsh-gate/internal/terminal"
)

// Exit codes
const (
	exitAllowed  = 0
	exitRejected = 1
	exitError    = 2
)

// Error definitions
var (
	ErrCommandRequired = errors.New("a command to validate is required (argument or stdin)")
)

var (
	configPath  = flag.String("config", "", "path to TOML config file (optional)")
	logLevel    = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat   = flag.String("log-format", "text", "log format (text, json)")
	writeTarget = flag.Bool("write-target", false, "extract the write target instead of validating")
	noColor     = flag.Bool("no-color", false, "disable colored output")
	quiet       = flag.Bool("quiet", false, "suppress the verdict line; exit code only")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logging.Setup(*logLevel, *logFormat); err != nil {
		fmt.Fprintln(os.Stderr, "pwshgate:", err)
		return exitError
	}
	runID := logging.GenerateRunID()
	logger := slog.Default().With("run_id", runID)

	command, err := readCommand()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pwshgate:", err)
		return exitError
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pwshgate:", err)
		return exitError
	}

	patterns, err := buildPatterns(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pwshgate:", err)
		return exitError
	}

	p := parser.New(parser.NewDefaultLocator(),
		parser.WithTimeout(cfg.Gate.Timeout()),
		parser.WithOutputLimit(cfg.Gate.OutputLimit()),
		parser.WithLogger(logger))
	g := gate.New(p, patterns, logger)

	detector := terminal.NewDetector(terminal.DetectorOptions{ForceNonInteractive: *noColor})
	palette := color.NewPalette(detector.IsInteractive())

	if *writeTarget {
		return runWriteTarget(ctx, g, cfg, command, palette)
	}
	return runCheck(ctx, g, command, palette)
}

func runCheck(ctx context.Context, g *gate.Gate, command string, palette color.Palette) int {
	verdict, err := g.Check(ctx, command)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pwshgate:", err)
		return exitError
	}

	if verdict.Allowed {
		if !*quiet {
			fmt.Println(palette.Allowed("ALLOWED"))
		}
		return exitAllowed
	}

	if !*quiet {
		fmt.Printf("%s %s\n", palette.Rejected("REJECTED"), palette.Reason(verdict.Rejection.String()))
		printStages(verdict.Stages, palette)
	}
	return exitRejected
}

func runWriteTarget(ctx context.Context, g *gate.Gate, cfg *config.Config, command string, palette color.Palette) int {
	target, found, err := g.ExtractWriteTarget(ctx, command)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pwshgate:", err)
		return exitError
	}
	if !found {
		if !*quiet {
			fmt.Println(palette.Muted("no write target"))
		}
		return exitRejected
	}

	if !*quiet {
		fmt.Println(target)
	}
	for _, dir := range cfg.WriteException.AllowedDirs {
		if gate.WithinDir(target, dir) {
			if !*quiet {
				fmt.Println(palette.Allowed("within approved directory " + dir))
			}
			return exitAllowed
		}
	}
	if len(cfg.WriteException.AllowedDirs) > 0 && !*quiet {
		fmt.Println(palette.Rejected("outside all approved directories"))
	}
	return exitRejected
}

func printStages(stages []gate.StageResult, palette color.Palette) {
	for _, stage := range stages {
		mark := palette.Allowed("pass")
		note := ""
		if !stage.Allowed {
			mark = palette.Rejected("fail")
			note = " (" + stage.Note + ")"
		}
		fmt.Printf("  %s  %s%s\n", mark, palette.Muted(stage.Command), note)
	}
}

// readCommand takes the candidate from the first positional argument, or
// from stdin when no argument is given.
func readCommand() (string, error) {
	if flag.NArg() > 0 {
		return strings.Join(flag.Args(), " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read command from stdin: %w", err)
	}
	command := strings.TrimSpace(string(data))
	if command == "" {
		return "", ErrCommandRequired
	}
	return command, nil
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return &config.Config{}, nil
	}
	return config.NewLoader().Load(*configPath)
}

func buildPatterns(cfg *config.Config) ([]gate.CompiledPattern, error) {
	specs := cfg.PatternSpecs()
	if specs == nil {
		return gate.DefaultReadOnlyPatterns(), nil
	}
	return gate.CompilePatterns(specs)
}
