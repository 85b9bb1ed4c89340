// Package commands implements the regmap-gen subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/regmap-hdl/regmap-go/pkg/compiler"
	"github.com/regmap-hdl/regmap-go/pkg/regmap"
	"github.com/regmap-hdl/regmap-go/pkg/regparse"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// patterns is a repeatable string flag.
type patterns []string

func (p *patterns) String() string { return strings.Join(*p, ",") }

func (p *patterns) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// buildInput is shared by every command that compiles descriptions.
type buildInput struct {
	Paths        []string
	Exclude      patterns
	AddressWidth uint
	Verbose      bool
}

// compile loads and compiles the inputs. On failure it has already printed
// the problem to stderr and returns the exit code to use.
func compile(ctx context.Context, in buildInput, stderr io.Writer) (*compiler.Build, int) {
	logger := newLogger(stderr, in.Verbose)

	loader := &regparse.Loader{Exclude: in.Exclude}
	mods, err := loader.Load(in.Paths...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, exitValidation
	}
	if len(mods) == 0 {
		fmt.Fprintln(stderr, "Error: no module descriptions found")
		return nil, exitCommandError
	}
	logger.Debug("loaded module descriptions", slog.Int("modules", len(mods)))

	build, report, err := compiler.Compile(ctx, mods, compiler.Config{
		AddressWidth: in.AddressWidth,
		Logger:       logger,
	})
	var be *regmap.BuildError
	switch {
	case errors.As(err, &be):
		printViolations(stderr, report)
		return nil, exitValidation
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return nil, exitCommandError
	}
	return build, exitSuccess
}

func printViolations(w io.Writer, report *regmap.Report) {
	for _, v := range report.Violations {
		fmt.Fprintf(w, "  ERROR %v\n", v)
	}
	fmt.Fprintf(w, "FAILED: %d violations, no headers written\n", len(report.Violations))
}
