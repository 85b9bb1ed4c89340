// Package compiler runs a whole register-map build: every module is
// resolved and checked, the build-wide checks see the complete module set,
// and headers are emitted only if no violation was found anywhere.
package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/regmap-hdl/regmap-go/pkg/cheader"
	"github.com/regmap-hdl/regmap-go/pkg/regmap"
)

// Config controls a build.
type Config struct {
	// AddressWidth is the target address width in bits. Zero means 32.
	AddressWidth uint

	// Parallelism bounds concurrent module resolution. Zero means GOMAXPROCS.
	Parallelism int

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.AddressWidth == 0 {
		c.AddressWidth = regmap.DefaultAddressWidth
	}
	if c.Parallelism <= 0 {
		c.Parallelism = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Artifact is one generated file.
type Artifact struct {
	Module  string
	Name    string
	Content []byte
}

// Build is the result of a successful compilation.
type Build struct {
	AddressWidth uint
	Modules      []*regmap.ResolvedModule
	Headers      []Artifact
	Warnings     []regmap.Warning
}

// Header returns the header generated for the named module.
func (b *Build) Header(module string) (Artifact, bool) {
	for _, a := range b.Headers {
		if a.Module == module {
			return a, true
		}
	}
	return Artifact{}, false
}

// Compile resolves, validates and emits every module. On any violation it
// returns the full *regmap.BuildError together with the report, and no
// headers.
func Compile(ctx context.Context, modules []*regmap.Module, cfg Config) (*Build, *regmap.Report, error) {
	cfg = cfg.withDefaults()
	log := cfg.Logger

	resolved, report, err := Analyze(ctx, modules, cfg)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range report.Warnings {
		log.Warn("register map warning", slog.String("module", w.Module), slog.String("warning", w.Message))
	}
	if err := report.Err(); err != nil {
		log.Error("build failed", slog.Int("modules", len(modules)), slog.Int("violations", len(report.Violations)))
		return nil, report, err
	}

	emitter := cheader.NewEmitter(cfg.AddressWidth)
	build := &Build{
		AddressWidth: cfg.AddressWidth,
		Modules:      resolved,
		Warnings:     report.Warnings,
	}
	for _, rm := range resolved {
		content, err := emitter.Emit(rm)
		if err != nil {
			return nil, report, fmt.Errorf("emitting %s: %w", rm.Module.Name, err)
		}
		build.Headers = append(build.Headers, Artifact{
			Module:  rm.Module.Name,
			Name:    cheader.FileName(rm),
			Content: content,
		})
		log.Debug("emitted header",
			slog.String("module", rm.Module.Name),
			slog.String("file", cheader.FileName(rm)),
			slog.Int("registers", len(rm.Registers)),
			slog.Uint64("size", rm.Layout.Size()))
	}

	log.Info("build complete", slog.Int("modules", len(resolved)), slog.Int("headers", len(build.Headers)))
	return build, report, nil
}

// Analyze resolves every module concurrently and then runs the build-wide
// checks. Per-module findings are merged in input order so the report is
// deterministic. The returned error is only set for configuration errors
// or cancellation; violations are in the report.
func Analyze(ctx context.Context, modules []*regmap.Module, cfg Config) ([]*regmap.ResolvedModule, *regmap.Report, error) {
	cfg = cfg.withDefaults()

	alloc, err := regmap.NewAllocator(cfg.AddressWidth)
	if err != nil {
		return nil, nil, err
	}
	validator := regmap.NewValidator()

	resolved := make([]*regmap.ResolvedModule, len(modules))
	reports := make([]regmap.Report, len(modules))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for i, m := range modules {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rm := regmap.Resolve(m, alloc, &reports[i])
			validator.CheckModule(rm, &reports[i])
			resolved[i] = rm
			cfg.Logger.Debug("resolved module",
				slog.String("module", m.Name),
				slog.String("base", fmt.Sprintf("0x%X", m.BaseAddress)),
				slog.Int("violations", len(reports[i].Violations)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := &regmap.Report{}
	for i := range reports {
		report.Merge(&reports[i])
	}
	validator.CheckBuild(resolved, report)
	return resolved, report, nil
}
