// Package docgen generates REST documentation from annotated Go packages.
//
// Example:
//
//	docgen.FromPackages("./api/...").
//	    Format(render.FormatJSON, render.FormatYAML).
//	    Title("Items API").
//	    ToDir(ctx, "./docs")
package docgen

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/broady/restdoc"
	"github.com/broady/restdoc/internal/discover"
	"github.com/broady/restdoc/render"
	"github.com/broady/restdoc/sink"
)

// Warning is a non-fatal finding, such as an endpoint without verbs.
type Warning = discover.Warning

// Result describes a generation run.
type Result struct {
	// Files are the written document names, in format order.
	Files []string

	Resources []*restdoc.Resource
	Warnings  []Warning

	// PackagePath and ModulePath describe the first loaded package.
	PackagePath string
	ModulePath  string
}

// Endpoints returns the number of resolved endpoints.
func (r *Result) Endpoints() int {
	n := 0
	for _, res := range r.Resources {
		n += len(res.Endpoints())
	}
	return n
}

// Generator provides a fluent API for documentation generation.
// Create one with FromPackages and configure it with method chaining.
type Generator struct {
	cfg Config
}

// FromPackages creates a Generator for the given package patterns.
func FromPackages(patterns ...string) *Generator {
	return &Generator{cfg: Config{Patterns: patterns}}
}

// FromConfig creates a Generator from an existing configuration.
func FromConfig(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Dir sets the directory package patterns are resolved in.
func (g *Generator) Dir(dir string) *Generator {
	g.cfg.Dir = dir
	return g
}

// Format adds output formats. Can be called multiple times.
func (g *Generator) Format(formats ...render.Format) *Generator {
	for _, f := range formats {
		if !slices.Contains(g.cfg.Formats, f) {
			g.cfg.Formats = append(g.cfg.Formats, f)
		}
	}
	return g
}

func (g *Generator) Title(title string) *Generator {
	g.cfg.Title = title
	return g
}

func (g *Generator) Version(version string) *Generator {
	g.cfg.Version = version
	return g
}

func (g *Generator) Description(desc string) *Generator {
	g.cfg.Description = desc
	return g
}

// StrictBody rejects methods with more than one request body candidate
// instead of keeping the last one.
func (g *Generator) StrictBody() *Generator {
	g.cfg.StrictBody = true
	return g
}

func (g *Generator) Logger(logger *slog.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// Config returns the configuration with defaults applied.
func (g *Generator) Config() Config {
	return applyDefaults(g.cfg)
}

// ToDir writes the rendered documents to dir.
func (g *Generator) ToDir(ctx context.Context, dir string) (*Result, error) {
	if dir == "" {
		return nil, restdoc.NewError(restdoc.CodeInvalidArgument, "output directory is required")
	}
	return g.ToSink(ctx, sink.NewFilesystemSink(dir))
}

// Generate renders the documents in memory.
func (g *Generator) Generate(ctx context.Context) (*Result, *sink.MemorySink, error) {
	mem := sink.NewMemorySink()
	result, err := g.ToSink(ctx, mem)
	if err != nil {
		return nil, nil, err
	}
	return result, mem, nil
}

// ToSink renders the documents into out.
func (g *Generator) ToSink(ctx context.Context, out sink.Sink) (*Result, error) {
	result, err := g.Discover(ctx)
	if err != nil {
		return nil, err
	}

	cfg := g.Config()
	for _, f := range cfg.Formats {
		content, err := render.Bytes(f, result.Resources, cfg.info())
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", f, err)
		}
		name := f.Filename()
		if err := out.WriteFile(ctx, name, content); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		cfg.Logger.Debug("wrote document", slog.String("file", name), slog.Int("bytes", len(content)))
		result.Files = append(result.Files, name)
	}

	for _, w := range result.Warnings {
		cfg.Logger.Warn(w.Message, slog.String("resource", w.Resource), slog.String("method", w.Method), slog.String("pos", w.Pos.String()))
	}
	return result, nil
}

// Discover validates the configuration and resolves resources without
// rendering anything.
func (g *Generator) Discover(ctx context.Context) (*Result, error) {
	cfg := g.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	found, err := discover.Load(ctx, discover.Options{
		Dir:        cfg.Dir,
		StrictBody: cfg.StrictBody,
		Logger:     cfg.Logger,
	}, cfg.Patterns...)
	if err != nil {
		return nil, err
	}
	return &Result{
		Resources:   found.Resources,
		Warnings:    found.Warnings,
		PackagePath: found.PackagePath,
		ModulePath:  found.ModulePath,
	}, nil
}
