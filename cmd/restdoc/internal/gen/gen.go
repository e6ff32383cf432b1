package gen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/broady/restdoc/cmd/restdoc/internal/source"
	"github.com/broady/restdoc/render"
)

type Cmd struct {
	Out    string   `arg:"" help:"Output directory for generated documents."`
	Format []string `help:"Output formats: text, json, yaml." short:"f" default:"json" env:"RESTDOC_FORMAT"`

	source.Flags `embed:""`

	Stdout io.Writer `kong:"-"`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	stdout := c.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	var formats []render.Format
	for _, s := range c.Format {
		f, err := render.ParseFormat(s)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	outDir, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	result, err := c.Generator(logger).Format(formats...).ToDir(ctx, outDir)
	if err != nil {
		return err
	}

	for _, name := range result.Files {
		fmt.Fprintf(stdout, "✓ Wrote %s\n", filepath.Join(outDir, name))
	}
	fmt.Fprintf(stdout, "✓ %d resources, %d endpoints, %d warnings\n",
		len(result.Resources), result.Endpoints(), len(result.Warnings))
	return nil
}
