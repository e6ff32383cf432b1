package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/broady/restdoc"
	"github.com/broady/restdoc/cmd/restdoc/internal/source"
)

type Cmd struct {
	Werror bool `help:"Treat warnings as errors." name:"warnings-as-errors" env:"RESTDOC_WARNINGS_AS_ERRORS"`

	source.Flags `embed:""`

	Stdout io.Writer `kong:"-"`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	stdout := c.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	result, err := c.Generator(logger).Discover(ctx)
	if err != nil {
		return err
	}

	for _, res := range result.Resources {
		fmt.Fprintf(stdout, "✓ %s %s\n", res.Name(), res.RootPath())
		for _, ep := range res.Endpoints() {
			fmt.Fprintf(stdout, "    %s.%s  %s\n", res.Name(), ep.Method(), ep)
		}
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "! %s\n", w)
	}
	fmt.Fprintf(stdout, "✓ %d resources, %d endpoints\n", len(result.Resources), result.Endpoints())

	if c.Werror && len(result.Warnings) > 0 {
		return restdoc.Errorf(restdoc.CodeMisconfiguration, "%d warnings", len(result.Warnings))
	}
	return nil
}
