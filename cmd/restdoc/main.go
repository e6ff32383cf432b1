package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/broady/restdoc/cmd/restdoc/internal/check"
	"github.com/broady/restdoc/cmd/restdoc/internal/gen"
	"github.com/broady/restdoc/cmd/restdoc/internal/serve"
)

type CLI struct {
	LogLevel  string `help:"Log level." enum:"debug,info,warn,error" default:"warn" env:"RESTDOC_LOG_LEVEL"`
	LogFormat string `help:"Log format." enum:"text,json" default:"text" env:"RESTDOC_LOG_FORMAT"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate OpenAPI documents and endpoint listings."`
	Check   check.Cmd  `cmd:"" help:"Resolve endpoints and report problems without writing files."`
	Serve   serve.Cmd  `cmd:"" help:"Serve the generated documents over HTTP."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

// newLogger builds the CLI logger from the --log-level and --log-format flags.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("restdoc"),
		kong.Description("Document REST services declared with //rest: directives."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logger := newLogger(os.Stderr, cli.LogLevel, cli.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(logger)
	err = kctx.Run()
	stop()
	kctx.FatalIfErrorf(err)
}
