package serve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/broady/restdoc/cmd/restdoc/internal/source"
	"github.com/broady/restdoc/internal/docserver"
	"github.com/broady/restdoc/middleware"
	"github.com/broady/restdoc/render"
)

type Cmd struct {
	Addr            string        `help:"Address to listen on." default:"localhost:9000" env:"RESTDOC_ADDR"`
	CORS            bool          `help:"Allow cross-origin requests from any origin." name:"cors" env:"RESTDOC_CORS"`
	ShutdownTimeout time.Duration `help:"Time allowed for in-flight requests on shutdown." default:"5s" env:"RESTDOC_SHUTDOWN_TIMEOUT"`

	source.Flags `embed:""`

	Stdout io.Writer `kong:"-"`

	// ready receives the bound address once listening; used by tests.
	ready chan<- net.Addr `kong:"-"`
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

	opts := docserver.Options{
		Info:   render.Info{Title: c.Title, Version: c.APIVersion},
		Logger: logger,
	}
	if c.CORS {
		opts.CORS = middleware.DefaultCORSConfig()
	}
	s, err := docserver.New(result.Resources, opts)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Fprintf(stdout, "restdoc serving %d endpoints on http://%s\n", result.Endpoints(), ln.Addr())
	if c.ready != nil {
		c.ready <- ln.Addr()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", c.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
