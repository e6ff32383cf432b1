package docgen

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/broady/restdoc"
	"github.com/broady/restdoc/render"
)

var validate = validator.New()

// Config holds the configuration for documentation generation.
type Config struct {
	// Patterns are go/packages patterns, e.g. "./api/...".
	Patterns []string `validate:"required,min=1,dive,required"`

	// Dir is the directory patterns are resolved in. Empty means the
	// current directory.
	Dir string `validate:"omitempty,dir"`

	// Formats selects the rendered documents. Default: json.
	Formats []render.Format `validate:"dive,oneof=text json yaml"`

	Title       string
	Version     string
	Description string

	// StrictBody rejects methods with more than one request body candidate.
	StrictBody bool

	Logger *slog.Logger `validate:"-"`
}

// applyDefaults returns a copy of cfg with defaults filled in.
func applyDefaults(cfg Config) Config {
	if len(cfg.Formats) == 0 {
		cfg.Formats = []render.Format{render.FormatJSON}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// Validate checks cfg and reports problems as a CodeInvalidArgument error.
func (cfg Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		return restdoc.DefaultErrorTransformer(err)
	}
	return nil
}

func (cfg Config) info() render.Info {
	return render.Info{Title: cfg.Title, Version: cfg.Version, Description: cfg.Description}
}
