// Package source holds the package selection flags shared by the restdoc
// subcommands.
package source

import (
	"log/slog"

	"github.com/broady/restdoc/docgen"
)

// Flags select the packages to document. Embed with `embed:""`.
type Flags struct {
	Package    []string `help:"Package patterns to scan." short:"p" default:"." env:"RESTDOC_PACKAGES"`
	Dir        string   `help:"Directory package patterns are resolved in." type:"existingdir" env:"RESTDOC_DIR"`
	StrictBody bool     `help:"Reject methods with more than one request body candidate." env:"RESTDOC_STRICT_BODY"`
	Title      string   `help:"Document title." env:"RESTDOC_TITLE"`
	APIVersion string   `help:"Document version." name:"api-version" env:"RESTDOC_API_VERSION"`
}

// Generator returns a generator configured from the flags.
func (f *Flags) Generator(logger *slog.Logger) *docgen.Generator {
	g := docgen.FromPackages(f.Package...).
		Dir(f.Dir).
		Title(f.Title).
		Version(f.APIVersion).
		Logger(logger)
	if f.StrictBody {
		g.StrictBody()
	}
	return g
}
