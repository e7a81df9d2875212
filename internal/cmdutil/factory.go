package cmdutil

import (
	"github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/schmitthub/gitmerge/internal/prompter"
)

// Factory provides shared dependencies for CLI commands.
// It is a dependency injection container: the struct defines what
// dependencies exist (the contract), while internal/cmd/factory
// wires the real implementations.
//
// Closure fields are set by the factory constructor and use lazy
// initialization internally. Commands extract only the fields they
// need into per-command Options structs.
type Factory struct {
	// Configuration from flags (set before command execution)
	WorkDir string
	Debug   bool

	// Version info (set at build time via ldflags)
	Version string
	Commit  string

	IOStreams *iostreams.IOStreams
	Prompter  func() *prompter.Prompter

	// Library returns the native merge library. The same instance is
	// returned for the life of the process.
	Library func() native.Library

	ConfigLoader func() *config.Loader
	Config       func() (*config.Config, error)

	// OpenRepository opens the repository containing WorkDir. The caller
	// owns the result and must Close it.
	OpenRepository func() (*git.Repository, error)
}
