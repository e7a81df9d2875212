package factory

import (
	"os"
	"sync"

	"github.com/schmitthub/gitmerge/internal/cmdutil"
	"github.com/schmitthub/gitmerge/internal/config"
	"github.com/schmitthub/gitmerge/internal/git"
	"github.com/schmitthub/gitmerge/internal/iostreams"
	"github.com/schmitthub/gitmerge/internal/logger"
	"github.com/schmitthub/gitmerge/internal/native"
	"github.com/schmitthub/gitmerge/internal/prompter"
)

// New creates a fully-wired Factory with lazy-initialized dependency closures.
// Called exactly once at the CLI entry point (internal/gitmerge/cmd.go).
// Tests should NOT import this package; construct &cmdutil.Factory{} directly.
func New(version, commit string) *cmdutil.Factory {
	ios := iostreams.NewIOStreams()
	if !ios.IsOutputTTY() {
		ios.SetColorEnabled(false)
	}

	f := &cmdutil.Factory{
		Version:   version,
		Commit:    commit,
		IOStreams: ios,
	}
	f.Prompter = func() *prompter.Prompter { return prompter.NewPrompter(ios) }
	if wd, err := os.Getwd(); err == nil {
		f.WorkDir = wd
	}

	// Native library
	var (
		libOnce sync.Once
		lib     native.Library
	)
	f.Library = func() native.Library {
		libOnce.Do(func() {
			lib = newLibrary()
			logger.Debug().Str("backend", backendName).Msg("native merge library ready")
		})
		return lib
	}

	// Config. WorkDir may change after --repo is parsed, so the loader is
	// built on first use rather than here.
	var (
		configOnce   sync.Once
		configLoader *config.Loader
		configData   *config.Config
		configErr    error
	)
	f.ConfigLoader = func() *config.Loader {
		configOnce.Do(func() {
			configLoader = config.NewLoader(f.WorkDir)
		})
		return configLoader
	}
	f.Config = func() (*config.Config, error) {
		if configData != nil || configErr != nil {
			return configData, configErr
		}
		configData, configErr = f.ConfigLoader().LoadOrDefault()
		return configData, configErr
	}

	f.OpenRepository = func() (*git.Repository, error) {
		repo, err := git.OpenRepository(f.Library(), f.WorkDir)
		if err != nil {
			return nil, err
		}
		logger.SetContext(repo.Path())
		return repo, nil
	}

	return f
}
