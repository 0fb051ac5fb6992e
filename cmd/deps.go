package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/Norgate-AV/swrun/internal/cache"
	"github.com/Norgate-AV/swrun/internal/compiler"
	"github.com/Norgate-AV/swrun/internal/config"
	"github.com/Norgate-AV/swrun/internal/counter"
	"github.com/Norgate-AV/swrun/internal/engine"
	"github.com/Norgate-AV/swrun/internal/launcher"
)

// newLogger writes diagnostics to stderr, leaving stdout to the script
func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func newStore(cfg *config.Config, log logrus.FieldLogger) (*counter.Store, error) {
	backend, err := counter.NewProber().Select(cfg.AttrBackend)
	if err != nil {
		return nil, err
	}

	store := counter.NewStore(backend, log)
	log.WithField("backend", store.Backend()).Debug("Run counter backend selected")

	return store, nil
}

func newCache(fs afero.Fs, cfg *config.Config) (*cache.Cache, error) {
	dir, err := cache.ResolveDir(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	return cache.New(fs, dir), nil
}

func newEngine(fs afero.Fs, cfg *config.Config, log logrus.FieldLogger) (*engine.Engine, error) {
	c, err := newCache(fs, cfg)
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg, log)
	if err != nil {
		return nil, err
	}

	log.WithField("dir", c.Root()).Debug("Using cache directory")

	return engine.New(engine.Options{
		Fs:          fs,
		Cache:       c,
		Counter:     store,
		Compiler:    compiler.New(cfg, log),
		Launcher:    launcher.New(),
		Logger:      log,
		Interpreter: cfg.Interpreter,
		Threshold:   cfg.Threshold,
		SelfPath:    engine.SelfPath(),
		OpenIndex: func() (*cache.Index, error) {
			return cache.OpenIndex(c.Root())
		},
	}), nil
}
