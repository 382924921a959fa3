package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/eykd/svcrpt/internal/config"
	"github.com/eykd/svcrpt/internal/fs"
	"github.com/eykd/svcrpt/internal/logging"
)

// environment resolves configuration and logging for one command run.
type environment struct {
	getwd  func() (string, error)
	stderr io.Writer
}

func newEnvironment(getwd func() (string, error), stderr io.Writer) *environment {
	return &environment{getwd: getwd, stderr: stderr}
}

// session is what an adapter needs to run a service.
type session struct {
	cfg    *config.Config
	logger zerolog.Logger
	closer io.Closer
}

func (s *session) Close() error {
	return s.closer.Close()
}

// open loads the config named by --config, or the nearest svcrpt.yaml above
// the working directory, or defaults. Relative paths in a config file are
// resolved against the file's directory; override then applies flag values,
// which stay relative to the working directory.
func (e *environment) open(override func(*config.Config)) (*session, error) {
	cwd, err := e.getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	path := GetConfigPath()
	if path == "" {
		if found, err := fs.FindConfig(cwd, config.DefaultFile); err == nil {
			path = found
		}
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	base := cwd
	if path != "" {
		base = filepath.Dir(path)
	}
	resolvePaths(cfg, base)

	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	file := GetLogFile()
	if file == "" {
		file = cfg.LogFile
	}
	logger, closer, err := logging.New(logging.Options{
		Verbose: GetVerbose(),
		File:    file,
		Stderr:  e.stderr,
	})
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug().Str("config", path).Msg("loaded config")
	}
	return &session{cfg: cfg, logger: logger, closer: closer}, nil
}

// resolvePaths makes every relative directory in cfg relative to base.
func resolvePaths(cfg *config.Config, base string) {
	for _, p := range []*string{&cfg.Source, &cfg.Output, &cfg.LogFile, &cfg.Stack.Output, &cfg.Stack.TitlesFile, &cfg.Stack.Manifest} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}
