// Package engine decides, per invocation, whether a script runs from its
// cached binary, gets compiled first, or is handed to the interpreter.
//
// Non-interactive runs compile eagerly whenever the binary is stale.
// Interactive runs interpret a stale script until it has been run Threshold
// times, then compile. The count lives on the script file (see package counter).
package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/Norgate-AV/swrun/internal/cache"
)

// Counter persists the per-script run count
type Counter interface {
	Read(path string) uint
	Write(path string, n uint) error
}

// Compiler builds script into a binary at output
type Compiler interface {
	Path() string
	Compile(script, output string) error
}

// Launcher hands the process over to another program. Exec only returns on failure.
type Launcher interface {
	Exec(path string, args []string) error
}

// IndexOpener opens the cache index; the engine closes what it opens
type IndexOpener func() (*cache.Index, error)

// Options configure an Engine
type Options struct {
	Fs          afero.Fs
	Cache       *cache.Cache
	Counter     Counter
	Compiler    Compiler
	Launcher    Launcher
	Logger      logrus.FieldLogger
	Interpreter string
	Threshold   uint

	// SelfPath is the swrun executable; a binary older than it is stale.
	// Empty disables that check.
	SelfPath string

	// OpenIndex is optional; without it compiled entries are not recorded
	OpenIndex IndexOpener

	// Now is swapped out in tests
	Now func() time.Time
}

// Engine picks and performs the action for one invocation
type Engine struct {
	fs          afero.Fs
	cache       *cache.Cache
	counter     Counter
	compiler    Compiler
	launcher    Launcher
	log         logrus.FieldLogger
	interpreter string
	threshold   uint
	selfPath    string
	openIndex   IndexOpener
	now         func() time.Time
}

// New creates an engine from opts
func New(opts Options) *Engine {
	e := &Engine{
		fs:          opts.Fs,
		cache:       opts.Cache,
		counter:     opts.Counter,
		compiler:    opts.Compiler,
		launcher:    opts.Launcher,
		log:         opts.Logger,
		interpreter: opts.Interpreter,
		threshold:   opts.Threshold,
		selfPath:    opts.SelfPath,
		openIndex:   opts.OpenIndex,
		now:         opts.Now,
	}

	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}

	if e.log == nil {
		e.log = logrus.StandardLogger()
	}

	if e.now == nil {
		e.now = time.Now
	}

	return e
}

// ValidateScript checks that script is an existing, readable regular file
func ValidateScript(fsys afero.Fs, script string) error {
	info, err := fsys.Stat(script)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrScriptNotFound, script)
		}

		return fmt.Errorf("%w: %s: %v", ErrScriptUnreadable, script, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrScriptUnreadable, script)
	}

	f, err := fsys.Open(script)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScriptUnreadable, script, err)
	}

	return f.Close()
}

// Decide picks the action for script given the would-be cache entry at
// cachePath. In the interactive stale case it also advances the run counter
// when the decision is to interpret.
func (e *Engine) Decide(script, cachePath string, interactive bool) (Action, error) {
	stale, err := e.isStale(script, cachePath)
	if err != nil {
		return Interpret, err
	}

	log := e.log.WithFields(logrus.Fields{
		"script":      script,
		"interactive": interactive,
		"stale":       stale,
	})

	if !interactive {
		if stale {
			log.Debug("Non-interactive run with stale binary, compiling")
			return CompileThenRun, nil
		}

		log.Debug("Non-interactive run with fresh binary")
		return RunCached, nil
	}

	if !stale {
		log.Debug("Interactive run with fresh binary")
		return RunCached, nil
	}

	runs := e.counter.Read(script)
	log = log.WithFields(logrus.Fields{"runs": runs, "threshold": e.threshold})

	if runs >= e.threshold {
		log.Debug("Run threshold reached, compiling")
		return CompileThenRun, nil
	}

	if err := e.counter.Write(script, runs+1); err != nil {
		log.WithError(err).Warn("Failed to update run counter")
	} else {
		log.Debugf("Interpreting, run counter now %d", runs+1)
	}

	return Interpret, nil
}

// Run performs the whole invocation for script with the forwarded args.
// On success the process is replaced and Run does not return.
func (e *Engine) Run(script string, args []string, interactive bool) error {
	absScript, err := filepath.Abs(script)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := ValidateScript(e.fs, absScript); err != nil {
		return err
	}

	cachePath := e.cache.BinaryPath(absScript)

	action, err := e.Decide(absScript, cachePath, interactive)
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"action": action.String(),
		"binary": cachePath,
	}).Debug("Decided")

	switch action {
	case RunCached:
		return e.exec(cachePath, args)

	case CompileThenRun:
		if err := e.compile(absScript, cachePath); err != nil {
			e.log.WithError(err).Warn("Compilation failed, falling back to the interpreter")
			return e.interpret(absScript, args)
		}

		if interactive {
			if err := e.counter.Write(absScript, 0); err != nil {
				e.log.WithError(err).Warn("Failed to reset run counter")
			}
		}

		return e.exec(cachePath, args)

	default:
		return e.interpret(absScript, args)
	}
}

// isStale reports whether the entry at cachePath must be rebuilt for script
func (e *Engine) isStale(script, cachePath string) (bool, error) {
	scriptInfo, err := e.fs.Stat(script)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", ErrScriptNotFound, script)
		}

		return false, fmt.Errorf("%w: %s: %v", ErrScriptUnreadable, script, err)
	}

	cacheInfo, err := e.fs.Stat(cachePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.log.WithError(err).WithField("binary", cachePath).Debug("Cannot stat cached binary, treating as missing")
		}

		return true, nil
	}

	if scriptInfo.ModTime().After(cacheInfo.ModTime()) {
		return true, nil
	}

	if e.selfPath != "" {
		selfInfo, err := e.fs.Stat(e.selfPath)
		if err != nil {
			e.log.WithError(err).Debug("Cannot stat swrun executable, skipping self check")
		} else if selfInfo.ModTime().After(cacheInfo.ModTime()) {
			return true, nil
		}
	}

	return false, nil
}

// compile builds script into a temporary file and renames it over cachePath
func (e *Engine) compile(script, cachePath string) error {
	tmp, err := e.cache.TempPath(script)
	if err != nil {
		return err
	}

	start := e.now()
	if err := e.compiler.Compile(script, tmp); err != nil {
		e.discard(tmp)
		return err
	}

	if err := e.cache.Install(tmp, cachePath); err != nil {
		e.discard(tmp)
		return err
	}

	e.record(script, cachePath, e.now().Sub(start))
	return nil
}

func (e *Engine) discard(tmp string) {
	if err := e.cache.Discard(tmp); err != nil {
		e.log.WithError(err).WithField("path", tmp).Warn("Failed to remove partial compiler output")
	}
}

// record notes the new entry in the index, warning when it previously belonged
// to a different script with the same base name
func (e *Engine) record(script, cachePath string, took time.Duration) {
	if e.openIndex == nil {
		return
	}

	index, err := e.openIndex()
	if err != nil {
		e.log.WithError(err).Debug("Cache index unavailable, entry not recorded")
		return
	}
	defer index.Close()

	name := cache.EntryName(script)
	if prev, err := index.Get(name); err == nil && prev != nil && prev.SourceFile != script {
		e.log.WithFields(logrus.Fields{
			"entry":    name,
			"previous": prev.SourceFile,
			"script":   script,
		}).Warn("Cache entry was built from a different script with the same name; replacing it")
	}

	var size int64
	if info, err := e.fs.Stat(cachePath); err == nil {
		size = info.Size()
	}

	err = index.Record(cache.Entry{
		Name:       name,
		SourceFile: script,
		BinaryPath: cachePath,
		Compiler:   e.compiler.Path(),
		Size:       size,
		Duration:   took,
		Timestamp:  e.now(),
	})
	if err != nil {
		e.log.WithError(err).Debug("Failed to record cache entry")
	}
}

func (e *Engine) interpret(script string, args []string) error {
	e.log.WithField("interpreter", e.interpreter).Debug("Handing over to interpreter")

	argv := append([]string{script}, args...)
	if err := e.launcher.Exec(e.interpreter, argv); err != nil {
		return fmt.Errorf("failed to run interpreter %s: %w", e.interpreter, err)
	}

	return nil
}

func (e *Engine) exec(binary string, args []string) error {
	e.log.WithField("binary", binary).Debug("Handing over to compiled binary")

	if err := e.launcher.Exec(binary, args); err != nil {
		return fmt.Errorf("failed to run %s: %w", binary, err)
	}

	return nil
}

// SelfPath returns the running executable with symlinks resolved, or "" if unknown
func SelfPath() string {
	path, err := os.Executable()
	if err != nil {
		return ""
	}

	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}

	return path
}
