package engine

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/swrun/internal/cache"
	"github.com/Norgate-AV/swrun/internal/counter"
)

// fakeCompiler writes a recognisable binary into the engine's filesystem
type fakeCompiler struct {
	fs      afero.Fs
	calls   int
	fail    bool
	partial bool // on failure, leave partial output behind
	outputs []string
}

func (c *fakeCompiler) Path() string {
	return "swiftc"
}

func (c *fakeCompiler) Compile(script, output string) error {
	c.calls++
	c.outputs = append(c.outputs, output)

	if c.fail {
		if c.partial {
			_ = afero.WriteFile(c.fs, output, []byte("partial"), 0o755)
		}

		return errors.New("compilation failed (exit code 1): General failure")
	}

	return afero.WriteFile(c.fs, output, []byte("binary of "+script), 0o755)
}

type execCall struct {
	path string
	args []string
}

// fakeLauncher records the hand-over instead of replacing the process
type fakeLauncher struct {
	calls []execCall
	err   error
}

func (l *fakeLauncher) Exec(path string, args []string) error {
	l.calls = append(l.calls, execCall{path: path, args: append([]string(nil), args...)})
	return l.err
}

func (l *fakeLauncher) last() execCall {
	if len(l.calls) == 0 {
		return execCall{}
	}

	return l.calls[len(l.calls)-1]
}

// spyCounter counts store traffic
type spyCounter struct {
	Counter
	reads  int
	writes int
}

func (s *spyCounter) Read(path string) uint {
	s.reads++
	return s.Counter.Read(path)
}

func (s *spyCounter) Write(path string, n uint) error {
	s.writes++
	return s.Counter.Write(path, n)
}

type fixture struct {
	fs       afero.Fs
	cache    *cache.Cache
	backend  *counter.Memory
	counter  *spyCounter
	compiler *fakeCompiler
	launcher *fakeLauncher
	hook     *test.Hook
	engine   *Engine
	script   string
	self     string
}

type fixtureOption func(*fixture, *Options)

func withThreshold(n uint) fixtureOption {
	return func(_ *fixture, o *Options) { o.Threshold = n }
}

// withoutBackend simulates a host with no attribute facility
func withoutBackend() fixtureOption {
	return func(f *fixture, o *Options) {
		log := o.Logger
		f.counter = &spyCounter{Counter: counter.NewStore(nil, log)}
		o.Counter = f.counter
	}
}

const (
	testScript = "/src/a.swift"
	testSelf   = "/usr/local/bin/swrun"
)

func newFixture(t testing.TB, opts ...fixtureOption) *fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	past := time.Now().Add(-time.Hour)

	require.NoError(t, afero.WriteFile(fs, testScript, []byte(`print("a")`), 0o644))
	require.NoError(t, fs.Chtimes(testScript, past, past))
	require.NoError(t, afero.WriteFile(fs, testSelf, []byte("swrun"), 0o755))
	require.NoError(t, fs.Chtimes(testSelf, past.Add(-time.Hour), past.Add(-time.Hour)))

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	f := &fixture{
		fs:       fs,
		cache:    cache.New(fs, "/cache/swrun"),
		backend:  counter.NewMemory(),
		compiler: &fakeCompiler{fs: fs},
		launcher: &fakeLauncher{},
		hook:     hook,
		script:   testScript,
		self:     testSelf,
	}
	f.counter = &spyCounter{Counter: counter.NewStore(f.backend, log)}

	o := Options{
		Fs:          fs,
		Cache:       f.cache,
		Counter:     f.counter,
		Compiler:    f.compiler,
		Launcher:    f.launcher,
		Logger:      log,
		Interpreter: "swift",
		Threshold:   3,
		SelfPath:    testSelf,
	}

	for _, opt := range opts {
		opt(f, &o)
	}

	f.engine = New(o)
	return f
}

func (f *fixture) binary() string {
	return f.cache.BinaryPath(f.script)
}

// installBinary places a cached binary with the given modification time
func (f *fixture) installBinary(t testing.TB, mtime time.Time) {
	t.Helper()

	require.NoError(t, f.fs.MkdirAll(f.cache.BinDir(), 0o755))
	require.NoError(t, afero.WriteFile(f.fs, f.binary(), []byte("cached"), 0o755))
	require.NoError(t, f.fs.Chtimes(f.binary(), mtime, mtime))
}

func (f *fixture) touch(t testing.TB, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, f.fs.Chtimes(path, mtime, mtime))
}

// runs reads the persisted counter straight from the backend
func (f *fixture) runs() uint {
	return counter.NewStore(f.backend, nil).Read(f.script)
}

func (f *fixture) binaryExists() bool {
	_, err := f.fs.Stat(f.binary())
	return err == nil || !os.IsNotExist(err)
}

func (f *fixture) binaryContent(t testing.TB) string {
	t.Helper()

	data, err := afero.ReadFile(f.fs, f.binary())
	require.NoError(t, err)
	return string(data)
}
