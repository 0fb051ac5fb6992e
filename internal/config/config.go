package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/Norgate-AV/swrun/internal/utils"
)

// Default configuration values
const (
	DefaultInterpreter = "swift"
	DefaultCompiler    = "swiftc"
	DefaultThreshold   = 3
	DefaultSilent      = false
	DefaultVerbose     = false
	DefaultAttrBackend = "auto"

	// EnvPrefix is prepended to every key when reading the environment (SWRUN_VERBOSE etc.)
	EnvPrefix = "SWRUN"
)

// DefaultCompilerArgs are passed to the compiler ahead of the script path
var DefaultCompilerArgs = []string{"-O"}

// Holds the configuration options for swrun
type Config struct {
	// Interpreter used to run scripts directly
	Interpreter string

	// Compiler used to produce cached binaries
	Compiler string

	// Extra compiler arguments, placed before the script path
	CompilerArgs []string

	// Number of interactive interpreted runs before a stale script is compiled
	Threshold uint

	// Overrides the platform cache directory when set
	CacheDir string

	// Suppress console output from the compiler
	Silent bool

	// Enable diagnostic output
	Verbose bool

	// Run counter backend: auto, xattr, xattr-tool, getfattr or none
	AttrBackend string
}

func Load() (*Config, error) {
	threshold, err := parseThreshold(viper.GetString("threshold"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Interpreter:  viper.GetString("interpreter"),
		Compiler:     viper.GetString("compiler"),
		CompilerArgs: viper.GetStringSlice("compiler_args"),
		Threshold:    threshold,
		CacheDir:     viper.GetString("cache_dir"),
		Silent:       utils.IsTruthy(viper.GetString("silent")),
		Verbose:      utils.IsTruthy(viper.GetString("verbose")),
		AttrBackend:  strings.ToLower(strings.TrimSpace(viper.GetString("attr_backend"))),
	}

	// Apply defaults if not set
	if cfg.Interpreter == "" {
		cfg.Interpreter = DefaultInterpreter
	}

	if cfg.Compiler == "" {
		cfg.Compiler = DefaultCompiler
	}

	if cfg.AttrBackend == "" {
		cfg.AttrBackend = DefaultAttrBackend
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Interpreter) == "" {
		return fmt.Errorf("interpreter not specified")
	}

	if strings.TrimSpace(c.Compiler) == "" {
		return fmt.Errorf("compiler not specified")
	}

	if c.CacheDir != "" {
		abs, err := filepath.Abs(c.CacheDir)
		if err != nil {
			return fmt.Errorf("invalid cache directory: %v", err)
		}

		c.CacheDir = abs
	}

	return nil
}

// parseThreshold rejects anything that is not a non-negative integer;
// an empty value means the default
func parseThreshold(s string) (uint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultThreshold, nil
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold %q: must be a non-negative integer", s)
	}

	return uint(n), nil
}
