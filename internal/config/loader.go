package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// userConfigDir is swapped out in tests
var userConfigDir = os.UserConfigDir

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForScript loads configuration for running the script given as the first argument.
// Precedence: flags, environment, local config, global config, defaults.
func (l *Loader) LoadForScript(cmd *cobra.Command, args []string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(args)
	l.bindEnv()
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("interpreter", DefaultInterpreter)
	viper.SetDefault("compiler", DefaultCompiler)
	viper.SetDefault("compiler_args", DefaultCompilerArgs)
	viper.SetDefault("threshold", DefaultThreshold)
	viper.SetDefault("silent", DefaultSilent)
	viper.SetDefault("verbose", DefaultVerbose)
	viper.SetDefault("cache_dir", "")
	viper.SetDefault("attr_backend", DefaultAttrBackend)
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	dir, err := userConfigDir()
	if err != nil || dir == "" {
		return
	}

	globalDir := filepath.Join(dir, "swrun")

	for _, ext := range Extensions {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig merges local configuration found next to (or above) the script
func (l *Loader) loadLocalConfig(args []string) {
	if len(args) > 0 {
		absScript, err := filepath.Abs(args[0])
		if err != nil {
			return // silently ignore, the engine reports a bad script path
		}

		localPath := FindLocalConfig(filepath.Dir(absScript))
		if localPath != "" {
			viper.SetConfigFile(localPath)
			_ = viper.MergeInConfig()
		}
	}
}

// bindEnv maps SWRUN_* variables onto config keys
func (l *Loader) bindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	flags := map[string]string{
		"interpreter":  "interpreter",
		"compiler":     "compiler",
		"threshold":    "threshold",
		"cache_dir":    "cache-dir",
		"silent":       "silent",
		"verbose":      "verbose",
		"attr_backend": "attr-backend",
	}

	for key, name := range flags {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
