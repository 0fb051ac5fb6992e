package cache

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// ErrNoCacheDir is returned when no platform cache location can be determined
var ErrNoCacheDir = errors.New("unable to determine a cache directory; set SWRUN_CACHE_DIR or --cache-dir")

// swapped out in tests
var (
	userCacheDir = os.UserCacheDir
	homeDir      = homedir.Dir
)

// ResolveDir picks the cache directory. Lookup order:
//
//  1. override (used as is)
//  2. $XDG_CACHE_HOME/swrun
//  3. os.UserCacheDir()/swrun
//  4. ~/.cache/swrun
func ResolveDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" && filepath.IsAbs(xdg) {
		return filepath.Join(xdg, AppName), nil
	}

	if dir, err := userCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, AppName), nil
	}

	if home, err := homeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cache", AppName), nil
	}

	return "", ErrNoCacheDir
}
