package cache

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubDirs(t *testing.T, cacheDir string, cacheErr error, home string, homeErr error) {
	t.Helper()

	origCache, origHome := userCacheDir, homeDir
	userCacheDir = func() (string, error) { return cacheDir, cacheErr }
	homeDir = func() (string, error) { return home, homeErr }

	t.Cleanup(func() {
		userCacheDir, homeDir = origCache, origHome
	})
}

func TestResolveDir(t *testing.T) {
	errNone := errors.New("not available")

	tests := []struct {
		name     string
		override string
		xdg      string
		cacheDir string
		cacheErr error
		home     string
		homeErr  error
		want     string
		wantErr  error
	}{
		{
			name:     "override wins",
			override: "/custom/cache",
			xdg:      "/xdg",
			cacheDir: "/user/cache",
			want:     "/custom/cache",
		},
		{
			name:     "xdg cache home",
			xdg:      "/xdg",
			cacheDir: "/user/cache",
			want:     filepath.Join("/xdg", "swrun"),
		},
		{
			name:     "relative xdg is ignored",
			xdg:      "relative",
			cacheDir: "/user/cache",
			want:     filepath.Join("/user/cache", "swrun"),
		},
		{
			name:     "platform cache dir",
			cacheDir: "/user/cache",
			want:     filepath.Join("/user/cache", "swrun"),
		},
		{
			name:     "home fallback",
			cacheErr: errNone,
			home:     "/home/me",
			want:     filepath.Join("/home/me", ".cache", "swrun"),
		},
		{
			name:     "nothing available",
			cacheErr: errNone,
			homeErr:  errNone,
			wantErr:  ErrNoCacheDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			stubDirs(t, tt.cacheDir, tt.cacheErr, tt.home, tt.homeErr)

			got, err := ResolveDir(tt.override)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
