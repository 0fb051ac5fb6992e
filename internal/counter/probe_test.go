package counter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProber(native bool, tools ...string) *Prober {
	available := make(map[string]bool)
	for _, tool := range tools {
		available[tool] = true
	}

	return &Prober{
		lookPath: func(file string) (string, error) {
			if available[file] {
				return "/usr/bin/" + file, nil
			}

			return "", errors.New("executable file not found in $PATH")
		},
		execCommand: func(name string, args ...string) Commander {
			return &mockCommander{}
		},
		native: func() Backend {
			if native {
				return NewMemory()
			}

			return nil
		},
	}
}

func backendName(b Backend) string {
	if b == nil {
		return BackendNone
	}

	return b.Name()
}

func TestProber_Probe(t *testing.T) {
	tests := []struct {
		name   string
		native bool
		tools  []string
		want   string
	}{
		{"native preferred over tools", true, []string{"xattr", "getfattr", "setfattr"}, BackendMemory},
		{"xattr tool preferred over getfattr", false, []string{"xattr", "getfattr", "setfattr"}, BackendXattrTool},
		{"getfattr pair", false, []string{"getfattr", "setfattr"}, BackendFattr},
		{"getfattr without setfattr", false, []string{"getfattr"}, BackendNone},
		{"nothing available", false, nil, BackendNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProber(tt.native, tt.tools...)
			assert.Equal(t, tt.want, backendName(p.Probe()))
		})
	}
}

func TestProber_Select(t *testing.T) {
	p := newTestProber(false, "getfattr", "setfattr")

	b, err := p.Select("")
	require.NoError(t, err)
	assert.Equal(t, BackendFattr, backendName(b))

	b, err = p.Select(BackendAuto)
	require.NoError(t, err)
	assert.Equal(t, BackendFattr, backendName(b))

	b, err = p.Select(BackendNone)
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = p.Select(BackendFattr)
	require.NoError(t, err)
	assert.Equal(t, BackendFattr, backendName(b))

	_, err = p.Select(BackendXattrTool)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")

	_, err = p.Select(BackendNative)
	require.Error(t, err)

	_, err = p.Select("sqlite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown attribute backend")
}

func TestNewProber(t *testing.T) {
	p := NewProber()
	assert.NotPanics(t, func() {
		p.Probe()
	})
}
