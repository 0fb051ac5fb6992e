package counter

import (
	"fmt"
	"os/exec"
)

// Backend names, in probe preference order
const (
	BackendAuto      = "auto"
	BackendNative    = "xattr"
	BackendXattrTool = "xattr-tool"
	BackendFattr     = "getfattr"
	BackendNone      = "none"
)

// Prober selects a backend by checking what the host provides
type Prober struct {
	lookPath    func(file string) (string, error)
	execCommand func(name string, args ...string) Commander
	native      func() Backend
}

// NewProber creates a prober that looks at the real host
func NewProber() *Prober {
	return &Prober{
		lookPath: exec.LookPath,
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
		native: newNativeBackend,
	}
}

// Probe returns the first available backend in preference order, or nil:
//
//  1. native extended attribute syscalls
//  2. the macOS xattr tool
//  3. the getfattr/setfattr tools
func (p *Prober) Probe() Backend {
	if b := p.native(); b != nil {
		return b
	}

	if b := p.xattrTool(); b != nil {
		return b
	}

	return p.fattrTools()
}

// Select returns the backend called name. "auto" (or "") probes; "none" returns nil.
// A named backend that is not available on this host is an error.
func (p *Prober) Select(name string) (Backend, error) {
	var b Backend

	switch name {
	case "", BackendAuto:
		return p.Probe(), nil
	case BackendNone:
		return nil, nil
	case BackendNative:
		b = p.native()
	case BackendXattrTool:
		b = p.xattrTool()
	case BackendFattr:
		b = p.fattrTools()
	default:
		return nil, fmt.Errorf("unknown attribute backend %q (want auto, xattr, xattr-tool, getfattr or none)", name)
	}

	if b == nil {
		return nil, fmt.Errorf("attribute backend %q is not available on this host", name)
	}

	return b, nil
}

func (p *Prober) xattrTool() Backend {
	if _, err := p.lookPath("xattr"); err != nil {
		return nil
	}

	return &xattrTool{execCommand: p.execCommand}
}

func (p *Prober) fattrTools() Backend {
	if _, err := p.lookPath("getfattr"); err != nil {
		return nil
	}

	if _, err := p.lookPath("setfattr"); err != nil {
		return nil
	}

	return &fattrTools{execCommand: p.execCommand}
}
