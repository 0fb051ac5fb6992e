package counter

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Commander interface for testing
type Commander interface {
	Output() ([]byte, error)
}

// xattrTool drives the macOS xattr command
type xattrTool struct {
	execCommand func(name string, args ...string) Commander
}

func (x *xattrTool) Name() string {
	return BackendXattrTool
}

func (x *xattrTool) Get(path, key string) (string, bool, error) {
	out, err := x.execCommand("xattr", "-p", key, path).Output()
	if err != nil {
		if isNoSuchAttr(err) {
			return "", false, nil
		}

		return "", false, toolError("xattr -p", err)
	}

	return strings.TrimRight(string(out), "\r\n"), true, nil
}

func (x *xattrTool) Set(path, key, value string) error {
	if _, err := x.execCommand("xattr", "-w", key, value, path).Output(); err != nil {
		return toolError("xattr -w", err)
	}

	return nil
}

// fattrTools drives getfattr/setfattr from the Linux attr package
type fattrTools struct {
	execCommand func(name string, args ...string) Commander
}

func (f *fattrTools) Name() string {
	return BackendFattr
}

func (f *fattrTools) Get(path, key string) (string, bool, error) {
	out, err := f.execCommand("getfattr", "--only-values", "--absolute-names", "-n", userAttr(key), path).Output()
	if err != nil {
		if isNoSuchAttr(err) {
			return "", false, nil
		}

		return "", false, toolError("getfattr", err)
	}

	return strings.TrimRight(string(out), "\r\n"), true, nil
}

func (f *fattrTools) Set(path, key, value string) error {
	if _, err := f.execCommand("setfattr", "-n", userAttr(key), "-v", value, path).Output(); err != nil {
		return toolError("setfattr", err)
	}

	return nil
}

// userAttr places key in the Linux user namespace
func userAttr(key string) string {
	if strings.HasPrefix(key, "user.") {
		return key
	}

	return "user." + key
}

// isNoSuchAttr recognises the "attribute missing" failure of both tool families
func isNoSuchAttr(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}

	stderr := bytes.ToLower(exitErr.Stderr)
	return bytes.Contains(stderr, []byte("no such xattr")) || bytes.Contains(stderr, []byte("no such attribute"))
}

func toolError(op string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%s failed (exit code %d): %s", op, exitErr.ExitCode(), strings.TrimSpace(string(exitErr.Stderr)))
	}

	return fmt.Errorf("%s failed: %w", op, err)
}
