//go:build linux || darwin

package counter

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// nativeBackend uses the getxattr/setxattr syscalls directly
type nativeBackend struct{}

func newNativeBackend() Backend {
	return nativeBackend{}
}

func (nativeBackend) Name() string {
	return BackendNative
}

func (nativeBackend) Get(path, key string) (string, bool, error) {
	attr := attrName(key)

	size, err := unix.Getxattr(path, attr, nil)
	if err != nil {
		if errors.Is(err, errNoAttr) {
			return "", false, nil
		}

		return "", false, &os.PathError{Op: "getxattr", Path: path, Err: err}
	}

	buf := make([]byte, size)
	n, err := unix.Getxattr(path, attr, buf)
	if err != nil {
		if errors.Is(err, errNoAttr) {
			return "", false, nil
		}

		return "", false, &os.PathError{Op: "getxattr", Path: path, Err: err}
	}

	return string(buf[:n]), true, nil
}

func (nativeBackend) Set(path, key, value string) error {
	if err := unix.Setxattr(path, attrName(key), []byte(value), 0); err != nil {
		return &os.PathError{Op: "setxattr", Path: path, Err: err}
	}

	return nil
}
