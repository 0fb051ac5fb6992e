//go:build !windows

package launcher

import "syscall"

// replace swaps the process image; it only returns on failure
func replace(path string, argv []string, env []string) error {
	return syscall.Exec(path, argv, env)
}
