package launcher

import (
	"errors"
	"os"
	"os/exec"
)

// Launcher hands control to another program
type Launcher struct{}

// New returns a launcher for the current process
func New() Launcher {
	return Launcher{}
}

// Exec replaces the current process with path, passing args after argv[0].
// See the package-level Exec.
func (Launcher) Exec(path string, args []string) error {
	return Exec(path, args)
}

// Exec replaces the current process with the target program.
// This function does not return on success - the current process is replaced
// and the target's exit code becomes ours. On failure, it returns an error.
//
// Error handling:
//   - Program not found: IsNotFound (caller should exit 127)
//   - Permission denied: IsPermissionDenied (caller should exit 126)
func Exec(path string, args []string) error {
	// Look up the full path to the executable
	execPath, err := exec.LookPath(path)
	if err != nil {
		return err
	}

	// argv[0] is the name as given, followed by the forwarded arguments
	argv := append([]string{path}, args...)

	return replace(execPath, argv, os.Environ())
}

// IsNotFound checks if the error indicates the program was not found
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return os.IsNotExist(err) || errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// IsPermissionDenied checks if the error indicates permission was denied
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}

	return os.IsPermission(err) || errors.Is(err, os.ErrPermission)
}
