//go:build windows

package launcher

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
)

// replace approximates exec on Windows: run the target as a child with our
// standard streams, wait, and exit with its status
func replace(path string, argv []string, env []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Ctrl+C reaches the child through the console; let it decide how to exit
	signal.Ignore(os.Interrupt)

	if err := cmd.Start(); err != nil {
		return err
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}

		return err
	}

	os.Exit(0)
	return nil
}
