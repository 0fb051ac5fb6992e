package compiler

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Norgate-AV/swrun/internal/codes"
	"github.com/Norgate-AV/swrun/internal/config"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// CommandBuilder handles building compiler commands
type CommandBuilder struct {
	execCommand func(name string, args ...string) Commander
}

// NewCommandBuilder creates a new command builder
func NewCommandBuilder() *CommandBuilder {
	return &CommandBuilder{
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
	}
}

// BuildCommandArgs builds the compiler arguments: configured flags, the script, then -o output
func (cb *CommandBuilder) BuildCommandArgs(cfg *config.Config, script, output string) ([]string, error) {
	if output == "" {
		return nil, fmt.Errorf("no output path given")
	}

	absScript, err := filepath.Abs(script)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", script, err)
	}

	var cmdArgs []string
	for _, arg := range cfg.CompilerArgs {
		if arg != "" {
			cmdArgs = append(cmdArgs, arg)
		}
	}

	cmdArgs = append(cmdArgs, absScript, "-o", output)

	return cmdArgs, nil
}

// ExecuteCommand executes the compiler command. Compiler output goes to stderr
// so that the script's own stdout stays clean; silent discards it.
func (cb *CommandBuilder) ExecuteCommand(compilerPath string, cmdArgs []string, silent bool) error {
	c := cb.execCommand(compilerPath, cmdArgs...)
	if cmd, ok := c.(*exec.Cmd); ok && !silent {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}

	err := c.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			return &Error{Code: code, Err: err}
		}

		return &Error{Code: -1, Err: err}
	}

	return nil
}

// FormatCommand renders the command line for diagnostics
func FormatCommand(compilerPath string, cmdArgs []string) string {
	return strings.TrimSpace(compilerPath + " " + strings.Join(cmdArgs, " "))
}

// Error is a failed compiler invocation
type Error struct {
	// Code is the compiler exit code, or -1 if it never ran to completion
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("compiler failed to run: %v", e.Err)
	}

	return fmt.Sprintf("compilation failed (exit code %d): %s", e.Code, codes.GetErrorMessage(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Err
}
