package codes

import "fmt"

// Exit codes used by swrun itself and recognised from child processes
const (
	Success       = 0
	Failure       = 1
	Usage         = 2
	NotExecutable = 126
	NotFound      = 127

	// signalBase is added to the signal number when a process is killed by a signal
	signalBase = 128
)

// ExitCodes maps conventional process exit codes to their descriptions
var ExitCodes = map[int]string{
	Success:       "Success",
	Failure:       "General failure",
	Usage:         "Invalid usage",
	NotExecutable: "Command found but not executable",
	NotFound:      "Command not found",
}

// IsSuccess returns true if the exit code indicates success
func IsSuccess(code int) bool {
	return code == Success
}

// GetErrorMessage returns the description for an exit code. Codes above 128
// are reported as the signal that terminated the process.
func GetErrorMessage(code int) string {
	if msg, ok := ExitCodes[code]; ok {
		return msg
	}

	if code > signalBase && code < signalBase+65 {
		return fmt.Sprintf("Terminated by signal %d", code-signalBase)
	}

	return "Unknown error"
}
