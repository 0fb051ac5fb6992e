package engine

// Action is the terminal step chosen for an invocation
type Action int

const (
	// RunCached executes the existing compiled binary
	RunCached Action = iota

	// CompileThenRun rebuilds the binary and executes it
	CompileThenRun

	// Interpret hands the script to the interpreter
	Interpret
)

func (a Action) String() string {
	switch a {
	case RunCached:
		return "run-cached"
	case CompileThenRun:
		return "compile-then-run"
	case Interpret:
		return "interpret"
	default:
		return "unknown"
	}
}
