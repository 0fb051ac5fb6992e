package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/swrun/internal/cache"
	"github.com/Norgate-AV/swrun/internal/codes"
	"github.com/Norgate-AV/swrun/internal/config"
	"github.com/Norgate-AV/swrun/internal/engine"
	"github.com/Norgate-AV/swrun/internal/launcher"
	"github.com/Norgate-AV/swrun/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "swrun [flags] <script> [args...]",
	Short: "Run scripts, compiling them once they are worth it",
	Long: `swrun runs a script through its interpreter or through a cached compiled
binary, compiling only when necessary.

Non-interactive runs compile whenever the cached binary is stale. Interactive
runs keep interpreting a changed script until it has been run --threshold
times, then compile it.

Everything after the script path is passed to the script unchanged.`,
	RunE:          runScript,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
}

// usageError marks command line mistakes
type usageError struct {
	err error
}

func (e usageError) Error() string {
	return e.err.Error()
}

func (e usageError) Unwrap() error {
	return e.err
}

var errNoScript = errors.New("no script given")

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "swrun: %v\n", err)

		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "Run 'swrun --help' for usage.\n")
		}

		os.Exit(exitCode(err))
	}
}

// exitCode maps an error from a command to the process exit status
func exitCode(err error) int {
	var usage usageError

	switch {
	case err == nil:
		return codes.Success
	case errors.As(err, &usage):
		return codes.Usage
	case errors.Is(err, engine.ErrScriptNotFound),
		errors.Is(err, engine.ErrScriptUnreadable),
		errors.Is(err, cache.ErrNoCacheDir):
		return codes.Failure
	case launcher.IsNotFound(err):
		return codes.NotFound
	case launcher.IsPermissionDenied(err):
		return codes.NotExecutable
	default:
		return codes.Failure
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	// Stop at the script path; the rest belongs to the script
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print the decision and every step taken")
	rootCmd.PersistentFlags().Uint("threshold", config.DefaultThreshold, "Interactive runs of a changed script before it is compiled")
	rootCmd.PersistentFlags().String("interpreter", config.DefaultInterpreter, "Interpreter used to run scripts directly")
	rootCmd.PersistentFlags().String("compiler", config.DefaultCompiler, "Compiler used to build cached binaries")
	rootCmd.PersistentFlags().String("cache-dir", "", "Cache directory (default: platform cache dir)")
	rootCmd.PersistentFlags().BoolP("silent", "s", false, "Suppress console output from the compiler")
	rootCmd.PersistentFlags().String("attr-backend", config.DefaultAttrBackend, "Run counter backend: auto, xattr, xattr-tool, getfattr or none")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(counterCmd)
}
