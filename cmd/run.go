package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/swrun/internal/config"
	"github.com/Norgate-AV/swrun/internal/engine"
	"github.com/Norgate-AV/swrun/internal/utils"
)

var runCmd = &cobra.Command{
	Use:           "run [flags] <script> [args...]",
	Short:         "Run a script",
	Long:          `Run a script, even one whose name clashes with a swrun subcommand.`,
	RunE:          runScript,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
}

func init() {
	runCmd.Flags().SetInterspersed(false)
}

func runScript(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return usageError{err: errNoScript}
	}

	script, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	loader := config.NewLoader()
	cfg, err := loader.LoadForScript(cmd, args)
	if err != nil {
		return err
	}

	log := newLogger(cfg.Verbose)

	fs := afero.NewOsFs()

	// A bad script is reported before anything touches the cache
	if err := engine.ValidateScript(fs, script); err != nil {
		return err
	}

	e, err := newEngine(fs, cfg, log)
	if err != nil {
		return err
	}

	return e.Run(script, args[1:], utils.IsInteractive())
}
