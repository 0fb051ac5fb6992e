package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/swrun/internal/config"
	"github.com/Norgate-AV/swrun/internal/engine"
)

var counterCmd = &cobra.Command{
	Use:          "counter <script>",
	Short:        "Show or reset a script's run counter",
	Args:         cobra.ExactArgs(1),
	RunE:         runCounter,
	SilenceUsage: true,
}

func init() {
	counterCmd.Flags().Bool("reset", false, "Reset the counter to 0")
}

func runCounter(cmd *cobra.Command, args []string) error {
	script, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if err := engine.ValidateScript(afero.NewOsFs(), script); err != nil {
		return err
	}

	cfg, err := config.NewLoader().LoadForScript(cmd, args)
	if err != nil {
		return err
	}

	store, err := newStore(cfg, newLogger(cfg.Verbose))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	reset, _ := cmd.Flags().GetBool("reset")
	if reset {
		if err := store.Write(script, 0); err != nil {
			return fmt.Errorf("failed to reset run counter: %w", err)
		}
	}

	fmt.Fprintf(out, "Backend:   %s\n", store.Backend())
	fmt.Fprintf(out, "Runs:      %d\n", store.Read(script))
	fmt.Fprintf(out, "Threshold: %d\n", cfg.Threshold)

	return nil
}
