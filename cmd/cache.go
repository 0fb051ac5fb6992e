package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Norgate-AV/swrun/internal/cache"
	"github.com/Norgate-AV/swrun/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the compiled script cache",
}

var cachePathCmd = &cobra.Command{
	Use:          "path",
	Short:        "Print the cache directory",
	Args:         cobra.NoArgs,
	RunE:         runCachePath,
	SilenceUsage: true,
}

var cacheListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List cached binaries",
	Args:         cobra.NoArgs,
	RunE:         runCacheList,
	SilenceUsage: true,
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show cache statistics",
	Args:         cobra.NoArgs,
	RunE:         runCacheStats,
	SilenceUsage: true,
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Remove all cached binaries",
	Args:         cobra.NoArgs,
	RunE:         runCacheClear,
	SilenceUsage: true,
}

func init() {
	cacheListCmd.Flags().Bool("yaml", false, "Print entries as YAML")

	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// loadCache resolves the cache from configuration alone; there is no script
func loadCache(cmd *cobra.Command) (*cache.Cache, error) {
	cfg, err := config.NewLoader().LoadForScript(cmd, nil)
	if err != nil {
		return nil, err
	}

	return newCache(afero.NewOsFs(), cfg)
}

func runCachePath(cmd *cobra.Command, args []string) error {
	c, err := loadCache(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), c.Root())
	return nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	c, err := loadCache(cmd)
	if err != nil {
		return err
	}

	index, err := cache.OpenIndex(c.Root())
	if err != nil {
		return err
	}
	defer index.Close()

	entries, err := index.List()
	if err != nil {
		return err
	}

	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		if entries == nil {
			entries = []cache.Entry{}
		}

		out, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to encode entries: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No cached binaries")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tSIZE\tCOMPILED")

	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Name, e.SourceFile, e.Size, e.Timestamp.Format(time.RFC3339))
	}

	return w.Flush()
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	c, err := loadCache(cmd)
	if err != nil {
		return err
	}

	index, err := cache.OpenIndex(c.Root())
	if err != nil {
		return err
	}
	defer index.Close()

	count, err := index.Count()
	if err != nil {
		return err
	}

	size, err := c.Size()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Location: %s\n", c.Root())
	fmt.Fprintf(out, "Entries:  %d\n", count)
	fmt.Fprintf(out, "Size:     %d bytes\n", size)

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := loadCache(cmd)
	if err != nil {
		return err
	}

	index, err := cache.OpenIndex(c.Root())
	if err != nil {
		return err
	}
	defer index.Close()

	if err := c.Clear(index); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
	return nil
}
