package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepscout/matchup/internal/config"
)

var dropForce bool

// dropCmd deletes the scout database file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the scout database",
	Long:  "Permanently delete the SQLite scout database. All cached records and stored predictions will be lost. Re-fetch teams afterwards to rebuild the cache.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := resolveDBPath(cmd, *cfg)

	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", path)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", path)
	return nil
}
