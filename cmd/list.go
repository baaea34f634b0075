package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepscout/matchup/internal/report"
)

var listPredictions bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached teams or stored predictions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listPredictions, "predictions", false, "list stored predictions instead of cached teams")
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if listPredictions {
		preds, err := rt.db.ListPredictions()
		if err != nil {
			return fmt.Errorf("list predictions: %w", err)
		}
		if len(preds) == 0 {
			fmt.Fprintln(os.Stdout, "No predictions stored yet. Run 'matchup predict <red1> <red2> <blue1> <blue2>' to add one.")
			return nil
		}
		report.PrintPredictions(os.Stdout, preds)
		return nil
	}

	sums, err := rt.db.ListTeamSummaries()
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	if len(sums) == 0 {
		fmt.Fprintln(os.Stdout, "No teams cached yet. Run 'matchup fetch <team>' to add one.")
		return nil
	}
	report.PrintTeamSummaries(os.Stdout, sums)
	return nil
}
