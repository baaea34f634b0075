package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/deepscout/matchup/internal/aggregator"
	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/report"
	"github.com/deepscout/matchup/internal/stats"
)

// team command flags.
var (
	teamSeason  int
	teamAuto    string
	teamTele    string
	teamEndgame float64
	teamMatches bool
	teamOffline bool
	teamRefresh bool
	teamJSON    bool
)

var teamCmd = &cobra.Command{
	Use:   "team <number>",
	Short: "Show a single team's season records and estimated distribution",
	Long: `Shows one team's cached season: per-event match counts and mean scores,
optionally every match record, and the estimated score distribution under
the chosen scoring config.

Examples:
  matchup team 14584
  matchup team 14584 --matches
  matchup team 14584 --auto sample --tele sample --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTeam,
}

func init() {
	teamCmd.Flags().IntVar(&teamSeason, "season", 0, "season year (default: configured season)")
	teamCmd.Flags().StringVar(&teamAuto, "auto", "specimen", "autonomous component: specimen or sample")
	teamCmd.Flags().StringVar(&teamTele, "tele", "specimen", "driver-controlled component: specimen or sample")
	teamCmd.Flags().Float64Var(&teamEndgame, "endgame", 0, "flat endgame points added per match")
	teamCmd.Flags().BoolVar(&teamMatches, "matches", false, "also list every cached match record")
	teamCmd.Flags().BoolVar(&teamOffline, "offline", false, "use cached records only, never fetch")
	teamCmd.Flags().BoolVar(&teamRefresh, "refresh", false, "refetch records even if cached")
	teamCmd.Flags().BoolVar(&teamJSON, "json", false, "print the result as JSON")
}

func runTeam(cmd *cobra.Command, args []string) error {
	team, err := strconv.Atoi(args[0])
	if err != nil || team <= 0 {
		return fmt.Errorf("invalid team number %q", args[0])
	}

	cfg, err := buildConfig(teamAuto, teamTele, teamEndgame)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	season := rt.seasonOrDefault(teamSeason)
	records, err := rt.source(teamOffline, teamRefresh).TeamRecords(cmd.Context(), season, team)
	if err != nil {
		return err
	}

	info, err := rt.db.GetTeam(team)
	if err != nil {
		return fmt.Errorf("load team %d: %w", team, err)
	}

	lines := aggregator.Breakdown(cfg, records)
	series := aggregator.BuildSeries(cfg, records)

	var dist *model.Distribution
	d, err := stats.Estimate(series)
	switch {
	case err == nil:
		dist = &d
	case errors.Is(err, stats.ErrInsufficientData):
		// A thin cache is normal early in the season; the tables above
		// are still worth printing.
	default:
		return err
	}

	if teamJSON {
		out := struct {
			Team         *model.TeamInfo        `json:"team,omitempty"`
			Season       int                    `json:"season"`
			Events       []aggregator.EventLine `json:"events"`
			Distribution *model.Distribution    `json:"distribution,omitempty"`
		}{info, season, lines, dist}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if info != nil {
		report.PrintTeamHeader(os.Stdout, *info)
	} else {
		fmt.Fprintf(os.Stdout, "\nTeam %d (no cached profile)\n\n", team)
	}

	report.PrintEventBreakdown(os.Stdout, lines)

	if teamMatches {
		fmt.Fprintln(os.Stdout)
		report.PrintMatchTable(os.Stdout, cfg, records)
	}

	if dist != nil {
		report.PrintDistribution(os.Stdout, *dist)
	} else {
		fmt.Fprintf(os.Stdout, "\nNot enough matches to estimate a distribution (have %d, need 2).\n", len(series))
	}
	return nil
}
