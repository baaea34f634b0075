package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/predictor"
	"github.com/deepscout/matchup/internal/report"
)

// predict command flags.
var (
	// predictSeason is the season year; 0 uses the configured default.
	predictSeason int
	// predictAuto and predictTele select the scored component per phase
	// for every team without a --mode override.
	predictAuto string
	predictTele string
	// predictEndgame is the flat endgame bonus added to every match score.
	predictEndgame float64
	// predictModes holds per-team overrides in team=auto:tele[:endgame] form.
	predictModes []string
	// predictOffline restricts record loading to the local cache.
	predictOffline bool
	// predictRefresh refetches records even for cached teams.
	predictRefresh bool
	// predictJSON switches output from tables to a JSON document.
	predictJSON bool
	// predictCurveOut writes both density curves to a CSV file.
	predictCurveOut string
)

var predictCmd = &cobra.Command{
	Use:   "predict <red1> <red2> <blue1> <blue2>",
	Short: "Estimate the win probability of a red vs blue alliance matchup",
	Long: `Builds each team's score distribution from its cached season records,
combines teammates into alliance distributions, and reports the probability
that red outscores blue along with plottable density curves.

Teams missing from the cache are fetched from FTCScout first (unless
--offline). Every prediction is recorded in the local history.

Examples:
  # Straight matchup with the default specimen scoring
  matchup predict 14584 7172 11115 16093

  # Both alliances score samples, 10 points of endgame
  matchup predict 14584 7172 11115 16093 --auto sample --tele sample --endgame 10

  # One team deviates from the shared config
  matchup predict 14584 7172 11115 16093 --mode 7172=sample:specimen:5

  # Plot-ready curves for both alliances
  matchup predict 14584 7172 11115 16093 --curve-out matchup.csv`,
	Args: cobra.ExactArgs(4),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().IntVar(&predictSeason, "season", 0, "season year (default: configured season)")
	predictCmd.Flags().StringVar(&predictAuto, "auto", "specimen", "autonomous component: specimen or sample")
	predictCmd.Flags().StringVar(&predictTele, "tele", "specimen", "driver-controlled component: specimen or sample")
	predictCmd.Flags().Float64Var(&predictEndgame, "endgame", 0, "flat endgame points added per match")
	predictCmd.Flags().StringArrayVar(&predictModes, "mode", nil, "per-team override team=auto:tele[:endgame] (repeatable)")
	predictCmd.Flags().BoolVar(&predictOffline, "offline", false, "use cached records only, never fetch")
	predictCmd.Flags().BoolVar(&predictRefresh, "refresh", false, "refetch records even for cached teams")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print the full result as JSON")
	predictCmd.Flags().StringVar(&predictCurveOut, "curve-out", "", "write density curves to this CSV file")
}

func runPredict(cmd *cobra.Command, args []string) error {
	teams, err := parseTeamArgs(args)
	if err != nil {
		return err
	}

	base, err := buildConfig(predictAuto, predictTele, predictEndgame)
	if err != nil {
		return err
	}
	overrides, err := parseModeOverrides(predictModes)
	if err != nil {
		return err
	}
	for team := range overrides {
		if teams[0] != team && teams[1] != team && teams[2] != team && teams[3] != team {
			return fmt.Errorf("--mode team %d is not in this matchup", team)
		}
	}
	cfgFor := func(team int) model.ScoringConfig {
		if cfg, ok := overrides[team]; ok {
			return cfg
		}
		return base
	}

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	req := predictor.Request{
		Season: rt.seasonOrDefault(predictSeason),
		Red: predictor.Alliance{
			Teams:   [2]int{teams[0], teams[1]},
			Configs: [2]model.ScoringConfig{cfgFor(teams[0]), cfgFor(teams[1])},
		},
		Blue: predictor.Alliance{
			Teams:   [2]int{teams[2], teams[3]},
			Configs: [2]model.ScoringConfig{cfgFor(teams[2]), cfgFor(teams[3])},
		},
	}

	res, err := predictor.Predict(cmd.Context(), rt.source(predictOffline, predictRefresh), req)
	if err != nil {
		return err
	}

	if err := rt.db.InsertPrediction(res.Record()); err != nil {
		return fmt.Errorf("store prediction: %w", err)
	}

	if predictCurveOut != "" {
		if err := writeCurveFile(predictCurveOut, res); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote curve CSV: %s\n", predictCurveOut)
	}

	if predictJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	report.PrintMatchupSummary(os.Stdout, res)
	report.PrintTeamTable(os.Stdout, res)
	fmt.Fprintln(os.Stdout)
	report.PrintAllianceTable(os.Stdout, res)
	fmt.Fprintf(os.Stdout, "\nSaved prediction %s\n", res.ID)
	return nil
}

// parseTeamArgs converts the four positional args into team numbers.
func parseTeamArgs(args []string) ([4]int, error) {
	var teams [4]int
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n <= 0 {
			return teams, fmt.Errorf("invalid team number %q", a)
		}
		teams[i] = n
	}
	return teams, nil
}

// buildConfig parses category flag values into a scoring config.
func buildConfig(auto, tele string, endgame float64) (model.ScoringConfig, error) {
	var cfg model.ScoringConfig
	a, err := model.ParseScoreCategory(auto)
	if err != nil {
		return cfg, err
	}
	tl, err := model.ParseScoreCategory(tele)
	if err != nil {
		return cfg, err
	}
	if endgame < 0 {
		return cfg, fmt.Errorf("endgame bonus must not be negative, got %v", endgame)
	}
	return model.ScoringConfig{Auto: a, Tele: tl, EndgameBonus: endgame}, nil
}

// parseModeOverrides parses --mode entries of the form
// team=auto:tele[:endgame].
func parseModeOverrides(modes []string) (map[int]model.ScoringConfig, error) {
	if len(modes) == 0 {
		return nil, nil
	}
	out := make(map[int]model.ScoringConfig, len(modes))
	for _, m := range modes {
		teamStr, spec, ok := strings.Cut(m, "=")
		if !ok {
			return nil, fmt.Errorf("bad --mode %q (want team=auto:tele[:endgame])", m)
		}
		team, err := strconv.Atoi(strings.TrimSpace(teamStr))
		if err != nil || team <= 0 {
			return nil, fmt.Errorf("bad --mode team in %q", m)
		}
		parts := strings.Split(spec, ":")
		if len(parts) != 2 && len(parts) != 3 {
			return nil, fmt.Errorf("bad --mode %q (want team=auto:tele[:endgame])", m)
		}
		endgame := 0.0
		if len(parts) == 3 {
			endgame, err = strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("bad --mode endgame in %q", m)
			}
		}
		cfg, err := buildConfig(parts[0], parts[1], endgame)
		if err != nil {
			return nil, fmt.Errorf("bad --mode %q: %w", m, err)
		}
		out[team] = cfg
	}
	return out, nil
}

// writeCurveFile writes both curves as CSV to path.
func writeCurveFile(path string, res *predictor.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteCurveCSV(f, res.RedCurve, res.BlueCurve); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
