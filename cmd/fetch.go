package cmd

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/spf13/cobra"

	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/predictor"
)

var fetchSeason int

var fetchCmd = &cobra.Command{
	Use:   "fetch <team> [team...]",
	Short: "Fetch and cache season records for one or more teams",
	Long: `Downloads each team's profile, event list, and match scores from the
FTCScout API and replaces the team's cached season. Teams are fetched
concurrently.

Examples:
  matchup fetch 14584
  matchup fetch 14584 7172 11115 16093 --season 2024`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVar(&fetchSeason, "season", 0, "season year (default: configured season)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	teams := make([]int, 0, len(args))
	seen := make(map[int]bool, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid team number %q", a)
		}
		if seen[n] {
			fmt.Fprintf(os.Stderr, "[skip] team %d listed twice\n", n)
			continue
		}
		seen[n] = true
		teams = append(teams, n)
	}

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	season := rt.seasonOrDefault(fetchSeason)
	api := rt.api()

	records := make([][]model.EventMatches, len(teams))
	errs := make([]error, len(teams))

	var wg sync.WaitGroup
	for i, team := range teams {
		wg.Add(1)
		go func(i, team int) {
			defer wg.Done()
			records[i], errs[i] = predictor.FetchTeam(cmd.Context(), api, rt.db, rt.log, season, team)
		}(i, team)
	}
	wg.Wait()

	failed := 0
	for i, team := range teams {
		if errs[i] != nil {
			failed++
			fmt.Fprintf(os.Stderr, "[error] team %d: %v\n", team, errs[i])
			continue
		}
		matches := 0
		for _, ev := range records[i] {
			matches += len(ev.Scores)
		}
		fmt.Printf("team %d: %d events, %d matches cached\n", team, len(records[i]), matches)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fetches failed", failed, len(teams))
	}
	return nil
}
