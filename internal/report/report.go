// Package report renders pipeline results as terminal tables and CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/deepscout/matchup/internal/aggregator"
	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/predictor"
)

// newTable builds a table with the house style: right-aligned cells under
// centered headers.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintMatchupSummary prints a one-line banner for the matchup.
func PrintMatchupSummary(w io.Writer, res *predictor.Result) {
	fmt.Fprintf(w, "\nSeason %d  |  Red: %d & %d  vs  Blue: %d & %d\n\n",
		res.Season,
		res.Red.Teams[0].Team, res.Red.Teams[1].Team,
		res.Blue.Teams[0].Team, res.Blue.Teams[1].Team)
}

// PrintTeamTable prints the per-team estimated distributions.
func PrintTeamTable(w io.Writer, res *predictor.Result) {
	table := newTable(w)
	table.Header("ALLIANCE", "TEAM", "MATCHES", "MEAN", "STDDEV")

	appendTeam := func(alliance string, tr predictor.TeamResult) {
		table.Append(
			alliance,
			strconv.Itoa(tr.Team),
			strconv.Itoa(tr.Distribution.Samples),
			fmt.Sprintf("%.1f", tr.Distribution.Mean),
			fmt.Sprintf("%.2f", tr.Distribution.StdDev),
		)
	}
	appendTeam("red", res.Red.Teams[0])
	appendTeam("red", res.Red.Teams[1])
	appendTeam("blue", res.Blue.Teams[0])
	appendTeam("blue", res.Blue.Teams[1])
	table.Render()
}

// PrintAllianceTable prints the combined alliance distributions and the
// win probability from each side's perspective.
func PrintAllianceTable(w io.Writer, res *predictor.Result) {
	table := newTable(w)
	table.Header("ALLIANCE", "MEAN", "STDDEV", "WIN%")

	table.Append(
		"red",
		fmt.Sprintf("%.1f", res.Red.Combined.Mean),
		fmt.Sprintf("%.2f", res.Red.Combined.StdDev()),
		fmt.Sprintf("%.1f%%", res.WinProbability*100),
	)
	table.Append(
		"blue",
		fmt.Sprintf("%.1f", res.Blue.Combined.Mean),
		fmt.Sprintf("%.2f", res.Blue.Combined.StdDev()),
		fmt.Sprintf("%.1f%%", (1-res.WinProbability)*100),
	)
	table.Render()

	fmt.Fprintf(w, "\nRed alliance win probability: %.1f%%\n", res.WinProbability*100)
}

// PrintTeamHeader prints a one-line banner for a single team.
func PrintTeamHeader(w io.Writer, info model.TeamInfo) {
	parts := make([]string, 0, 3)
	for _, p := range []string{info.City, info.State, info.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	loc := strings.Join(parts, ", ")
	if loc == "" {
		loc = "location unknown"
	}
	fmt.Fprintf(w, "\nTeam %d: %s  |  %s  |  Rookie year: %d\n\n",
		info.Number, info.Name, loc, info.RookieYear)
}

// PrintEventBreakdown prints per-event match counts and mean scores.
func PrintEventBreakdown(w io.Writer, lines []aggregator.EventLine) {
	table := newTable(w)
	table.Header("EVENT", "MATCHES", "MEAN")

	for _, l := range lines {
		mean := "—"
		if l.Matches > 0 {
			mean = fmt.Sprintf("%.1f", l.Mean)
		}
		table.Append(l.EventCode, strconv.Itoa(l.Matches), mean)
	}
	table.Render()
}

// PrintDistribution prints a team's estimated distribution on one line.
func PrintDistribution(w io.Writer, d model.Distribution) {
	fmt.Fprintf(w, "\nEstimated score: mean %.1f, stddev %.2f (n=%d)\n",
		d.Mean, d.StdDev, d.Samples)
}

// PrintMatchTable prints every cached match record with its per-component
// points and the total under the given scoring config.
func PrintMatchTable(w io.Writer, cfg model.ScoringConfig, events []model.EventMatches) {
	table := newTable(w)
	table.Header("EVENT", "#", "AUTO_SPEC", "AUTO_SAMP", "DC_SPEC", "DC_SAMP", "TOTAL")

	for _, ev := range events {
		for i, s := range ev.Scores {
			table.Append(
				ev.EventCode,
				strconv.Itoa(i+1),
				fmt.Sprintf("%.0f", s.AutoSpecimen),
				fmt.Sprintf("%.0f", s.AutoSample),
				fmt.Sprintf("%.0f", s.DCSpecimen),
				fmt.Sprintf("%.0f", s.DCSample),
				fmt.Sprintf("%.1f", s.Total(cfg)),
			)
		}
	}
	table.Render()
}

// PrintTeamSummaries prints the cache inventory, one row per cached
// team/season pair.
func PrintTeamSummaries(w io.Writer, sums []model.TeamCacheSummary) {
	table := newTable(w)
	table.Header("TEAM", "NAME", "SEASON", "EVENTS", "MATCHES", "FETCHED")

	for _, s := range sums {
		season := "—"
		if s.Season > 0 {
			season = strconv.Itoa(s.Season)
		}
		table.Append(
			strconv.Itoa(s.Number),
			s.Name,
			season,
			strconv.Itoa(s.Events),
			strconv.Itoa(s.Matches),
			s.FetchedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// PrintPredictions prints stored prediction records, newest first.
func PrintPredictions(w io.Writer, preds []model.Prediction) {
	table := newTable(w)
	table.Header("ID", "SEASON", "RED", "BLUE", "RED_MEAN", "BLUE_MEAN", "RED_WIN%", "CREATED")

	for _, p := range preds {
		id := p.ID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append(
			id,
			strconv.Itoa(p.Season),
			fmt.Sprintf("%d & %d", p.Red1, p.Red2),
			fmt.Sprintf("%d & %d", p.Blue1, p.Blue2),
			fmt.Sprintf("%.1f", p.RedMean),
			fmt.Sprintf("%.1f", p.BlueMean),
			fmt.Sprintf("%.1f%%", p.WinProbability*100),
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// WriteCurveCSV writes curve series as CSV with a series,x,y header. The x
// values are already rounded for display; y keeps full precision.
func WriteCurveCSV(w io.Writer, series ...[]model.CurvePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"series", "x", "y"}); err != nil {
		return err
	}
	for _, s := range series {
		for _, p := range s {
			rec := []string{
				p.Label,
				strconv.FormatFloat(p.X, 'f', 2, 64),
				strconv.FormatFloat(p.Y, 'g', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
