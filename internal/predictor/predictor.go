// Package predictor orchestrates a full calculation request: load four
// teams' season records, estimate each team's distribution, combine
// teammates, and compare the alliances. Record loading fans out
// concurrently; the math itself is sequential and deterministic.
package predictor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepscout/matchup/internal/aggregator"
	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/stats"
)

// Labels carried on generated curve points to tell the two series apart.
const (
	LabelRed  = "red"
	LabelBlue = "blue"
)

// Alliance names two teams and their scoring configs, index-aligned.
type Alliance struct {
	Teams   [2]int
	Configs [2]model.ScoringConfig
}

// Request is one calculation request.
type Request struct {
	Season int
	Red    Alliance
	Blue   Alliance
}

// TeamResult is one team's estimated distribution.
type TeamResult struct {
	Team         int                `json:"team"`
	Distribution model.Distribution `json:"distribution"`
}

// AllianceResult pairs the per-team estimates with their combination.
type AllianceResult struct {
	Teams    [2]TeamResult              `json:"teams"`
	Combined model.AllianceDistribution `json:"combined"`
}

// Result is a complete successful calculation. Any failure along the way
// aborts the whole request; there are no partial results.
type Result struct {
	ID     string `json:"id"`
	Season int    `json:"season"`

	Red  AllianceResult `json:"red"`
	Blue AllianceResult `json:"blue"`

	// Probability that red outscores blue.
	WinProbability float64 `json:"winProbability"`

	RedCurve  []model.CurvePoint `json:"redCurve"`
	BlueCurve []model.CurvePoint `json:"blueCurve"`

	CreatedAt time.Time `json:"createdAt"`
}

// Record flattens the result into its storable form.
func (r *Result) Record() model.Prediction {
	return model.Prediction{
		ID:             r.ID,
		Season:         r.Season,
		Red1:           r.Red.Teams[0].Team,
		Red2:           r.Red.Teams[1].Team,
		Blue1:          r.Blue.Teams[0].Team,
		Blue2:          r.Blue.Teams[1].Team,
		RedMean:        r.Red.Combined.Mean,
		RedStdDev:      r.Red.Combined.StdDev(),
		BlueMean:       r.Blue.Combined.Mean,
		BlueStdDev:     r.Blue.Combined.StdDev(),
		WinProbability: r.WinProbability,
		CreatedAt:      r.CreatedAt,
	}
}

// Predict runs the full pipeline against src. The four team loads are
// independent and run concurrently; errors carry the team (or alliance)
// they belong to.
func Predict(ctx context.Context, src RecordSource, req Request) (*Result, error) {
	teams := [4]int{req.Red.Teams[0], req.Red.Teams[1], req.Blue.Teams[0], req.Blue.Teams[1]}
	cfgs := [4]model.ScoringConfig{req.Red.Configs[0], req.Red.Configs[1], req.Blue.Configs[0], req.Blue.Configs[1]}

	var wg sync.WaitGroup
	var records [4][]model.EventMatches
	var errs [4]error
	for i := range teams {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			records[i], errs[i] = src.TeamRecords(ctx, req.Season, teams[i])
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("team %d: %w", teams[i], err)
		}
	}

	var dists [4]model.Distribution
	for i := range teams {
		series := aggregator.BuildSeries(cfgs[i], records[i])
		d, err := stats.Estimate(series)
		if err != nil {
			return nil, fmt.Errorf("team %d: %w", teams[i], err)
		}
		dists[i] = d
	}

	red := stats.Combine(dists[0], dists[1])
	blue := stats.Combine(dists[2], dists[3])
	winProb := stats.WinProbability(red, blue)

	redCurve, err := stats.DensityCurve(red.Mean, red.StdDev(), LabelRed)
	if err != nil {
		return nil, fmt.Errorf("red alliance: %w", err)
	}
	blueCurve, err := stats.DensityCurve(blue.Mean, blue.StdDev(), LabelBlue)
	if err != nil {
		return nil, fmt.Errorf("blue alliance: %w", err)
	}

	return &Result{
		ID:     uuid.NewString(),
		Season: req.Season,
		Red: AllianceResult{
			Teams:    [2]TeamResult{{teams[0], dists[0]}, {teams[1], dists[1]}},
			Combined: red,
		},
		Blue: AllianceResult{
			Teams:    [2]TeamResult{{teams[2], dists[2]}, {teams[3], dists[3]}},
			Combined: blue,
		},
		WinProbability: winProb,
		RedCurve:       redCurve,
		BlueCurve:      blueCurve,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
