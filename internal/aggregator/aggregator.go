// Package aggregator flattens cached match records into per-team score
// series. It is pure computation over model values; fetching and storage
// live elsewhere.
package aggregator

import "github.com/deepscout/matchup/internal/model"

// BuildSeries folds a team's events into one score series under cfg. Events
// are taken in the order supplied and matches in play order within each
// event, so the series is chronological. A team with no usable records
// yields an empty series; whether that is fatal is the caller's decision.
func BuildSeries(cfg model.ScoringConfig, events []model.EventMatches) []float64 {
	n := 0
	for _, ev := range events {
		n += len(ev.Scores)
	}
	series := make([]float64, 0, n)
	for _, ev := range events {
		for _, s := range ev.Scores {
			series = append(series, s.Total(cfg))
		}
	}
	return series
}

// EventLine is one row of a team's per-event breakdown.
type EventLine struct {
	EventCode string  `json:"eventCode"`
	Matches   int     `json:"matches"`
	Mean      float64 `json:"mean"`
}

// Breakdown summarizes each event's contribution to the series under cfg,
// in event order.
func Breakdown(cfg model.ScoringConfig, events []model.EventMatches) []EventLine {
	lines := make([]EventLine, 0, len(events))
	for _, ev := range events {
		line := EventLine{EventCode: ev.EventCode, Matches: len(ev.Scores)}
		if len(ev.Scores) > 0 {
			var sum float64
			for _, s := range ev.Scores {
				sum += s.Total(cfg)
			}
			line.Mean = sum / float64(len(ev.Scores))
		}
		lines = append(lines, line)
	}
	return lines
}
