package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ScoreCategory selects which scored element family a phase counts.
type ScoreCategory int

const (
	CategorySpecimen ScoreCategory = iota
	CategorySample
)

func (c ScoreCategory) String() string {
	switch c {
	case CategorySpecimen:
		return "specimen"
	case CategorySample:
		return "sample"
	default:
		return "?"
	}
}

// ParseScoreCategory is the boundary where free-form input becomes a
// ScoreCategory. Anything but the two known names is rejected, so the rest
// of the pipeline never sees an invalid category.
func ParseScoreCategory(s string) (ScoreCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "specimen", "spec":
		return CategorySpecimen, nil
	case "sample", "samp":
		return CategorySample, nil
	default:
		return 0, fmt.Errorf("unknown score category %q (want specimen or sample)", s)
	}
}

// ScoringConfig fixes, for one team, which component counts per phase and
// the flat endgame points added on top. It is set once per calculation and
// never mutated mid-pipeline.
type ScoringConfig struct {
	Auto         ScoreCategory
	Tele         ScoreCategory
	EndgameBonus float64
}

// ---- Match records ----

// MatchScore holds the four component scores a team's alliance put up in a
// single match, already resolved to that team's side.
type MatchScore struct {
	AutoSpecimen float64 `json:"autoSpecimen"`
	AutoSample   float64 `json:"autoSample"`
	DCSpecimen   float64 `json:"dcSpecimen"`
	DCSample     float64 `json:"dcSample"`
}

// Total folds one match record into a single score under cfg: the selected
// auto component plus the selected driver-controlled component plus the
// endgame bonus.
func (m MatchScore) Total(cfg ScoringConfig) float64 {
	total := cfg.EndgameBonus
	switch cfg.Auto {
	case CategorySample:
		total += m.AutoSample
	default:
		total += m.AutoSpecimen
	}
	switch cfg.Tele {
	case CategorySample:
		total += m.DCSample
	default:
		total += m.DCSpecimen
	}
	return total
}

// EventMatches is one event's resolved records for one team, in the order
// the matches were played.
type EventMatches struct {
	EventCode string       `json:"eventCode"`
	Scores    []MatchScore `json:"scores"`
}

// ---- Distributions ----

// Distribution is a single team's estimated score distribution.
type Distribution struct {
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stdDev"`
	Samples int     `json:"samples"`
}

// AllianceDistribution is the combined distribution of two teammates.
// Variance is kept instead of stddev so combination stays a plain sum.
type AllianceDistribution struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

func (a AllianceDistribution) StdDev() float64 {
	return math.Sqrt(a.Variance)
}

// CurvePoint is one sample of a plottable density curve.
type CurvePoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"seriesLabel"`
}

// ---- Cached entities ----

// TeamInfo is the registry row for one team.
type TeamInfo struct {
	Number     int       `json:"number"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	Country    string    `json:"country"`
	RookieYear int       `json:"rookieYear"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// TeamCacheSummary is a lightweight record for the list command.
type TeamCacheSummary struct {
	Number    int
	Name      string
	Season    int
	Events    int
	Matches   int
	FetchedAt time.Time
}

// Prediction is one stored calculation result. Curves are derived values
// and are recomputed on demand, never stored.
type Prediction struct {
	ID     string `json:"id"`
	Season int    `json:"season"`

	Red1  int `json:"red1"`
	Red2  int `json:"red2"`
	Blue1 int `json:"blue1"`
	Blue2 int `json:"blue2"`

	RedMean    float64 `json:"redMean"`
	RedStdDev  float64 `json:"redStdDev"`
	BlueMean   float64 `json:"blueMean"`
	BlueStdDev float64 `json:"blueStdDev"`

	// Probability that red outscores blue.
	WinProbability float64 `json:"winProbability"`

	CreatedAt time.Time `json:"createdAt"`
}
