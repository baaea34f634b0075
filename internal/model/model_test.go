package model

import (
	"math"
	"testing"
)

func TestParseScoreCategory_KnownNames(t *testing.T) {
	cases := []struct {
		in   string
		want ScoreCategory
	}{
		{"specimen", CategorySpecimen},
		{"spec", CategorySpecimen},
		{"sample", CategorySample},
		{"samp", CategorySample},
		{" Specimen ", CategorySpecimen},
		{"SAMPLE", CategorySample},
	}
	for _, c := range cases {
		got, err := ParseScoreCategory(c.in)
		if err != nil {
			t.Errorf("ParseScoreCategory(%q) returned error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseScoreCategory(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseScoreCategory_RejectsUnknown(t *testing.T) {
	for _, bad := range []string{"", "banana", "specimens", "auto"} {
		if _, err := ParseScoreCategory(bad); err == nil {
			t.Errorf("ParseScoreCategory(%q) = nil error, want rejection", bad)
		}
	}
}

func TestScoreCategory_String(t *testing.T) {
	if got := CategorySpecimen.String(); got != "specimen" {
		t.Errorf("CategorySpecimen.String() = %q", got)
	}
	if got := CategorySample.String(); got != "sample" {
		t.Errorf("CategorySample.String() = %q", got)
	}
}

func TestMatchScore_TotalSelectsComponents(t *testing.T) {
	s := MatchScore{AutoSpecimen: 1, AutoSample: 2, DCSpecimen: 4, DCSample: 8}

	cases := []struct {
		name string
		cfg  ScoringConfig
		want float64
	}{
		{"specimen/specimen", ScoringConfig{Auto: CategorySpecimen, Tele: CategorySpecimen}, 5},
		{"sample/sample", ScoringConfig{Auto: CategorySample, Tele: CategorySample}, 10},
		{"specimen/sample", ScoringConfig{Auto: CategorySpecimen, Tele: CategorySample}, 9},
		{"sample/specimen with bonus", ScoringConfig{Auto: CategorySample, Tele: CategorySpecimen, EndgameBonus: 2.5}, 8.5},
	}
	for _, c := range cases {
		if got := s.Total(c.cfg); got != c.want {
			t.Errorf("%s: Total = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestAllianceDistribution_StdDev(t *testing.T) {
	a := AllianceDistribution{Mean: 50, Variance: 25}
	if got := a.StdDev(); got != 5 {
		t.Errorf("StdDev = %v, want 5", got)
	}
	zero := AllianceDistribution{}
	if got := zero.StdDev(); got != 0 || math.Signbit(got) {
		t.Errorf("zero-variance StdDev = %v, want +0", got)
	}
}
