package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/deepscout/matchup/internal/ftcscout"
	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/stats"
	"github.com/deepscout/matchup/internal/storage"
)

var specimenCfg = model.ScoringConfig{Auto: model.CategorySpecimen, Tele: model.CategorySpecimen}

// stubSource serves canned records per team.
type stubSource struct {
	records map[int][]model.EventMatches
	errs    map[int]error
}

func (s *stubSource) TeamRecords(_ context.Context, _ int, team int) ([]model.EventMatches, error) {
	if err := s.errs[team]; err != nil {
		return nil, err
	}
	return s.records[team], nil
}

// recordsOf wraps raw match totals into a single-event record set. With a
// specimen/specimen config and only AutoSpecimen populated, each total
// passes through the aggregator unchanged.
func recordsOf(scores ...float64) []model.EventMatches {
	ev := model.EventMatches{EventCode: "USAZTUQ"}
	for _, s := range scores {
		ev.Scores = append(ev.Scores, model.MatchScore{AutoSpecimen: s})
	}
	return []model.EventMatches{ev}
}

func sameConfigRequest(red1, red2, blue1, blue2 int) Request {
	return Request{
		Season: 2024,
		Red:    Alliance{Teams: [2]int{red1, red2}, Configs: [2]model.ScoringConfig{specimenCfg, specimenCfg}},
		Blue:   Alliance{Teams: [2]int{blue1, blue2}, Configs: [2]model.ScoringConfig{specimenCfg, specimenCfg}},
	}
}

func TestPredict_IdenticalAlliancesSplit(t *testing.T) {
	src := &stubSource{records: map[int][]model.EventMatches{
		101: recordsOf(40, 50, 60),
		102: recordsOf(20, 30),
		201: recordsOf(40, 50, 60),
		202: recordsOf(20, 30),
	}}

	res, err := Predict(context.Background(), src, sameConfigRequest(101, 102, 201, 202))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if math.Abs(res.WinProbability-0.5) > 1e-12 {
		t.Errorf("identical alliances: win probability = %v, want 0.5", res.WinProbability)
	}
	if len(res.RedCurve) != 51 || len(res.BlueCurve) != 51 {
		t.Fatalf("curve lengths = %d, %d, want 51 each", len(res.RedCurve), len(res.BlueCurve))
	}
	for i := range res.RedCurve {
		if res.RedCurve[i].X != res.BlueCurve[i].X || res.RedCurve[i].Y != res.BlueCurve[i].Y {
			t.Fatalf("point %d differs between identical alliances: red=%+v blue=%+v",
				i, res.RedCurve[i], res.BlueCurve[i])
		}
	}
	if res.RedCurve[0].Label != LabelRed || res.BlueCurve[0].Label != LabelBlue {
		t.Errorf("curve labels = %q, %q, want %q, %q",
			res.RedCurve[0].Label, res.BlueCurve[0].Label, LabelRed, LabelBlue)
	}
}

func TestPredict_StrongerAllianceFavored(t *testing.T) {
	src := &stubSource{records: map[int][]model.EventMatches{
		101: recordsOf(60, 70, 80),
		102: recordsOf(50, 60),
		201: recordsOf(20, 30, 40),
		202: recordsOf(10, 20),
	}}

	res, err := Predict(context.Background(), src, sameConfigRequest(101, 102, 201, 202))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if res.WinProbability <= 0.5 || res.WinProbability > 1 {
		t.Errorf("stronger red alliance: win probability = %v, want in (0.5, 1]", res.WinProbability)
	}
	if res.Red.Combined.Mean <= res.Blue.Combined.Mean {
		t.Errorf("combined means = red %v, blue %v, want red greater",
			res.Red.Combined.Mean, res.Blue.Combined.Mean)
	}
}

func TestPredict_Deterministic(t *testing.T) {
	src := &stubSource{records: map[int][]model.EventMatches{
		101: recordsOf(41, 52, 63),
		102: recordsOf(24, 35),
		201: recordsOf(46, 57),
		202: recordsOf(28, 39, 40),
	}}
	req := sameConfigRequest(101, 102, 201, 202)

	a, err := Predict(context.Background(), src, req)
	if err != nil {
		t.Fatalf("first Predict: %v", err)
	}
	b, err := Predict(context.Background(), src, req)
	if err != nil {
		t.Fatalf("second Predict: %v", err)
	}

	if a.WinProbability != b.WinProbability {
		t.Errorf("win probability differs across runs: %v vs %v", a.WinProbability, b.WinProbability)
	}
	if a.Red.Combined != b.Red.Combined || a.Blue.Combined != b.Blue.Combined {
		t.Errorf("combined distributions differ across runs")
	}
	if !reflect.DeepEqual(a.RedCurve, b.RedCurve) || !reflect.DeepEqual(a.BlueCurve, b.BlueCurve) {
		t.Errorf("curves differ across runs")
	}
	if a.ID == b.ID {
		t.Errorf("both runs produced ID %q, want distinct ids", a.ID)
	}
}

func TestPredict_InsufficientDataNamesTeam(t *testing.T) {
	src := &stubSource{records: map[int][]model.EventMatches{
		101: recordsOf(40, 50),
		102: recordsOf(30), // one scored match is not enough
		201: recordsOf(40, 50),
		202: recordsOf(20, 30),
	}}

	_, err := Predict(context.Background(), src, sameConfigRequest(101, 102, 201, 202))
	if !errors.Is(err, stats.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
	if !strings.Contains(err.Error(), "team 102") {
		t.Errorf("err = %q, want the failing team named", err)
	}
}

func TestPredict_SourceErrorNamesTeam(t *testing.T) {
	boom := errors.New("upstream unreachable")
	src := &stubSource{
		records: map[int][]model.EventMatches{
			101: recordsOf(40, 50),
			102: recordsOf(20, 30),
			202: recordsOf(20, 30),
		},
		errs: map[int]error{201: boom},
	}

	_, err := Predict(context.Background(), src, sameConfigRequest(101, 102, 201, 202))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped source error", err)
	}
	if !strings.Contains(err.Error(), "team 201") {
		t.Errorf("err = %q, want the failing team named", err)
	}
}

func TestResult_Record(t *testing.T) {
	created := time.Date(2025, 2, 1, 17, 30, 0, 0, time.UTC)
	res := Result{
		ID:     "4f7c2a9e-9a1b-4f6e-8a6e-0c2b7f3d1e55",
		Season: 2024,
		Red: AllianceResult{
			Teams:    [2]TeamResult{{101, model.Distribution{}}, {102, model.Distribution{}}},
			Combined: model.AllianceDistribution{Mean: 80, Variance: 125},
		},
		Blue: AllianceResult{
			Teams:    [2]TeamResult{{201, model.Distribution{}}, {202, model.Distribution{}}},
			Combined: model.AllianceDistribution{Mean: 60, Variance: 100},
		},
		WinProbability: 0.9066,
		CreatedAt:      created,
	}

	rec := res.Record()
	if rec.ID != res.ID || rec.Season != 2024 {
		t.Errorf("id/season = %q/%d, want %q/2024", rec.ID, rec.Season, res.ID)
	}
	if rec.Red1 != 101 || rec.Red2 != 102 || rec.Blue1 != 201 || rec.Blue2 != 202 {
		t.Errorf("teams = %d/%d vs %d/%d, want 101/102 vs 201/202",
			rec.Red1, rec.Red2, rec.Blue1, rec.Blue2)
	}
	if rec.RedMean != 80 || rec.BlueMean != 60 {
		t.Errorf("means = %v/%v, want 80/60", rec.RedMean, rec.BlueMean)
	}
	if math.Abs(rec.RedStdDev-math.Sqrt(125)) > 1e-12 || math.Abs(rec.BlueStdDev-10) > 1e-12 {
		t.Errorf("stddevs = %v/%v, want sqrt(125)/10", rec.RedStdDev, rec.BlueStdDev)
	}
	if rec.WinProbability != 0.9066 || !rec.CreatedAt.Equal(created) {
		t.Errorf("probability/created = %v/%v, want 0.9066/%v",
			rec.WinProbability, rec.CreatedAt, created)
	}
}

// newFixtureAPI serves a minimal season for team 101: one played event with
// two quals (ids out of order to exercise schedule sorting) and one
// registration without stats that must never be fetched.
func newFixtureAPI(t *testing.T) *ftcscout.Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/teams/101", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number":101,"name":"Fixture Robotics","rookieYear":2019,
			"location":{"city":"Mesa","state":"AZ","country":"USA"}}`)
	})
	mux.HandleFunc("/teams/101/events/2024", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"season":2024,"eventCode":"USAZTUQ","teamNumber":101,"stats":{"rank":3}},
			{"season":2024,"eventCode":"USAZNOP","teamNumber":101,"stats":null}
		]`)
	})
	mux.HandleFunc("/events/2024/USAZTUQ/matches", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id":2,"hasBeenPlayed":true,"tournamentLevel":"Quals","series":0,"matchNum":2,
			 "scores":{"red":{"totalPoints":34,"autoSpecimenPoints":12,"autoSamplePoints":0,"dcSpecimenPoints":22,"dcSamplePoints":0}},
			 "teams":[{"alliance":"Red","station":"One","teamNumber":101,"onField":true}]},
			{"id":1,"hasBeenPlayed":true,"tournamentLevel":"Quals","series":0,"matchNum":1,
			 "scores":{"red":{"totalPoints":30,"autoSpecimenPoints":10,"autoSamplePoints":0,"dcSpecimenPoints":20,"dcSamplePoints":0}},
			 "teams":[{"alliance":"Red","station":"Two","teamNumber":101,"onField":true}]}
		]`)
	})
	mux.HandleFunc("/events/2024/USAZNOP/matches", func(w http.ResponseWriter, r *http.Request) {
		t.Error("fetched matches for an event without stats")
		fmt.Fprint(w, `[]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return ftcscout.NewClient(srv.URL, 5*time.Second)
}

func fixtureEvents() []model.EventMatches {
	return []model.EventMatches{{
		EventCode: "USAZTUQ",
		Scores: []model.MatchScore{
			{AutoSpecimen: 10, DCSpecimen: 20},
			{AutoSpecimen: 12, DCSpecimen: 22},
		},
	}}
}

func TestCachingSource_FetchesOnMiss(t *testing.T) {
	db := openMemDB(t)
	src := &CachingSource{API: newFixtureAPI(t), DB: db}

	got, err := src.TeamRecords(context.Background(), 2024, 101)
	if err != nil {
		t.Fatalf("TeamRecords: %v", err)
	}
	if want := fixtureEvents(); !reflect.DeepEqual(got, want) {
		t.Errorf("records = %+v, want %+v", got, want)
	}

	cached, err := db.HasTeamSeason(2024, 101)
	if err != nil {
		t.Fatalf("HasTeamSeason: %v", err)
	}
	if !cached {
		t.Error("fetched season was not written to the cache")
	}
	info, err := db.GetTeam(101)
	if err != nil {
		t.Fatalf("GetTeam: %v", err)
	}
	if info == nil || info.Name != "Fixture Robotics" {
		t.Errorf("cached team = %+v, want name Fixture Robotics", info)
	}
}

func TestCachingSource_ReadsCacheFirst(t *testing.T) {
	db := openMemDB(t)
	preloaded := []model.EventMatches{{
		EventCode: "USAZOLD",
		Scores:    []model.MatchScore{{AutoSpecimen: 99}, {AutoSpecimen: 98}},
	}}
	if err := db.ReplaceTeamSeason(2024, 101, preloaded); err != nil {
		t.Fatalf("ReplaceTeamSeason: %v", err)
	}

	// A nil API guarantees any network path would panic.
	src := &CachingSource{API: nil, DB: db}
	got, err := src.TeamRecords(context.Background(), 2024, 101)
	if err != nil {
		t.Fatalf("TeamRecords: %v", err)
	}
	if !reflect.DeepEqual(got, preloaded) {
		t.Errorf("records = %+v, want cached %+v", got, preloaded)
	}
}

func TestCachingSource_RefreshRefetches(t *testing.T) {
	db := openMemDB(t)
	stale := []model.EventMatches{{
		EventCode: "USAZOLD",
		Scores:    []model.MatchScore{{AutoSpecimen: 99}, {AutoSpecimen: 98}},
	}}
	if err := db.ReplaceTeamSeason(2024, 101, stale); err != nil {
		t.Fatalf("ReplaceTeamSeason: %v", err)
	}

	src := &CachingSource{API: newFixtureAPI(t), DB: db, Refresh: true}
	got, err := src.TeamRecords(context.Background(), 2024, 101)
	if err != nil {
		t.Fatalf("TeamRecords: %v", err)
	}
	if want := fixtureEvents(); !reflect.DeepEqual(got, want) {
		t.Errorf("records after refresh = %+v, want %+v", got, want)
	}

	// The stale rows must be gone, not merged.
	stored, err := db.GetTeamSeason(2024, 101)
	if err != nil {
		t.Fatalf("GetTeamSeason: %v", err)
	}
	if !reflect.DeepEqual(stored, fixtureEvents()) {
		t.Errorf("cache after refresh = %+v, want %+v", stored, fixtureEvents())
	}
}

func openMemDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open mem db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
