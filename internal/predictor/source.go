package predictor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/deepscout/matchup/internal/ftcscout"
	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/storage"
)

// RecordSource loads one team's resolved season records, grouped by event
// in schedule order.
type RecordSource interface {
	TeamRecords(ctx context.Context, season, team int) ([]model.EventMatches, error)
}

// CachingSource serves records from the local cache and falls back to the
// API on a miss, writing what it fetched back to the cache. Refresh forces
// a refetch even when cached rows exist.
type CachingSource struct {
	API     *ftcscout.Client
	DB      *storage.DB
	Log     *slog.Logger
	Refresh bool

	// OnFetch, when set, observes every successful upstream fetch.
	OnFetch func(team int)
}

func (s *CachingSource) TeamRecords(ctx context.Context, season, team int) ([]model.EventMatches, error) {
	if !s.Refresh {
		cached, err := s.DB.HasTeamSeason(season, team)
		if err != nil {
			return nil, err
		}
		if cached {
			return s.DB.GetTeamSeason(season, team)
		}
	}
	events, err := FetchTeam(ctx, s.API, s.DB, s.Log, season, team)
	if err != nil {
		return nil, err
	}
	if s.OnFetch != nil {
		s.OnFetch(team)
	}
	return events, nil
}

// CacheOnlySource never touches the network. Teams absent from the cache
// simply have no records; the estimator reports that as insufficient data.
type CacheOnlySource struct {
	DB *storage.DB
}

func (s *CacheOnlySource) TeamRecords(ctx context.Context, season, team int) ([]model.EventMatches, error) {
	return s.DB.GetTeamSeason(season, team)
}

// FetchTeam pulls one team's registry entry and season match records from
// the API, caches both, and returns the resolved events. Match records the
// team has no usable alliance score in are skipped, never zero-filled.
func FetchTeam(ctx context.Context, api *ftcscout.Client, db *storage.DB, log *slog.Logger, season, team int) ([]model.EventMatches, error) {
	if log == nil {
		log = slog.Default()
	}

	info, err := api.GetTeam(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("fetch team %d: %w", team, err)
	}
	err = db.UpsertTeam(model.TeamInfo{
		Number:     info.Number,
		Name:       info.Name,
		City:       info.Location.City,
		State:      info.Location.State,
		Country:    info.Location.Country,
		RookieYear: info.RookieYear,
		FetchedAt:  time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	participations, err := api.GetTeamEvents(ctx, team, season)
	if err != nil {
		return nil, fmt.Errorf("fetch events for team %d: %w", team, err)
	}

	var events []model.EventMatches
	for _, part := range participations {
		// Events without stats are registrations the team never played at.
		if !part.HasStats() {
			continue
		}
		matches, err := api.GetEventMatches(ctx, season, part.EventCode)
		if err != nil {
			return nil, fmt.Errorf("fetch matches for %s: %w", part.EventCode, err)
		}
		// Match IDs increase with schedule position within an event.
		sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

		em := model.EventMatches{EventCode: part.EventCode}
		for _, m := range matches {
			score, ok := m.ScoreFor(team)
			if !ok {
				if m.HasBeenPlayed {
					log.Debug("skipping match without usable score",
						"team", team, "event", part.EventCode, "match", m.ID)
				}
				continue
			}
			em.Scores = append(em.Scores, model.MatchScore{
				AutoSpecimen: score.AutoSpecimenPoints,
				AutoSample:   score.AutoSamplePoints,
				DCSpecimen:   score.DCSpecimenPoints,
				DCSample:     score.DCSamplePoints,
			})
		}
		events = append(events, em)
	}

	if err := db.ReplaceTeamSeason(season, team, events); err != nil {
		return nil, err
	}
	log.Info("cached team records", "team", team, "season", season,
		"events", len(events))
	return events, nil
}
