package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/deepscout/matchup/internal/model"
)

// UpsertTeam inserts or refreshes a team registry row. Uses INSERT OR
// REPLACE for idempotency.
func (db *DB) UpsertTeam(info model.TeamInfo) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO teams(number, name, city, state, country, rookie_year, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.Number, info.Name, info.City, info.State, info.Country,
		info.RookieYear, info.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetTeam returns the cached team row, or nil when the team is unknown.
func (db *DB) GetTeam(number int) (*model.TeamInfo, error) {
	var info model.TeamInfo
	var fetched string
	err := db.conn.QueryRow(`
		SELECT number, name, city, state, country, rookie_year, fetched_at
		FROM teams WHERE number = ?`, number).
		Scan(&info.Number, &info.Name, &info.City, &info.State, &info.Country,
			&info.RookieYear, &fetched)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	info.FetchedAt, err = time.Parse(time.RFC3339Nano, fetched)
	if err != nil {
		return nil, fmt.Errorf("team %d: bad fetched_at %q: %w", number, fetched, err)
	}
	return &info, nil
}

// ReplaceTeamSeason swaps a team's season records in one transaction: the
// old rows are deleted and the new ones inserted with a fresh seq, so a
// refetch never leaves stale matches behind.
func (db *DB) ReplaceTeamSeason(season, team int, events []model.EventMatches) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM match_scores WHERE season = ? AND team_number = ?`, season, team); err != nil {
		return fmt.Errorf("clear season %d for team %d: %w", season, team, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO match_scores(
			season, team_number, event_code, seq,
			auto_specimen, auto_sample, dc_specimen, dc_sample
		) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seq := 0
	for _, ev := range events {
		for _, s := range ev.Scores {
			_, err = stmt.Exec(season, team, ev.EventCode, seq,
				s.AutoSpecimen, s.AutoSample, s.DCSpecimen, s.DCSample)
			if err != nil {
				return fmt.Errorf("insert match_scores for team %d seq %d: %w", team, seq, err)
			}
			seq++
		}
	}
	return tx.Commit()
}

// GetTeamSeason loads a team's season records grouped back into events, in
// stored order. Rows of one event are contiguous by construction, so a
// change of event_code starts a new group.
func (db *DB) GetTeamSeason(season, team int) ([]model.EventMatches, error) {
	rows, err := db.conn.Query(`
		SELECT event_code, auto_specimen, auto_sample, dc_specimen, dc_sample
		FROM match_scores
		WHERE season = ? AND team_number = ?
		ORDER BY seq`, season, team)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EventMatches
	for rows.Next() {
		var code string
		var s model.MatchScore
		if err := rows.Scan(&code, &s.AutoSpecimen, &s.AutoSample, &s.DCSpecimen, &s.DCSample); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].EventCode != code {
			out = append(out, model.EventMatches{EventCode: code})
		}
		last := &out[len(out)-1]
		last.Scores = append(last.Scores, s)
	}
	return out, rows.Err()
}

// HasTeamSeason reports whether any records are cached for the team in the
// given season.
func (db *DB) HasTeamSeason(season, team int) (bool, error) {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(1) FROM match_scores WHERE season = ? AND team_number = ?`,
		season, team).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertPrediction stores one calculation result.
func (db *DB) InsertPrediction(p model.Prediction) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO predictions(
			id, season, red1, red2, blue1, blue2,
			red_mean, red_stddev, blue_mean, blue_stddev,
			win_probability, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Season, p.Red1, p.Red2, p.Blue1, p.Blue2,
		p.RedMean, p.RedStdDev, p.BlueMean, p.BlueStdDev,
		p.WinProbability, p.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// GetPrediction returns one stored prediction, or nil when the id is unknown.
func (db *DB) GetPrediction(id string) (*model.Prediction, error) {
	var p model.Prediction
	var created string
	err := db.conn.QueryRow(`
		SELECT id, season, red1, red2, blue1, blue2,
		       red_mean, red_stddev, blue_mean, blue_stddev,
		       win_probability, created_at
		FROM predictions WHERE id = ?`, id).
		Scan(&p.ID, &p.Season, &p.Red1, &p.Red2, &p.Blue1, &p.Blue2,
			&p.RedMean, &p.RedStdDev, &p.BlueMean, &p.BlueStdDev,
			&p.WinProbability, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("prediction %s: bad created_at %q: %w", id, created, err)
	}
	return &p, nil
}

// ListTeamSummaries returns one line per cached (team, season) with event
// and match counts, ordered by team number. Teams fetched but without any
// records still show up, with zero counts.
func (db *DB) ListTeamSummaries() ([]model.TeamCacheSummary, error) {
	rows, err := db.conn.Query(`
		SELECT t.number, t.name,
		       COALESCE(m.season, 0),
		       COUNT(DISTINCT m.event_code),
		       COUNT(m.seq),
		       t.fetched_at
		FROM teams t
		LEFT JOIN match_scores m ON m.team_number = t.number
		GROUP BY t.number, m.season
		ORDER BY t.number, m.season`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamCacheSummary
	for rows.Next() {
		var s model.TeamCacheSummary
		var fetched string
		if err := rows.Scan(&s.Number, &s.Name, &s.Season, &s.Events, &s.Matches, &fetched); err != nil {
			return nil, err
		}
		s.FetchedAt, err = time.Parse(time.RFC3339Nano, fetched)
		if err != nil {
			return nil, fmt.Errorf("team %d: bad fetched_at %q: %w", s.Number, fetched, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
