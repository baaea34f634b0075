package storage

import (
	"fmt"
	"time"

	"github.com/deepscout/matchup/internal/model"
)

// ScoreRow is one flattened match_scores row, used by the export and import
// commands to snapshot the cache.
type ScoreRow struct {
	Season       int     `json:"season"`
	TeamNumber   int     `json:"teamNumber"`
	EventCode    string  `json:"eventCode"`
	Seq          int     `json:"seq"`
	AutoSpecimen float64 `json:"autoSpecimen"`
	AutoSample   float64 `json:"autoSample"`
	DCSpecimen   float64 `json:"dcSpecimen"`
	DCSample     float64 `json:"dcSample"`
}

// ListTeams returns every cached team row ordered by number.
func (db *DB) ListTeams() ([]model.TeamInfo, error) {
	rows, err := db.conn.Query(`
		SELECT number, name, city, state, country, rookie_year, fetched_at
		FROM teams ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamInfo
	for rows.Next() {
		var info model.TeamInfo
		var fetched string
		if err := rows.Scan(&info.Number, &info.Name, &info.City, &info.State,
			&info.Country, &info.RookieYear, &fetched); err != nil {
			return nil, err
		}
		info.FetchedAt, err = time.Parse(time.RFC3339Nano, fetched)
		if err != nil {
			return nil, fmt.Errorf("team %d: bad fetched_at %q: %w", info.Number, fetched, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// ListScoreRows dumps every match_scores row in stable order.
func (db *DB) ListScoreRows() ([]ScoreRow, error) {
	rows, err := db.conn.Query(`
		SELECT season, team_number, event_code, seq,
		       auto_specimen, auto_sample, dc_specimen, dc_sample
		FROM match_scores
		ORDER BY team_number, season, seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var r ScoreRow
		if err := rows.Scan(&r.Season, &r.TeamNumber, &r.EventCode, &r.Seq,
			&r.AutoSpecimen, &r.AutoSample, &r.DCSpecimen, &r.DCSample); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertScoreRows bulk-loads snapshot rows in a transaction. Uses INSERT OR
// REPLACE so re-importing the same snapshot is idempotent.
func (db *DB) InsertScoreRows(rows []ScoreRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO match_scores(
			season, team_number, event_code, seq,
			auto_specimen, auto_sample, dc_specimen, dc_sample
		) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err = stmt.Exec(r.Season, r.TeamNumber, r.EventCode, r.Seq,
			r.AutoSpecimen, r.AutoSample, r.DCSpecimen, r.DCSample)
		if err != nil {
			return fmt.Errorf("insert match_scores for team %d seq %d: %w", r.TeamNumber, r.Seq, err)
		}
	}
	return tx.Commit()
}

// ListPredictions returns the stored prediction history, newest first.
func (db *DB) ListPredictions() ([]model.Prediction, error) {
	rows, err := db.conn.Query(`
		SELECT id, season, red1, red2, blue1, blue2,
		       red_mean, red_stddev, blue_mean, blue_stddev,
		       win_probability, created_at
		FROM predictions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Prediction
	for rows.Next() {
		var p model.Prediction
		var created string
		if err := rows.Scan(&p.ID, &p.Season, &p.Red1, &p.Red2, &p.Blue1, &p.Blue2,
			&p.RedMean, &p.RedStdDev, &p.BlueMean, &p.BlueStdDev,
			&p.WinProbability, &created); err != nil {
			return nil, err
		}
		p.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("prediction %s: bad created_at %q: %w", p.ID, created, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
