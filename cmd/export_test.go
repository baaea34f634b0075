package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/storage"
)

func fixtureSnapshot() snapshotFile {
	return snapshotFile{
		Version:    snapshotVersion,
		ExportedAt: time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC),
		Teams: []model.TeamInfo{{
			Number:     14584,
			Name:       "RoboKnights",
			City:       "Mesa",
			State:      "AZ",
			Country:    "USA",
			RookieYear: 2018,
			FetchedAt:  time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC),
		}},
		Scores: []storage.ScoreRow{{
			Season:       2024,
			TeamNumber:   14584,
			EventCode:    "USAZTUQ",
			Seq:          0,
			AutoSpecimen: 10,
			AutoSample:   4,
			DCSpecimen:   22,
			DCSample:     8,
		}},
		Predictions: []model.Prediction{{
			ID:             "f2b9f3a0-1111-2222-3333-444455556666",
			Season:         2024,
			Red1:           14584,
			Red2:           7172,
			Blue1:          11115,
			Blue2:          16093,
			RedMean:        112.5,
			RedStdDev:      14.2,
			BlueMean:       98.0,
			BlueStdDev:     11.9,
			WinProbability: 0.78,
			CreatedAt:      time.Date(2025, 2, 14, 9, 15, 0, 0, time.UTC),
		}},
	}
}

func TestSnapshotRoundTrip_PlainJSON(t *testing.T) {
	snap := fixtureSnapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snap.json")
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	got, err := readSnapshot(path)
	if err != nil {
		t.Fatalf("readSnapshot returned error: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("round-tripped snapshot differs:\ngot  %+v\nwant %+v", got, snap)
	}
}

func TestSnapshotRoundTrip_Zstd(t *testing.T) {
	snap := fixtureSnapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snap.json.zst")
	if err := writeZstd(path, append(data, '\n')); err != nil {
		t.Fatalf("writeZstd: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read compressed file: %v", err)
	}
	if len(raw) == 0 || strings.HasPrefix(string(raw), "{") {
		t.Error("file does not look compressed")
	}

	got, err := readSnapshot(path)
	if err != nil {
		t.Fatalf("readSnapshot returned error: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Errorf("round-tripped snapshot differs:\ngot  %+v\nwant %+v", got, snap)
	}
}

func TestReadSnapshot_RejectsNewerVersion(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Version = snapshotVersion + 1
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snap.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	if _, err := readSnapshot(path); err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("readSnapshot error = %v, want a version mismatch", err)
	}
}
