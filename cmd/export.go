package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/deepscout/matchup/internal/model"
	"github.com/deepscout/matchup/internal/storage"
)

var exportOut string

// snapshotVersion is bumped whenever the snapshot schema changes shape.
const snapshotVersion = 1

// snapshotFile is the portable dump of the local database: cached team
// profiles, raw match score rows, and the prediction history.
type snapshotFile struct {
	Version     int                `json:"version"`
	ExportedAt  time.Time          `json:"exportedAt"`
	Teams       []model.TeamInfo   `json:"teams"`
	Scores      []storage.ScoreRow `json:"scores"`
	Predictions []model.Prediction `json:"predictions"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the local cache and prediction history as a JSON snapshot",
	Long: `Dumps every cached team, match score row, and stored prediction into a
single JSON snapshot that 'matchup import' can load on another machine.
An --out path ending in .zst is zstd-compressed.

Examples:
  matchup export --out scout-backup.json
  matchup export --out scout-backup.json.zst`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	teams, err := rt.db.ListTeams()
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	scores, err := rt.db.ListScoreRows()
	if err != nil {
		return fmt.Errorf("list score rows: %w", err)
	}
	preds, err := rt.db.ListPredictions()
	if err != nil {
		return fmt.Errorf("list predictions: %w", err)
	}

	snap := snapshotFile{
		Version:     snapshotVersion,
		ExportedAt:  time.Now().UTC(),
		Teams:       teams,
		Scores:      scores,
		Predictions: preds,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if strings.HasSuffix(exportOut, ".zst") {
		if err := writeZstd(exportOut, append(data, '\n')); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
	} else if err := os.WriteFile(exportOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d teams, %d score rows, %d predictions)\n",
		exportOut, len(teams), len(scores), len(preds))
	return nil
}

func writeZstd(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
