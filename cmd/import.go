package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a snapshot produced by 'matchup export'",
	Long: `Loads a snapshot file into the local database. Teams, score rows, and
predictions are upserted, so importing the same snapshot twice is safe.
Files ending in .zst are decompressed first.

Example:
  matchup import scout-backup.json.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	snap, err := readSnapshot(args[0])
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	for _, t := range snap.Teams {
		if err := rt.db.UpsertTeam(t); err != nil {
			return fmt.Errorf("import team %d: %w", t.Number, err)
		}
	}
	if err := rt.db.InsertScoreRows(snap.Scores); err != nil {
		return fmt.Errorf("import score rows: %w", err)
	}
	for _, p := range snap.Predictions {
		if err := rt.db.InsertPrediction(p); err != nil {
			return fmt.Errorf("import prediction %s: %w", p.ID, err)
		}
	}

	fmt.Printf("Imported %d teams, %d score rows, %d predictions\n",
		len(snap.Teams), len(snap.Scores), len(snap.Predictions))
	return nil
}

// readSnapshot loads and decodes a snapshot file, decompressing .zst paths.
func readSnapshot(path string) (snapshotFile, error) {
	var snap snapshotFile
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".zst") {
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return snap, fmt.Errorf("open zstd %s: %w", path, err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return snap, fmt.Errorf("decompress %s: %w", path, err)
		}
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse snapshot: %w", err)
	}
	if snap.Version > snapshotVersion {
		return snap, fmt.Errorf("snapshot version %d is newer than this build supports (%d)",
			snap.Version, snapshotVersion)
	}
	return snap, nil
}
