package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/chainsim/internal/export"
	"github.com/san-kum/chainsim/internal/sim"
)

// Store keeps finished runs under baseDir, one directory per run holding
// metadata.json and the final snapshot.json.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      uint64             `json:"seed"`
	Method    string             `json:"method"`
	Dt        float64            `json:"dt"`
	Ticks     int                `json:"ticks"`
	Bobs      int                `json:"bobs"`
	Outcome   string             `json:"outcome"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and snap as a new run and returns its ID. ID, Timestamp,
// Method and Bobs are filled in from the snapshot.
func (s *Store) Save(meta RunMetadata, snap sim.Snapshot) (string, error) {
	ts := s.now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scenario, ts.UnixNano())
	meta.Timestamp = ts
	meta.Method = snap.Method.String()
	meta.Bobs = len(snap.Bobs)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := export.SaveSnapshot(filepath.Join(runDir, "snapshot.json"), snap); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	metaFile, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		metaFile.Close()
		return err
	}
	return metaFile.Close()
}

// List returns saved runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSnapshot(runID string) (sim.Snapshot, error) {
	return export.LoadSnapshot(filepath.Join(s.baseDir, runID, "snapshot.json"))
}
