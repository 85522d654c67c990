package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/chainsim/internal/sim"
)

func WriteSnapshot(w io.Writer, snap sim.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snap)
}

func SaveSnapshot(path string, snap sim.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := WriteSnapshot(file, snap); err != nil {
		file.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return file.Close()
}

func LoadSnapshot(path string) (sim.Snapshot, error) {
	var snap sim.Snapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode %s: %w", path, err)
	}
	return snap, nil
}
