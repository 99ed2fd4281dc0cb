package memory

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveFile writes a snapshot to path as an ordered JSON array of turns.
func SaveFile(path string, turns []Turn) error {
	if turns == nil {
		turns = []Turn{}
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling memory snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing memory file: %w", err)
	}
	return nil
}

// LoadFile reads a snapshot previously written by SaveFile.
func LoadFile(path string) ([]Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading memory file: %w", err)
	}
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parsing memory file: %w", err)
	}
	return turns, nil
}
