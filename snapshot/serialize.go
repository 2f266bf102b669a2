package snapshot

import (
	"encoding/json"
	"fmt"
)

// MarshalSnapshots serialises a selection to JSON.
func MarshalSnapshots(snaps []ElementSnapshot) ([]byte, error) {
	return json.Marshal(snaps)
}

// UnmarshalSnapshots deserialises a selection from JSON. A single object is
// accepted as a one-element selection.
func UnmarshalSnapshots(data []byte) ([]ElementSnapshot, error) {
	var many []ElementSnapshot
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one ElementSnapshot
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return []ElementSnapshot{one}, nil
}
