package store

import (
	"encoding/json"
	"time"
)

// SnapshotThreshold defines the number of actions after which a snapshot is created
const SnapshotThreshold = 10

// Snapshot represents a point-in-time state of the root store
type Snapshot struct {
	Version   int             `json:"version"` // Action version at snapshot time
	State     json.RawMessage `json:"state"`   // Serialized root state
	CreatedAt time.Time       `json:"created_at"`
}

// Due reports whether a snapshot should be taken at version
func Due(version int) bool {
	return version > 0 && version%SnapshotThreshold == 0
}
