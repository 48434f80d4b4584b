package models

import "time"

// Snapshot is one point-in-time capture of the network activity we track.
// Snapshots are immutable once stored.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Pilots    []Pilot   `json:"pilots"`
	ATCs      []ATC     `json:"atcs"`
}
