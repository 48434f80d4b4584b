// Package tracker reconstructs how long each active controller has been
// continuously on duty from the stored snapshot history.
package tracker

import (
	"log"
	"strings"
	"time"

	"github.com/tmarques/ivao-stats/db"
)

// Lookback bounds how far back a session start is searched for.
const Lookback = 24 * time.Hour

// HistoryStore provides the per-callsign snapshot history, newest first.
type HistoryStore interface {
	ControllerSightings(callsigns []string, since time.Time) (map[string][]db.ControllerSighting, error)
}

type Tracker struct {
	store HistoryStore
	now   func() time.Time
}

func New(store HistoryStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// SessionMinutes returns the continuous on-duty minutes for each requested
// callsign. A controller present only in the latest snapshot reports 1, one
// with no history reports 0. If the store is unreachable every callsign
// reports 0 so presentation can proceed with degraded data.
func (t *Tracker) SessionMinutes(callsigns []string) map[string]int {
	sessions := make(map[string]int, len(callsigns))

	targets := make([]string, 0, len(callsigns))
	for _, cs := range callsigns {
		cs = strings.ToUpper(strings.TrimSpace(cs))
		if cs == "" {
			continue
		}
		if _, seen := sessions[cs]; seen {
			continue
		}
		sessions[cs] = 0
		targets = append(targets, cs)
	}
	if len(targets) == 0 {
		return sessions
	}

	now := t.now().UTC()
	history, err := t.store.ControllerSightings(targets, now.Add(-Lookback))
	if err != nil {
		log.Printf("Error calculating session durations: %v", err)
		return sessions
	}

	for _, cs := range targets {
		entries := history[cs]
		if len(entries) == 0 {
			continue
		}
		start := sessionStart(entries)
		sessions[cs] = int(now.Sub(start).Minutes()) + 1
	}

	return sessions
}

// sessionStart walks the sightings backward from the newest entry and returns
// the timestamp of the earliest entry reachable over consecutive snapshot
// ids. An id gap greater than 1 means the controller was absent from at least
// one intervening snapshot, a true disconnection, and ends the walk. A large
// wall-clock gap with consecutive ids means the collector itself was down and
// does not break the session.
func sessionStart(entries []db.ControllerSighting) time.Time {
	start := entries[0].Timestamp
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].SnapshotID-entries[i+1].SnapshotID > 1 {
			break
		}
		start = entries[i+1].Timestamp
	}
	return start
}
