package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tmarques/ivao-stats/db"
)

type fakeHistoryStore struct {
	history map[string][]db.ControllerSighting
	err     error
	since   time.Time
}

func (f *fakeHistoryStore) ControllerSightings(callsigns []string, since time.Time) (map[string][]db.ControllerSighting, error) {
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func newTracker(store HistoryStore, now time.Time) *Tracker {
	t := New(store)
	t.now = func() time.Time { return now }
	return t
}

func sightings(now time.Time, ids ...int64) []db.ControllerSighting {
	// Newest first, one minute apart.
	entries := make([]db.ControllerSighting, len(ids))
	for i, id := range ids {
		entries[i] = db.ControllerSighting{
			SnapshotID: id,
			Timestamp:  now.Add(-time.Duration(i) * time.Minute),
		}
	}
	return entries
}

func TestSessionEndsAtSnapshotIDGap(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := &fakeHistoryStore{history: map[string][]db.ControllerSighting{
		"SCEL_TWR": sightings(now, 106, 105, 103, 102, 101),
	}}

	sessions := newTracker(store, now).SessionMinutes([]string{"SCEL_TWR"})

	// The gap between 105 and 103 ends the walk: the session starts at the
	// sighting with id 105, one minute before the newest, so 1m + 1.
	assert.Equal(t, 2, sessions["SCEL_TWR"])
}

func TestCollectorOutageDoesNotBreakSession(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := &fakeHistoryStore{history: map[string][]db.ControllerSighting{
		"SCEL_TWR": {
			{SnapshotID: 103, Timestamp: now},
			// Ten hours of missing wall-clock time, but the ids are
			// consecutive: no snapshot was taken in between, so the
			// controller never left.
			{SnapshotID: 102, Timestamp: now.Add(-10 * time.Hour)},
			{SnapshotID: 101, Timestamp: now.Add(-10*time.Hour - time.Minute)},
		},
	}}

	sessions := newTracker(store, now).SessionMinutes([]string{"SCEL_TWR"})

	assert.Equal(t, 10*60+2, sessions["SCEL_TWR"])
}

func TestSingleSightingIsAtLeastOneMinute(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := &fakeHistoryStore{history: map[string][]db.ControllerSighting{
		"SCEL_APP": {{SnapshotID: 500, Timestamp: now}},
	}}

	sessions := newTracker(store, now).SessionMinutes([]string{"SCEL_APP"})

	assert.Equal(t, 1, sessions["SCEL_APP"])
}

func TestNoHistoryReportsZero(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := &fakeHistoryStore{history: map[string][]db.ControllerSighting{}}

	sessions := newTracker(store, now).SessionMinutes([]string{"SCFA_TWR"})

	assert.Equal(t, map[string]int{"SCFA_TWR": 0}, sessions)
}

func TestStoreErrorDegradesToZeros(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := &fakeHistoryStore{err: errors.New("connection refused")}

	sessions := newTracker(store, now).SessionMinutes([]string{"SCEL_TWR", "SCEL_GND"})

	assert.Equal(t, map[string]int{"SCEL_TWR": 0, "SCEL_GND": 0}, sessions)
}

func TestCallsignNormalizationAndLookback(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	store := &fakeHistoryStore{history: map[string][]db.ControllerSighting{
		"SCEL_TWR": {{SnapshotID: 7, Timestamp: now}},
	}}

	sessions := newTracker(store, now).SessionMinutes([]string{" scel_twr ", "", "SCEL_TWR"})

	assert.Equal(t, map[string]int{"SCEL_TWR": 1}, sessions)
	assert.Equal(t, now.Add(-Lookback), store.since)
}
