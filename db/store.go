package db

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/tmarques/ivao-stats/models"
)

// SaveSnapshot writes a snapshot into all three partitions. Each partition is
// written in its own transaction and every partition is attempted even when
// an earlier one fails, so a single diverged partition does not lose data in
// the others. The returned error is non-nil if any partition failed.
func (s *Store) SaveSnapshot(snap *models.Snapshot) error {
	var failed []string
	for _, p := range Partitions {
		if err := s.saveTo(p, snap); err != nil {
			log.Printf("Error saving snapshot to %s partition: %v", p, err)
			partitionWriteFailures.WithLabelValues(string(p)).Inc()
			failed = append(failed, string(p))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("snapshot write failed for partitions: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (s *Store) saveTo(p Partition, snap *models.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var snapshotID int64
	err = tx.QueryRow(
		fmt.Sprintf(`INSERT INTO %s (timestamp) VALUES ($1) RETURNING id`, p.snapshotsTable()),
		snap.Timestamp,
	).Scan(&snapshotID)
	if err != nil {
		return err
	}

	for _, pilot := range snap.Pilots {
		_, err = tx.Exec(fmt.Sprintf(`
			INSERT INTO %s (
				snapshot_id, user_id, callsign, departure, arrival,
				aircraft, pob, route, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, p.pilotsTable()),
			snapshotID, nullable(pilot.UserID), pilot.Callsign,
			pilot.FlightPlan.Departure, pilot.FlightPlan.Arrival,
			pilot.FlightPlan.Aircraft, pilot.FlightPlan.PeopleOnBoard,
			pilot.FlightPlan.Route, snap.Timestamp)
		if err != nil {
			return err
		}
	}

	for _, atc := range snap.ATCs {
		_, err = tx.Exec(fmt.Sprintf(`
			INSERT INTO %s (
				snapshot_id, user_id, callsign, frequency, atis, created_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`, p.atcsTable()),
			snapshotID, nullable(atc.UserID), atc.Callsign,
			atc.Frequency, nullable(atc.Atis), snap.Timestamp)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// LastSnapshot returns the most recent snapshot in a partition, or nil when
// the partition is empty.
func (s *Store) LastSnapshot(p Partition) (*models.Snapshot, error) {
	var snapshotID int64
	var timestamp time.Time
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT id, timestamp FROM %s ORDER BY id DESC LIMIT 1`, p.snapshotsTable()),
	).Scan(&snapshotID, &timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting last snapshot: %v", err)
	}

	return s.loadSnapshot(p, snapshotID, timestamp)
}

// SnapshotRange returns the snapshots within [from, to] ordered by insertion
// id ascending. Zero bounds are unbounded.
func (s *Store) SnapshotRange(p Partition, from, to time.Time) ([]models.Snapshot, error) {
	query := fmt.Sprintf(`SELECT id, timestamp FROM %s WHERE 1=1`, p.snapshotsTable())
	var args []interface{}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND timestamp >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND timestamp <= $%d", len(args))
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshot range: %v", err)
	}
	defer rows.Close()

	type meta struct {
		id int64
		ts time.Time
	}
	var metas []meta
	for rows.Next() {
		var m meta
		if err := rows.Scan(&m.id, &m.ts); err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snapshots := make([]models.Snapshot, 0, len(metas))
	for _, m := range metas {
		snap, err := s.loadSnapshot(p, m.id, m.ts)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, nil
}

func (s *Store) loadSnapshot(p Partition, snapshotID int64, timestamp time.Time) (*models.Snapshot, error) {
	snap := &models.Snapshot{Timestamp: timestamp}

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT user_id, callsign, departure, arrival, aircraft, pob, route
		FROM %s WHERE snapshot_id = $1 ORDER BY id
	`, p.pilotsTable()), snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pilot models.Pilot
		var userID sql.NullString
		err := rows.Scan(&userID, &pilot.Callsign,
			&pilot.FlightPlan.Departure, &pilot.FlightPlan.Arrival,
			&pilot.FlightPlan.Aircraft, &pilot.FlightPlan.PeopleOnBoard,
			&pilot.FlightPlan.Route)
		if err != nil {
			return nil, err
		}
		pilot.UserID = userID.String
		snap.Pilots = append(snap.Pilots, pilot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	atcRows, err := s.db.Query(fmt.Sprintf(`
		SELECT user_id, callsign, frequency, atis
		FROM %s WHERE snapshot_id = $1 ORDER BY id
	`, p.atcsTable()), snapshotID)
	if err != nil {
		return nil, err
	}
	defer atcRows.Close()

	for atcRows.Next() {
		var atc models.ATC
		var userID, atis sql.NullString
		var frequency sql.NullFloat64
		if err := atcRows.Scan(&userID, &atc.Callsign, &frequency, &atis); err != nil {
			return nil, err
		}
		atc.UserID = userID.String
		atc.Frequency = frequency.Float64
		atc.Atis = atis.String
		snap.ATCs = append(snap.ATCs, atc)
	}
	if err := atcRows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}

// PruneDay deletes day-partition snapshots strictly older than the given
// time. Child pilot/ATC rows go with them via ON DELETE CASCADE.
func (s *Store) PruneDay(olderThan time.Time) (int64, error) {
	res, err := s.db.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE timestamp < $1`, PartitionDay.snapshotsTable()),
		olderThan,
	)
	if err != nil {
		return 0, fmt.Errorf("error pruning daily data: %v", err)
	}
	deleted, _ := res.RowsAffected()
	if deleted > 0 {
		log.Printf("Pruned %d old snapshots from daily tables", deleted)
	}
	return deleted, nil
}

// ResetWeek empties the week partition at the window boundary.
func (s *Store) ResetWeek() error {
	return s.reset(PartitionWeek)
}

// ResetMonth empties the month partition at the window boundary.
func (s *Store) ResetMonth() error {
	return s.reset(PartitionMonth)
}

func (s *Store) reset(p Partition) error {
	_, err := s.db.Exec(fmt.Sprintf(
		`TRUNCATE TABLE %s, %s, %s RESTART IDENTITY CASCADE`,
		p.pilotsTable(), p.atcsTable(), p.snapshotsTable(),
	))
	if err != nil {
		return fmt.Errorf("error resetting %s tables: %v", p, err)
	}
	log.Printf("Reset tables for partition: %s", p)
	return nil
}

// ControllerSighting is one appearance of a callsign in a stored snapshot.
// Snapshot ids are the continuity signal for session reconstruction: an id
// gap means the controller was absent from at least one intervening snapshot.
type ControllerSighting struct {
	SnapshotID int64
	Timestamp  time.Time
}

// ControllerSightings returns, per callsign, the day-partition snapshots the
// callsign appears in since the given time, newest first.
func (s *Store) ControllerSightings(callsigns []string, since time.Time) (map[string][]ControllerSighting, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT a.callsign, s.id, s.timestamp
		FROM %s a
		JOIN %s s ON a.snapshot_id = s.id
		WHERE a.callsign = ANY($1) AND s.timestamp >= $2
		ORDER BY a.callsign, s.id DESC
	`, PartitionDay.atcsTable(), PartitionDay.snapshotsTable()),
		pq.Array(callsigns), since)
	if err != nil {
		return nil, fmt.Errorf("error querying controller history: %v", err)
	}
	defer rows.Close()

	history := make(map[string][]ControllerSighting)
	for rows.Next() {
		var callsign string
		var sighting ControllerSighting
		if err := rows.Scan(&callsign, &sighting.SnapshotID, &sighting.Timestamp); err != nil {
			return nil, err
		}
		callsign = strings.ToUpper(callsign)
		history[callsign] = append(history[callsign], sighting)
	}
	return history, rows.Err()
}
