package db

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

// Store wraps the Postgres connection and owns the three partition table
// groups (snapshots_*, pilots_*, atcs_*).
type Store struct {
	db *sql.DB
}

// Open connects to the database using the DB_* environment variables and
// creates the partition tables if they do not exist yet.
func Open() (*Store, error) {
	db, err := sql.Open("postgres", connString())
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	s := &Store{db: db}
	if err = s.createTables(); err != nil {
		return nil, fmt.Errorf("error creating tables: %v", err)
	}

	return s, nil
}

// connString builds the DSN from the DB_* environment variables. The session
// time zone is pinned to UTC: EXTRACT and date_trunc in the aggregation
// queries evaluate in the session time zone, and the midnight exclusion and
// daily chart buckets must land on UTC boundaries whatever the server's
// TimeZone setting is.
func connString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable timezone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
	)
}

func (s *Store) createTables() error {
	var queries []string

	// One identical table group per partition. Snapshot ids are SERIAL and
	// partition-local: the session tracker depends on them being
	// monotonically increasing in insertion order.
	for _, p := range Partitions {
		queries = append(queries,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id SERIAL PRIMARY KEY,
				timestamp TIMESTAMP WITH TIME ZONE NOT NULL
			)`, p.snapshotsTable()),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id SERIAL PRIMARY KEY,
				snapshot_id INTEGER NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				user_id VARCHAR(20),
				callsign VARCHAR(255) NOT NULL,
				departure VARCHAR(8) NOT NULL,
				arrival VARCHAR(8) NOT NULL,
				aircraft VARCHAR(8) NOT NULL,
				pob INTEGER NOT NULL,
				route TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`, p.pilotsTable(), p.snapshotsTable()),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id SERIAL PRIMARY KEY,
				snapshot_id INTEGER NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				user_id VARCHAR(20),
				callsign VARCHAR(255) NOT NULL,
				frequency DOUBLE PRECISION,
				atis TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			)`, p.atcsTable(), p.snapshotsTable()),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s (timestamp)`,
				p.snapshotsTable(), p.snapshotsTable()),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_snapshot ON %s (snapshot_id)`,
				p.pilotsTable(), p.pilotsTable()),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_snapshot ON %s (snapshot_id)`,
				p.atcsTable(), p.atcsTable()),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_callsign ON %s (callsign)`,
				p.atcsTable(), p.atcsTable()),
		)
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
