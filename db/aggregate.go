package db

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/tmarques/ivao-stats/classifier"
	"github.com/tmarques/ivao-stats/models"
)

// WindowAggregate is the raw aggregation result for one partition window.
type WindowAggregate struct {
	Samples           int
	TotalFlights      int
	DomesticFlights   int
	IntlDepartures    int
	IntlArrivals      int
	UniquePilots      int
	PeopleOnBoard     int
	FlightTimeMinutes int
	ATCTimeMinutes    int
	ATCCount          int
}

// flightKey identifies one logical flight across snapshots: the same
// (subject, departure, arrival, route) tuple in consecutive snapshots is one
// flight, not a new one.
const flightKey = `(COALESCE(p.user_id, p.callsign) || '|' || p.departure || '|' || p.arrival || '|' || p.route)`

const (
	depInCountry = `p.departure LIKE ANY($2)`
	arrInCountry = `p.arrival LIKE ANY($2)`
)

// AggregateStatistics computes the windowed aggregate for one partition from
// the given start time, entirely in SQL. Classification uses the prefix set
// passed in, so prefix reloads apply to the next query.
func (s *Store) AggregateStatistics(p Partition, since time.Time, prefixes classifier.Prefixes) (*WindowAggregate, error) {
	patterns := pq.Array(prefixes.LikePatterns())
	agg := &WindowAggregate{}

	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE timestamp >= $1`, p.snapshotsTable()),
		since,
	).Scan(&agg.Samples)
	if err != nil {
		return nil, fmt.Errorf("error counting snapshots: %v", err)
	}

	// Distinct flight tuples involving the country, sub-categorized by the
	// prefix predicates.
	err = s.db.QueryRow(fmt.Sprintf(`
		SELECT
			COUNT(DISTINCT %[1]s) AS total_flights,
			COUNT(DISTINCT CASE WHEN %[2]s AND %[3]s THEN %[1]s END) AS domestic_flights,
			COUNT(DISTINCT CASE WHEN %[2]s AND NOT %[3]s THEN %[1]s END) AS intl_departures,
			COUNT(DISTINCT CASE WHEN NOT %[2]s AND %[3]s THEN %[1]s END) AS intl_arrivals,
			COUNT(DISTINCT COALESCE(p.user_id, p.callsign)) AS unique_pilots
		FROM %[4]s s
		JOIN %[5]s p ON s.id = p.snapshot_id
		WHERE s.timestamp >= $1
		AND (%[2]s OR %[3]s)
	`, flightKey, depInCountry, arrInCountry, p.snapshotsTable(), p.pilotsTable()),
		since, patterns,
	).Scan(&agg.TotalFlights, &agg.DomesticFlights, &agg.IntlDepartures,
		&agg.IntlArrivals, &agg.UniquePilots)
	if err != nil {
		return nil, fmt.Errorf("error aggregating flights: %v", err)
	}

	// People on board: the seat count fluctuates between samples of the same
	// flight, so sum the per-tuple maximum rather than every observation.
	err = s.db.QueryRow(fmt.Sprintf(`
		SELECT COALESCE(SUM(max_pob), 0)
		FROM (
			SELECT MAX(p.pob) AS max_pob
			FROM %s s
			JOIN %s p ON s.id = p.snapshot_id
			WHERE s.timestamp >= $1
			AND (%s OR %s)
			GROUP BY COALESCE(p.user_id, p.callsign), p.departure, p.arrival, p.route
		) sub
	`, p.snapshotsTable(), p.pilotsTable(), depInCountry, arrInCountry),
		since, patterns,
	).Scan(&agg.PeopleOnBoard)
	if err != nil {
		return nil, fmt.Errorf("error aggregating people on board: %v", err)
	}

	// Flight time: distinct (subject, minute) pairs. The 00:00 sample is
	// skipped so a day's flight time starts counting at 00:01; control time
	// below keeps it.
	err = s.db.QueryRow(fmt.Sprintf(`
		SELECT COUNT(*)
		FROM (
			SELECT DISTINCT COALESCE(p.user_id, p.callsign), date_trunc('minute', s.timestamp)
			FROM %s s
			JOIN %s p ON s.id = p.snapshot_id
			WHERE s.timestamp >= $1
			AND (%s OR %s)
			AND NOT (EXTRACT(HOUR FROM s.timestamp) = 0 AND EXTRACT(MINUTE FROM s.timestamp) = 0)
		) sub
	`, p.snapshotsTable(), p.pilotsTable(), depInCountry, arrInCountry),
		since, patterns,
	).Scan(&agg.FlightTimeMinutes)
	if err != nil {
		return nil, fmt.Errorf("error aggregating flight time: %v", err)
	}

	err = s.db.QueryRow(fmt.Sprintf(`
		SELECT
			COUNT(DISTINCT a.callsign) AS unique_atcs,
			COUNT(DISTINCT (COALESCE(a.user_id, a.callsign) || '|' || to_char(date_trunc('minute', s.timestamp), 'YYYY-MM-DD HH24:MI'))) AS total_minutes
		FROM %s s
		JOIN %s a ON s.id = a.snapshot_id
		WHERE s.timestamp >= $1
		AND a.callsign LIKE ANY($2)
	`, p.snapshotsTable(), p.atcsTable()),
		since, patterns,
	).Scan(&agg.ATCCount, &agg.ATCTimeMinutes)
	if err != nil {
		return nil, fmt.Errorf("error aggregating ATC time: %v", err)
	}

	return agg, nil
}

// TopPilots ranks subjects by accumulated flight minutes within the window,
// descending, ties broken by subject ascending.
func (s *Store) TopPilots(p Partition, since time.Time, prefixes classifier.Prefixes, limit int) ([]models.RankedSubject, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(p.user_id, p.callsign) AS subject,
		       COUNT(DISTINCT date_trunc('minute', s.timestamp)) AS minutes
		FROM %s s
		JOIN %s p ON s.id = p.snapshot_id
		WHERE s.timestamp >= $1
		AND (%s OR %s)
		GROUP BY subject
		ORDER BY minutes DESC, subject ASC
		LIMIT $3
	`, p.snapshotsTable(), p.pilotsTable(), depInCountry, arrInCountry)

	return s.rankedSubjects(query, since, prefixes, limit)
}

// TopATCs ranks in-country controllers by accumulated control minutes.
func (s *Store) TopATCs(p Partition, since time.Time, prefixes classifier.Prefixes, limit int) ([]models.RankedSubject, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(a.user_id, a.callsign) AS subject,
		       COUNT(DISTINCT date_trunc('minute', s.timestamp)) AS minutes
		FROM %s s
		JOIN %s a ON s.id = a.snapshot_id
		WHERE s.timestamp >= $1
		AND a.callsign LIKE ANY($2)
		GROUP BY subject
		ORDER BY minutes DESC, subject ASC
		LIMIT $3
	`, p.snapshotsTable(), p.atcsTable())

	return s.rankedSubjects(query, since, prefixes, limit)
}

func (s *Store) rankedSubjects(query string, since time.Time, prefixes classifier.Prefixes, limit int) ([]models.RankedSubject, error) {
	rows, err := s.db.Query(query, since, pq.Array(prefixes.LikePatterns()), limit)
	if err != nil {
		return nil, fmt.Errorf("error querying leaderboard: %v", err)
	}
	defer rows.Close()

	var ranked []models.RankedSubject
	for rows.Next() {
		var entry models.RankedSubject
		if err := rows.Scan(&entry.Subject, &entry.Minutes); err != nil {
			return nil, err
		}
		ranked = append(ranked, entry)
	}
	return ranked, rows.Err()
}

// TopAirports ranks in-country airports by distinct flight movements
// (departures plus arrivals) within the window.
func (s *Store) TopAirports(p Partition, since time.Time, prefixes classifier.Prefixes, limit int) ([]models.AirportMovements, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT airport,
		       COUNT(*) FILTER (WHERE kind = 'departure') AS departures,
		       COUNT(*) FILTER (WHERE kind = 'arrival') AS arrivals
		FROM (
			SELECT DISTINCT COALESCE(p.user_id, p.callsign) AS subject,
			       p.departure AS airport, p.arrival AS other, p.route, 'departure' AS kind
			FROM %[1]s s
			JOIN %[2]s p ON s.id = p.snapshot_id
			WHERE s.timestamp >= $1 AND %[3]s
			UNION
			SELECT DISTINCT COALESCE(p.user_id, p.callsign) AS subject,
			       p.arrival AS airport, p.departure AS other, p.route, 'arrival' AS kind
			FROM %[1]s s
			JOIN %[2]s p ON s.id = p.snapshot_id
			WHERE s.timestamp >= $1 AND %[4]s
		) movements
		GROUP BY airport
		ORDER BY COUNT(*) DESC, airport ASC
		LIMIT $3
	`, p.snapshotsTable(), p.pilotsTable(), depInCountry, arrInCountry),
		since, pq.Array(prefixes.LikePatterns()), limit)
	if err != nil {
		return nil, fmt.Errorf("error querying top airports: %v", err)
	}
	defer rows.Close()

	var airports []models.AirportMovements
	for rows.Next() {
		var a models.AirportMovements
		if err := rows.Scan(&a.ICAO, &a.Departures, &a.Arrivals); err != nil {
			return nil, err
		}
		airports = append(airports, a)
	}
	return airports, rows.Err()
}
