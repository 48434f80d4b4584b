package db

import (
	"fmt"
	"time"
)

// SeriesPoint is one per-snapshot point of a chart time series.
type SeriesPoint struct {
	Timestamp time.Time
	Pilots    int
	ATCs      int
}

// DailyCount is one per-calendar-day aggregate for the compact weekly and
// monthly series.
type DailyCount struct {
	Day    time.Time
	Pilots int
	ATCs   int
}

// ChartTimeSeries returns per-snapshot pilot and ATC counts within [from, to]
// ordered by time ascending. Zero bounds are unbounded.
func (s *Store) ChartTimeSeries(p Partition, from, to time.Time) ([]SeriesPoint, error) {
	query := fmt.Sprintf(`
		SELECT s.timestamp,
		       COUNT(DISTINCT p.id) AS pilot_count,
		       COUNT(DISTINCT a.id) AS atc_count
		FROM %s s
		LEFT JOIN %s p ON s.id = p.snapshot_id
		LEFT JOIN %s a ON s.id = a.snapshot_id
		WHERE 1=1
	`, p.snapshotsTable(), p.pilotsTable(), p.atcsTable())

	var args []interface{}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND s.timestamp >= $%d", len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND s.timestamp <= $%d", len(args))
	}
	query += " GROUP BY s.id, s.timestamp ORDER BY s.timestamp ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error getting time series data: %v", err)
	}
	defer rows.Close()

	var points []SeriesPoint
	for rows.Next() {
		var point SeriesPoint
		if err := rows.Scan(&point.Timestamp, &point.Pilots, &point.ATCs); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, rows.Err()
}

// ChartDailyCounts returns per-day distinct pilot and ATC counts since the
// given time, ordered by day ascending.
func (s *Store) ChartDailyCounts(p Partition, from time.Time) ([]DailyCount, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT date_trunc('day', s.timestamp) AS day,
		       COUNT(DISTINCT COALESCE(p.user_id, p.callsign)) AS unique_pilots,
		       COUNT(DISTINCT COALESCE(a.user_id, a.callsign)) AS unique_atcs
		FROM %s s
		LEFT JOIN %s p ON s.id = p.snapshot_id
		LEFT JOIN %s a ON s.id = a.snapshot_id
		WHERE s.timestamp >= $1
		GROUP BY day
		ORDER BY day ASC
	`, p.snapshotsTable(), p.pilotsTable(), p.atcsTable()), from)
	if err != nil {
		return nil, fmt.Errorf("error getting aggregated chart data: %v", err)
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var count DailyCount
		if err := rows.Scan(&count.Day, &count.Pilots, &count.ATCs); err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}
