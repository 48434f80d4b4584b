// Package charts extracts chart-ready time series from the snapshot store and
// memoizes rendered artifacts for a short TTL.
package charts

import (
	"sync"
	"time"

	"github.com/tmarques/ivao-stats/db"
	"github.com/tmarques/ivao-stats/models"
)

// WindowType selects the time range and resolution of a chart series.
type WindowType string

const (
	Realtime WindowType = "realtime"
	Daily    WindowType = "daily"
	Weekly   WindowType = "weekly"
	Monthly  WindowType = "monthly"
)

// ParseWindowType validates a window type coming from a request path.
func ParseWindowType(s string) (WindowType, bool) {
	switch WindowType(s) {
	case Realtime, Daily, Weekly, Monthly:
		return WindowType(s), true
	}
	return "", false
}

// The realtime series spans 26 hours so the first visible tick lands exactly
// at -24h.
const realtimeSpan = 26 * time.Hour

// SeriesSource is the slice of the store the chart service reads from.
type SeriesSource interface {
	ChartTimeSeries(p db.Partition, from, to time.Time) ([]db.SeriesPoint, error)
	ChartDailyCounts(p db.Partition, from time.Time) ([]db.DailyCount, error)
	LastSnapshot(p db.Partition) (*models.Snapshot, error)
}

type Service struct {
	src    SeriesSource
	render RenderFunc
	now    func() time.Time

	// Rendering is serialized: the render path holds library state that is
	// not safe for concurrent use. Series extraction and cache reads are not
	// behind this lock.
	renderMu sync.Mutex

	mu        sync.Mutex
	cache     map[string]cacheEntry
	lastSweep time.Time
}

func New(src SeriesSource, render RenderFunc) *Service {
	return &Service{
		src:    src,
		render: render,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// Series produces the ordered (label, pilot count, ATC count) series for a
// window type. Realtime and daily series have one point per snapshot; weekly
// and monthly series have one point per calendar day, with missing days
// filled with zeros.
func (s *Service) Series(windowType WindowType) ([]string, []int, []int, error) {
	now := s.now().UTC()

	switch windowType {
	case Weekly:
		return s.dailySeries(db.PartitionWeek, startOfWeek(now), now)
	case Monthly:
		return s.dailySeries(db.PartitionMonth, startOfMonth(now), now)
	case Daily:
		return s.sampleSeries(startOfDay(now), now)
	default:
		return s.sampleSeries(now.Add(-realtimeSpan), now)
	}
}

func (s *Service) sampleSeries(from, now time.Time) ([]string, []int, []int, error) {
	points, err := s.src.ChartTimeSeries(db.PartitionDay, from, time.Time{})
	if err != nil {
		return nil, nil, nil, err
	}

	if len(points) == 0 {
		return s.flatFallback(from, now)
	}

	labels := make([]string, len(points))
	pilots := make([]int, len(points))
	atcs := make([]int, len(points))
	for i, point := range points {
		labels[i] = point.Timestamp.UTC().Format("15:04")
		pilots[i] = point.Pilots
		atcs[i] = point.ATCs
	}
	return labels, pilots, atcs, nil
}

// flatFallback synthesizes a two-point flat series from the last known
// snapshot, or zeros, so rendering never receives an empty series.
func (s *Service) flatFallback(from, now time.Time) ([]string, []int, []int, error) {
	last, err := s.src.LastSnapshot(db.PartitionDay)
	if err != nil {
		return nil, nil, nil, err
	}

	if last == nil {
		return []string{"00:00", now.Format("15:04")}, []int{0, 0}, []int{0, 0}, nil
	}

	pilots := len(last.Pilots)
	atcs := len(last.ATCs)
	labels := []string{from.Format("15:04"), now.Format("15:04")}
	return labels, []int{pilots, pilots}, []int{atcs, atcs}, nil
}

func (s *Service) dailySeries(p db.Partition, from, now time.Time) ([]string, []int, []int, error) {
	counts, err := s.src.ChartDailyCounts(p, from)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(counts) == 0 {
		return nil, nil, nil, nil
	}

	type day struct{ pilots, atcs int }
	byDay := make(map[string]day, len(counts))
	for _, count := range counts {
		byDay[count.Day.UTC().Format("2006-01-02")] = day{count.Pilots, count.ATCs}
	}

	var labels []string
	var pilots, atcs []int
	for date := from; !date.After(now); date = date.AddDate(0, 0, 1) {
		labels = append(labels, date.Format("02/01"))
		d := byDay[date.Format("2006-01-02")]
		pilots = append(pilots, d.pilots)
		atcs = append(atcs, d.atcs)
	}
	return labels, pilots, atcs, nil
}

func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func startOfWeek(now time.Time) time.Time {
	day := startOfDay(now)
	offset := (int(day.Weekday()) + 6) % 7 // Monday-based week
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
