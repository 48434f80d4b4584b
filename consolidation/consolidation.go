// Package consolidation composes the snapshot store, classifier and session
// tracker into the two results the presentation layer needs: a live
// snapshot-based view and a window-based historical view.
package consolidation

import (
	"log"
	"time"

	"github.com/tmarques/ivao-stats/classifier"
	"github.com/tmarques/ivao-stats/db"
	"github.com/tmarques/ivao-stats/models"
)

// Window is the range a historical report covers, each backed by its own
// partition.
type Window string

const (
	WindowDaily   Window = "daily"
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
)

// ParseWindow validates a window name coming from a request path.
func ParseWindow(s string) (Window, bool) {
	switch Window(s) {
	case WindowDaily, WindowWeekly, WindowMonthly:
		return Window(s), true
	}
	return "", false
}

func (w Window) partition() db.Partition {
	switch w {
	case WindowWeekly:
		return db.PartitionWeek
	case WindowMonthly:
		return db.PartitionMonth
	}
	return db.PartitionDay
}

// start returns the UTC start of the window containing now: midnight for
// daily, Monday midnight for weekly, the 1st for monthly.
func (w Window) start(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch w {
	case WindowWeekly:
		return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	case WindowMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return day
}

const (
	// ShortRetention is the rolling horizon of the day partition.
	ShortRetention = 36 * time.Hour

	// TopN is the default leaderboard size.
	TopN = 3
)

// Store is the slice of the snapshot store the facade needs.
type Store interface {
	LastSnapshot(p db.Partition) (*models.Snapshot, error)
	AggregateStatistics(p db.Partition, since time.Time, prefixes classifier.Prefixes) (*db.WindowAggregate, error)
	TopPilots(p db.Partition, since time.Time, prefixes classifier.Prefixes, limit int) ([]models.RankedSubject, error)
	TopATCs(p db.Partition, since time.Time, prefixes classifier.Prefixes, limit int) ([]models.RankedSubject, error)
	TopAirports(p db.Partition, since time.Time, prefixes classifier.Prefixes, limit int) ([]models.AirportMovements, error)
	PruneDay(olderThan time.Time) (int64, error)
	ResetWeek() error
	ResetMonth() error
}

// SessionTracker reports continuous on-duty minutes per callsign.
type SessionTracker interface {
	SessionMinutes(callsigns []string) map[string]int
}

// PrefixSource yields the current country prefixes; the facade takes a fresh
// snapshot per query instead of caching the set.
type PrefixSource interface {
	Prefixes() classifier.Prefixes
}

// MetarSource provides the optional weather line for the live view.
type MetarSource interface {
	Metar(station string) (string, error)
}

type Service struct {
	store    Store
	tracker  SessionTracker
	prefixes PrefixSource
	metar    MetarSource // optional
	station  string
	now      func() time.Time
}

func New(store Store, tracker SessionTracker, prefixes PrefixSource) *Service {
	return &Service{
		store:    store,
		tracker:  tracker,
		prefixes: prefixes,
		now:      time.Now,
	}
}

// WithMetar attaches a weather source for the live view.
func (s *Service) WithMetar(src MetarSource, station string) *Service {
	s.metar = src
	s.station = station
	return s
}

// Live builds the realtime view from the latest day-partition snapshot plus
// today's aggregated person-time totals. It returns nil when no snapshot has
// been stored yet.
func (s *Service) Live() (*models.Statistics, error) {
	prefixes := s.prefixes.Prefixes()

	last, err := s.store.LastSnapshot(db.PartitionDay)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}

	now := s.now().UTC()
	agg, err := s.store.AggregateStatistics(db.PartitionDay, WindowDaily.start(now), prefixes)
	if err != nil {
		return nil, err
	}

	stats := &models.Statistics{
		FlightTimeMinutes: agg.FlightTimeMinutes,
		ATCTimeMinutes:    agg.ATCTimeMinutes,
	}

	type flightKey struct {
		callsign, dep, arr, route string
		pob                       int
		aircraft                  string
	}
	seen := make(map[flightKey]bool)
	subjects := make(map[string]bool)

	for _, pilot := range last.Pilots {
		if !prefixes.InvolvesCountry(pilot) {
			continue
		}
		stats.PeopleOnBoard += pilot.FlightPlan.PeopleOnBoard

		key := flightKey{
			callsign: pilot.Callsign,
			dep:      pilot.FlightPlan.Departure,
			arr:      pilot.FlightPlan.Arrival,
			route:    pilot.FlightPlan.Route,
			pob:      pilot.FlightPlan.PeopleOnBoard,
			aircraft: pilot.FlightPlan.Aircraft,
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		subjects[pilot.Subject()] = true

		stats.ActiveFlights = append(stats.ActiveFlights, models.ActiveFlight{
			Callsign:      pilot.Callsign,
			Departure:     pilot.FlightPlan.Departure,
			Arrival:       pilot.FlightPlan.Arrival,
			Route:         pilot.FlightPlan.Route,
			PeopleOnBoard: pilot.FlightPlan.PeopleOnBoard,
			Aircraft:      pilot.FlightPlan.Aircraft,
		})

		switch {
		case prefixes.IsDomestic(pilot):
			stats.DomesticFlights++
		case prefixes.IsIntlDeparture(pilot):
			stats.IntlDepartures++
		case prefixes.IsIntlArrival(pilot):
			stats.IntlArrivals++
		}
	}
	stats.TotalFlights = len(seen)
	stats.UniquePilots = len(subjects)

	for _, atc := range last.ATCs {
		if prefixes.IsCountryATC(atc) {
			stats.ActiveATCs = append(stats.ActiveATCs, atc)
		}
	}
	stats.ATCCount = len(stats.ActiveATCs)

	if s.metar != nil && s.station != "" {
		if metar, err := s.metar.Metar(s.station); err == nil {
			stats.Metar = metar
		} else {
			log.Printf("Error fetching METAR for %s: %v", s.station, err)
		}
	}

	return stats, nil
}

// Statistics builds the historical view for a window. It returns nil when the
// window's partition holds no samples yet.
func (s *Service) Statistics(w Window) (*models.Statistics, error) {
	prefixes := s.prefixes.Prefixes()
	now := s.now().UTC()
	since := w.start(now)
	partition := w.partition()

	agg, err := s.store.AggregateStatistics(partition, since, prefixes)
	if err != nil {
		return nil, err
	}
	if agg.Samples == 0 {
		return nil, nil
	}

	stats := &models.Statistics{
		TotalFlights:      agg.TotalFlights,
		DomesticFlights:   agg.DomesticFlights,
		IntlDepartures:    agg.IntlDepartures,
		IntlArrivals:      agg.IntlArrivals,
		UniquePilots:      agg.UniquePilots,
		PeopleOnBoard:     agg.PeopleOnBoard,
		FlightTimeMinutes: agg.FlightTimeMinutes,
		ATCTimeMinutes:    agg.ATCTimeMinutes,
		ATCCount:          agg.ATCCount,
	}

	// Leaderboard failures degrade the report, they do not fail it.
	if top, err := s.store.TopPilots(partition, since, prefixes, TopN); err == nil {
		stats.TopPilots = top
	} else {
		log.Printf("Error fetching top pilots: %v", err)
	}
	if top, err := s.store.TopATCs(partition, since, prefixes, TopN); err == nil {
		stats.TopATCs = top
	} else {
		log.Printf("Error fetching top ATCs: %v", err)
	}
	if top, err := s.store.TopAirports(partition, since, prefixes, TopN); err == nil {
		stats.TopAirports = top
	} else {
		log.Printf("Error fetching top airports: %v", err)
	}

	return stats, nil
}

// SessionMinutes reports the continuous on-duty minutes for each callsign.
func (s *Service) SessionMinutes(callsigns []string) map[string]int {
	return s.tracker.SessionMinutes(callsigns)
}

// PruneDaily removes day-partition snapshots beyond the retention horizon.
func (s *Service) PruneDaily() error {
	_, err := s.store.PruneDay(s.now().UTC().Add(-ShortRetention))
	return err
}

// ResetWeekly empties the week partition; invoked at the window boundary.
func (s *Service) ResetWeekly() error {
	return s.store.ResetWeek()
}

// ResetMonthly empties the month partition; invoked at the window boundary.
func (s *Service) ResetMonthly() error {
	return s.store.ResetMonth()
}
