// Package classifier labels flights and controllers against a set of country
// prefixes. All predicates are pure functions of the prefix set passed in, so
// a prefix reload takes effect on the next query without touching stored data.
package classifier

import (
	"strings"

	"github.com/tmarques/ivao-stats/models"
)

// Prefixes is the ordered set of ICAO/callsign prefixes that define the
// country scope, e.g. {"SC"} for Chile.
type Prefixes []string

func (p Prefixes) matches(code string) bool {
	for _, prefix := range p {
		if prefix != "" && strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// IsDomestic reports whether both endpoints are in country.
func (p Prefixes) IsDomestic(pilot models.Pilot) bool {
	return p.matches(pilot.FlightPlan.Departure) && p.matches(pilot.FlightPlan.Arrival)
}

// IsIntlDeparture reports whether the flight departs the country for a
// foreign destination.
func (p Prefixes) IsIntlDeparture(pilot models.Pilot) bool {
	return p.matches(pilot.FlightPlan.Departure) && !p.matches(pilot.FlightPlan.Arrival)
}

// IsIntlArrival reports whether the flight arrives from abroad.
func (p Prefixes) IsIntlArrival(pilot models.Pilot) bool {
	return !p.matches(pilot.FlightPlan.Departure) && p.matches(pilot.FlightPlan.Arrival)
}

// InvolvesCountry reports whether either endpoint is in country.
func (p Prefixes) InvolvesCountry(pilot models.Pilot) bool {
	return p.matches(pilot.FlightPlan.Departure) || p.matches(pilot.FlightPlan.Arrival)
}

// IsCountryATC reports whether the controller position belongs to the country.
func (p Prefixes) IsCountryATC(atc models.ATC) bool {
	return p.matches(atc.Callsign)
}

// LikePatterns returns the prefixes as SQL LIKE patterns ("SC" -> "SC%"),
// skipping empty entries.
func (p Prefixes) LikePatterns() []string {
	patterns := make([]string, 0, len(p))
	for _, prefix := range p {
		if prefix != "" {
			patterns = append(patterns, prefix+"%")
		}
	}
	return patterns
}
