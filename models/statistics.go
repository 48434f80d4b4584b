package models

// ActiveFlight is one in-country flight taken from the latest snapshot.
type ActiveFlight struct {
	Callsign      string `json:"callsign"`
	Departure     string `json:"departure"`
	Arrival       string `json:"arrival"`
	Route         string `json:"route"`
	PeopleOnBoard int    `json:"pob"`
	Aircraft      string `json:"aircraft"`
}

// RankedSubject is one leaderboard entry, ranked by accumulated minutes.
type RankedSubject struct {
	Subject string `json:"subject"`
	Minutes int    `json:"minutes"`
}

// AirportMovements counts distinct departures and arrivals at one airport.
type AirportMovements struct {
	ICAO       string `json:"icao"`
	Departures int    `json:"departures"`
	Arrivals   int    `json:"arrivals"`
}

// Statistics is a consolidated result for one window (or the live view).
// It is built fresh per query and never mutated afterwards.
type Statistics struct {
	TotalFlights      int `json:"total_flights"`
	DomesticFlights   int `json:"domestic_flights"`
	IntlDepartures    int `json:"intl_departures"`
	IntlArrivals      int `json:"intl_arrivals"`
	UniquePilots      int `json:"unique_pilots"`
	PeopleOnBoard     int `json:"people_on_board_total"`
	FlightTimeMinutes int `json:"flight_time_total_min"`
	ATCTimeMinutes    int `json:"atc_time_total_min"`
	ATCCount          int `json:"atc_count"`

	// Live-only fields.
	ActiveFlights []ActiveFlight `json:"active_flights,omitempty"`
	ActiveATCs    []ATC          `json:"active_atcs,omitempty"`
	Metar         string         `json:"metar,omitempty"`

	// Window-only leaderboards.
	TopPilots   []RankedSubject    `json:"top_pilots,omitempty"`
	TopATCs     []RankedSubject    `json:"top_atcs,omitempty"`
	TopAirports []AirportMovements `json:"top_airports,omitempty"`
}
