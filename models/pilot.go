package models

// FlightPlan holds the flight plan fields we keep from the whazzup feed.
type FlightPlan struct {
	Departure     string `json:"departureId"`
	Arrival       string `json:"arrivalId"`
	PeopleOnBoard int    `json:"peopleOnBoard"`
	Route         string `json:"route"`
	Aircraft      string `json:"aircraft"`
}

// Pilot is one connected pilot in a snapshot.
type Pilot struct {
	UserID     string     `json:"userId,omitempty"`
	Callsign   string     `json:"callsign"`
	FlightPlan FlightPlan `json:"flightPlan"`
}

// Subject returns the identifier used for person-time accounting: the user id
// when known, otherwise the callsign.
func (p Pilot) Subject() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.Callsign
}
