package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Whazzup mirrors the slice of the IVAO whazzup v2 payload that we consume.
type Whazzup struct {
	UpdatedAt time.Time      `json:"updatedAt"`
	Clients   WhazzupClients `json:"clients"`
}

type WhazzupClients struct {
	Pilots []WhazzupPilot `json:"pilots"`
	ATCs   []WhazzupATC   `json:"atcs"`
}

type WhazzupPilot struct {
	UserID     int                `json:"userId"`
	Callsign   string             `json:"callsign"`
	FlightPlan *WhazzupFlightPlan `json:"flightPlan"`
}

type WhazzupFlightPlan struct {
	DepartureID   string           `json:"departureId"`
	ArrivalID     string           `json:"arrivalId"`
	PeopleOnBoard int              `json:"peopleOnBoard"`
	Route         string           `json:"route"`
	Aircraft      *WhazzupAircraft `json:"aircraft"`
}

type WhazzupAircraft struct {
	ICAOCode string `json:"icaoCode"`
}

type WhazzupATC struct {
	UserID     int             `json:"userId"`
	Callsign   string          `json:"callsign"`
	ATCSession *WhazzupSession `json:"atcSession"`
	Atis       *WhazzupAtis    `json:"atis"`
}

type WhazzupSession struct {
	Frequency float64 `json:"frequency"`
}

type WhazzupAtis struct {
	Lines []string `json:"lines"`
}

// Pilot converts a feed record into a Pilot. Records without a callsign are
// malformed and reported as not ok so the caller can drop them.
func (w WhazzupPilot) Pilot() (Pilot, bool) {
	callsign := strings.ToUpper(strings.TrimSpace(w.Callsign))
	if callsign == "" {
		return Pilot{}, false
	}

	fp := FlightPlan{Route: "No route", Aircraft: "UNKNOWN"}
	if w.FlightPlan != nil {
		fp.Departure = strings.ToUpper(w.FlightPlan.DepartureID)
		fp.Arrival = strings.ToUpper(w.FlightPlan.ArrivalID)
		fp.PeopleOnBoard = w.FlightPlan.PeopleOnBoard
		if w.FlightPlan.Route != "" {
			fp.Route = CleanRoute(w.FlightPlan.Route)
		}
		if w.FlightPlan.Aircraft != nil && w.FlightPlan.Aircraft.ICAOCode != "" {
			fp.Aircraft = strings.ToUpper(w.FlightPlan.Aircraft.ICAOCode)
		}
	}

	return Pilot{
		UserID:     userID(w.UserID),
		Callsign:   callsign,
		FlightPlan: fp,
	}, true
}

// ATC converts a feed record into an ATC, dropping records without a callsign.
func (w WhazzupATC) ATC() (ATC, bool) {
	callsign := strings.ToUpper(strings.TrimSpace(w.Callsign))
	if callsign == "" {
		return ATC{}, false
	}

	atc := ATC{
		UserID:   userID(w.UserID),
		Callsign: callsign,
	}
	if w.ATCSession != nil {
		atc.Frequency = w.ATCSession.Frequency
	}
	if w.Atis != nil {
		atc.Atis = strings.Join(w.Atis.Lines, "\n")
	}
	return atc, true
}

func userID(id int) string {
	if id <= 0 {
		return ""
	}
	return strconv.Itoa(id)
}

var coordPattern = regexp.MustCompile(
	`^(\d{2,4}[NS]\d{3,5}[EW]|\d{1,2}[NS]\d{1,3}[EW]|-?\d+(\.\d+)?,-?\d+(\.\d+)?)$`)

// CleanRoute strips DCT tokens and raw coordinates from a filed route and
// shortens very long routes to their first and last two waypoints.
func CleanRoute(route string) string {
	if route == "" || route == "No route" {
		return route
	}

	var segments []string
	for _, seg := range strings.Fields(route) {
		name := seg
		if i := strings.IndexByte(seg, '/'); i >= 0 {
			name = seg[:i]
		}
		// The coordinate test runs on the whole segment: a coordinate with a
		// speed/level suffix is a filed waypoint, not a raw coordinate, and is
		// kept suffix-stripped.
		if strings.ToUpper(name) == "DCT" || coordPattern.MatchString(strings.ToUpper(seg)) {
			continue
		}
		segments = append(segments, name)
	}

	if len(segments) == 0 {
		return "DCT"
	}
	if len(segments) > 4 {
		return strings.Join(segments[:2], " ") + "..." + strings.Join(segments[len(segments)-2:], " ")
	}
	return strings.Join(segments, " ")
}
