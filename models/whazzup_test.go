package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhazzupPilotConversion(t *testing.T) {
	raw := `{
		"userId": 123456,
		"callsign": "lan123",
		"flightPlan": {
			"departureId": "scel",
			"arrivalId": "saez",
			"peopleOnBoard": 180,
			"route": "DCT UMKAL DCT",
			"aircraft": {"icaoCode": "a320"}
		}
	}`
	var wp WhazzupPilot
	require.NoError(t, json.Unmarshal([]byte(raw), &wp))

	pilot, ok := wp.Pilot()
	require.True(t, ok)
	assert.Equal(t, "123456", pilot.UserID)
	assert.Equal(t, "LAN123", pilot.Callsign)
	assert.Equal(t, "SCEL", pilot.FlightPlan.Departure)
	assert.Equal(t, "SAEZ", pilot.FlightPlan.Arrival)
	assert.Equal(t, 180, pilot.FlightPlan.PeopleOnBoard)
	assert.Equal(t, "UMKAL", pilot.FlightPlan.Route)
	assert.Equal(t, "A320", pilot.FlightPlan.Aircraft)
}

func TestWhazzupPilotDefaults(t *testing.T) {
	pilot, ok := WhazzupPilot{Callsign: "SCX001"}.Pilot()
	require.True(t, ok)
	assert.Empty(t, pilot.UserID)
	assert.Equal(t, "No route", pilot.FlightPlan.Route)
	assert.Equal(t, "UNKNOWN", pilot.FlightPlan.Aircraft)
}

func TestWhazzupPilotWithoutCallsign(t *testing.T) {
	_, ok := WhazzupPilot{UserID: 99, Callsign: "  "}.Pilot()
	assert.False(t, ok)
}

func TestWhazzupATCConversion(t *testing.T) {
	atc, ok := WhazzupATC{
		UserID:     200,
		Callsign:   "scel_twr",
		ATCSession: &WhazzupSession{Frequency: 118.1},
		Atis:       &WhazzupAtis{Lines: []string{"SCEL TWR", "RWY 17L IN USE"}},
	}.ATC()
	require.True(t, ok)
	assert.Equal(t, "200", atc.UserID)
	assert.Equal(t, "SCEL_TWR", atc.Callsign)
	assert.Equal(t, 118.1, atc.Frequency)
	assert.Equal(t, "SCEL TWR\nRWY 17L IN USE", atc.Atis)
}

func TestSubjectFallsBackToCallsign(t *testing.T) {
	assert.Equal(t, "123", Pilot{UserID: "123", Callsign: "LAN123"}.Subject())
	assert.Equal(t, "LAN123", Pilot{Callsign: "LAN123"}.Subject())
	assert.Equal(t, "55", ATC{UserID: "55", Callsign: "SCEL_TWR"}.Subject())
	assert.Equal(t, "SCEL_TWR", ATC{Callsign: "SCEL_TWR"}.Subject())
}

func TestCleanRoute(t *testing.T) {
	tests := []struct {
		name  string
		route string
		want  string
	}{
		{"empty", "", ""},
		{"no route placeholder", "No route", "No route"},
		{"drops DCT tokens", "DCT UMKAL DCT", "UMKAL"},
		{"drops coordinates", "UMKAL 3350S07030W TUTEN", "UMKAL TUTEN"},
		{"drops decimal coordinates", "-33.5,-70.6 UMKAL", "UMKAL"},
		{"strips speed suffix", "UMKAL/N0450F350 TUTEN", "UMKAL TUTEN"},
		{"coordinate with suffix is a waypoint", "3350S07030W/N0450F350 UMKAL", "3350S07030W UMKAL"},
		{"only DCT collapses", "DCT DCT", "DCT"},
		{"short route kept whole", "A B C D", "A B C D"},
		{"long route shortened", "A B C D E F", "A B...E F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanRoute(tt.route))
		})
	}
}
