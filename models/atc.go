package models

// ATC is one connected controller in a snapshot.
type ATC struct {
	UserID    string  `json:"userId,omitempty"`
	Callsign  string  `json:"callsign"`
	Frequency float64 `json:"frequency"`
	Atis      string  `json:"atis,omitempty"`
}

func (a ATC) Subject() string {
	if a.UserID != "" {
		return a.UserID
	}
	return a.Callsign
}
