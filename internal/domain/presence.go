package domain

import "time"

// Coordinates is a single location fix. Code that has no fix yet carries a
// nil *Coordinates, never a zero value.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// PresenceSubmission is one attendee's confirmation attempt, assembled
// fresh per submit. CustomValues maps custom input IDs to the values the
// attendee filled in; inputs the attendee left unanswered are absent from
// the map.
type PresenceSubmission struct {
	ChamadaID    string
	Nome         string
	Device       DeviceIdentity
	IP           string
	Location     Coordinates
	CustomValues map[string]string
}

// Presence is a recorded confirmation as the backend reports it to
// administrators, custom values already resolved per input.
type Presence struct {
	ID           string
	ChamadaID    string
	Nome         string
	Envio        time.Time
	IP           string
	Latitude     float64
	Longitude    float64
	CustomValues map[string]string
}

// PresenceReport is the admin read model for one chamada: the input
// definitions alongside every presence recorded against them.
type PresenceReport struct {
	ChamadaID    string
	CustomInputs []CustomInput
	Presences    []Presence
}
