package domain

import (
	"errors"
	"time"
)

var ErrUnknownInputKind = errors.New("unknown custom input kind")

// InputKind is the closed set of custom input kinds the backend emits.
type InputKind string

const (
	KindText     InputKind = "text"
	KindDropdown InputKind = "dropdown"
)

// ParseInputKind maps a wire-level kind tag to an InputKind.
func ParseInputKind(s string) (InputKind, error) {
	switch s {
	case string(KindText):
		return KindText, nil
	case string(KindDropdown):
		return KindDropdown, nil
	default:
		return "", ErrUnknownInputKind
	}
}

// Chamada is a roll-call session: a named time window anchored at a
// location, with a tolerance radius inside which presences are accepted.
// The backend owns the start<=end invariant.
type Chamada struct {
	ID              string
	Nome            string
	DataInicio      time.Time
	DataFim         time.Time
	Latitude        float64
	Longitude       float64
	ToleranceMeters int
	Ativa           bool
	CustomInputs    []CustomInput
}

// CustomInput is an administrator-defined extra form field attached to a
// chamada. Options is populated for dropdown inputs only.
type CustomInput struct {
	ID          string
	ChamadaID   string
	Kind        InputKind
	Label       string
	Placeholder string
	Options     []string
}
