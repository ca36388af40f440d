// Package request holds the user-input structs the CLI validates before
// handing anything to a service.
package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type LoginRequest struct {
	Username string
	Password string
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

type CreateChamadaRequest struct {
	Latitude  float64
	Longitude float64
}

func (req *CreateChamadaRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&req.Longitude, validation.Min(-180.0), validation.Max(180.0)),
	)
}

type UpdateChamadaRequest struct {
	Nome            string
	Latitude        float64
	Longitude       float64
	ToleranceMeters int
}

func (req *UpdateChamadaRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Nome, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Latitude, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&req.Longitude, validation.Min(-180.0), validation.Max(180.0)),
		validation.Field(&req.ToleranceMeters, validation.Required, validation.Min(1)),
	)
}

type ConfirmRequest struct {
	ChamadaID string
	Nome      string
}

func (req *ConfirmRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ChamadaID, validation.Required),
		validation.Field(&req.Nome, validation.Required, validation.Length(1, 100)),
	)
}
