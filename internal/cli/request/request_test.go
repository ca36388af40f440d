package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginRequestValidate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Username: "admin", Password: "s3cret"}).Validate())
	assert.Error(t, (&LoginRequest{Username: "admin"}).Validate())
	assert.Error(t, (&LoginRequest{Password: "s3cret"}).Validate())
}

func TestCreateChamadaRequestValidate(t *testing.T) {
	assert.NoError(t, (&CreateChamadaRequest{Latitude: -23.55, Longitude: -46.63}).Validate())
	assert.Error(t, (&CreateChamadaRequest{Latitude: 91, Longitude: 0}).Validate())
	assert.Error(t, (&CreateChamadaRequest{Latitude: 0, Longitude: -181}).Validate())
}

func TestUpdateChamadaRequestValidate(t *testing.T) {
	valid := UpdateChamadaRequest{
		Nome:            "Aula de Redes",
		Latitude:        -23.55,
		Longitude:       -46.63,
		ToleranceMeters: 500,
	}
	assert.NoError(t, valid.Validate())

	missingNome := valid
	missingNome.Nome = ""
	assert.Error(t, missingNome.Validate())

	longNome := valid
	longNome.Nome = strings.Repeat("a", 101)
	assert.Error(t, longNome.Validate())

	noTolerance := valid
	noTolerance.ToleranceMeters = 0
	assert.Error(t, noTolerance.Validate())
}

func TestConfirmRequestValidate(t *testing.T) {
	assert.NoError(t, (&ConfirmRequest{ChamadaID: "abc123", Nome: "Maria"}).Validate())
	assert.Error(t, (&ConfirmRequest{Nome: "Maria"}).Validate())
	assert.Error(t, (&ConfirmRequest{ChamadaID: "abc123"}).Validate())
}
