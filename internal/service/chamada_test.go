package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamada-app/chamadactl/internal/domain"
)

type fakeChamadaRepo struct {
	chamadas map[string]domain.Chamada
	updated  []domain.Chamada
	tokens   []string
}

func newFakeChamadaRepo() *fakeChamadaRepo {
	return &fakeChamadaRepo{chamadas: map[string]domain.Chamada{}}
}

func (r *fakeChamadaRepo) List(_ context.Context, token string) ([]domain.Chamada, error) {
	r.tokens = append(r.tokens, token)
	list := make([]domain.Chamada, 0, len(r.chamadas))
	for _, chamada := range r.chamadas {
		list = append(list, chamada)
	}

	return list, nil
}

func (r *fakeChamadaRepo) Get(_ context.Context, id string) (domain.Chamada, error) {
	chamada, ok := r.chamadas[id]
	if !ok {
		return domain.Chamada{}, ErrChamadaNotFound
	}

	return chamada, nil
}

func (r *fakeChamadaRepo) Create(_ context.Context, token string, chamada domain.Chamada) (domain.Chamada, error) {
	r.tokens = append(r.tokens, token)
	chamada.ID = "created-1"
	r.chamadas[chamada.ID] = chamada

	return chamada, nil
}

func (r *fakeChamadaRepo) Update(_ context.Context, token string, chamada domain.Chamada) (domain.Chamada, error) {
	r.tokens = append(r.tokens, token)
	r.updated = append(r.updated, chamada)
	r.chamadas[chamada.ID] = chamada

	return chamada, nil
}

func (r *fakeChamadaRepo) AddInput(_ context.Context, token, chamadaID string) (domain.CustomInput, error) {
	r.tokens = append(r.tokens, token)

	return domain.CustomInput{ID: "input-new-1", ChamadaID: chamadaID, Kind: domain.KindText}, nil
}

func (r *fakeChamadaRepo) RemoveInput(_ context.Context, token, _, _ string) ([]domain.CustomInput, error) {
	r.tokens = append(r.tokens, token)

	return []domain.CustomInput{}, nil
}

func TestChamadaCreateDefaults(t *testing.T) {
	repo := newFakeChamadaRepo()
	svc := NewChamadaService(repo, "https://front.example")

	created, err := svc.Create(context.Background(), "tok-123", domain.Coordinates{Latitude: -23.5, Longitude: -46.6})

	require.NoError(t, err)
	assert.Equal(t, "Nova Chamada", created.Nome)
	assert.Equal(t, -23.5, created.Latitude)
	assert.Equal(t, -46.6, created.Longitude)
	assert.Equal(t, 500, created.ToleranceMeters)
	assert.True(t, created.Ativa)
	assert.Equal(t, 100*time.Second, created.DataFim.Sub(created.DataInicio))
	assert.Equal(t, []string{"tok-123"}, repo.tokens)
}

func TestChamadaToggleAtiva(t *testing.T) {
	repo := newFakeChamadaRepo()
	repo.chamadas["abc123"] = domain.Chamada{ID: "abc123", Ativa: true}
	svc := NewChamadaService(repo, "https://front.example")

	toggled, err := svc.ToggleAtiva(context.Background(), "tok-123", "abc123")

	require.NoError(t, err)
	assert.False(t, toggled.Ativa)
	require.Len(t, repo.updated, 1)

	toggled, err = svc.ToggleAtiva(context.Background(), "tok-123", "abc123")
	require.NoError(t, err)
	assert.True(t, toggled.Ativa)
}

func TestChamadaToggleAtivaMissing(t *testing.T) {
	svc := NewChamadaService(newFakeChamadaRepo(), "https://front.example")

	_, err := svc.ToggleAtiva(context.Background(), "tok-123", "missing")

	assert.ErrorIs(t, err, ErrChamadaNotFound)
}

func TestChamadaShareLink(t *testing.T) {
	svc := NewChamadaService(newFakeChamadaRepo(), "https://front.example/")

	assert.Equal(t, "https://front.example/confirmar-presenca/abc123", svc.ShareLink("abc123"))
}
