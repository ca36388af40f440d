package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/repository"
)

var ErrChamadaNotFound = repository.ErrChamadaNotFound

// Defaults a freshly created chamada starts with, matching what the
// backend expects from the dashboard's "new" action.
const (
	defaultChamadaNome     = "Nova Chamada"
	defaultChamadaWindow   = 100 * time.Second
	defaultToleranceMeters = 500
)

type ChamadaRepo interface {
	List(ctx context.Context, token string) ([]domain.Chamada, error)
	Get(ctx context.Context, id string) (domain.Chamada, error)
	Create(ctx context.Context, token string, chamada domain.Chamada) (domain.Chamada, error)
	Update(ctx context.Context, token string, chamada domain.Chamada) (domain.Chamada, error)
	AddInput(ctx context.Context, token, chamadaID string) (domain.CustomInput, error)
	RemoveInput(ctx context.Context, token, chamadaID, inputID string) ([]domain.CustomInput, error)
}

// ChamadaService covers the administrator operations over chamadas. The
// bearer token is injected explicitly per call.
type ChamadaService struct {
	repo            ChamadaRepo
	frontendBaseURL string
}

func NewChamadaService(repo ChamadaRepo, frontendBaseURL string) *ChamadaService {
	return &ChamadaService{
		repo:            repo,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
	}
}

func (s *ChamadaService) List(ctx context.Context, token string) ([]domain.Chamada, error) {
	chamadas, err := s.repo.List(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("s.repo.List -> %w", err)
	}

	return chamadas, nil
}

func (s *ChamadaService) Get(ctx context.Context, id string) (domain.Chamada, error) {
	chamada, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("s.repo.Get -> %w", err)
	}

	return chamada, nil
}

// Create opens a new chamada anchored at the given location, with the
// default name, window and tolerance. The backend assigns the id.
func (s *ChamadaService) Create(ctx context.Context, token string, location domain.Coordinates) (domain.Chamada, error) {
	now := time.Now()
	chamada := domain.Chamada{
		Nome:            defaultChamadaNome,
		DataInicio:      now,
		DataFim:         now.Add(defaultChamadaWindow),
		Latitude:        location.Latitude,
		Longitude:       location.Longitude,
		ToleranceMeters: defaultToleranceMeters,
		Ativa:           true,
	}

	created, err := s.repo.Create(ctx, token, chamada)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ChamadaService) Update(ctx context.Context, token string, chamada domain.Chamada) (domain.Chamada, error) {
	updated, err := s.repo.Update(ctx, token, chamada)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// ToggleAtiva flips the active flag and persists the whole chamada, the
// way the dashboard's activate/deactivate switch does.
func (s *ChamadaService) ToggleAtiva(ctx context.Context, token, id string) (domain.Chamada, error) {
	chamada, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("s.repo.Get -> %w", err)
	}

	chamada.Ativa = !chamada.Ativa

	updated, err := s.repo.Update(ctx, token, chamada)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *ChamadaService) AddInput(ctx context.Context, token, chamadaID string) (domain.CustomInput, error) {
	input, err := s.repo.AddInput(ctx, token, chamadaID)
	if err != nil {
		return domain.CustomInput{}, fmt.Errorf("s.repo.AddInput -> %w", err)
	}

	return input, nil
}

func (s *ChamadaService) RemoveInput(ctx context.Context, token, chamadaID, inputID string) ([]domain.CustomInput, error) {
	inputs, err := s.repo.RemoveInput(ctx, token, chamadaID, inputID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.RemoveInput -> %w", err)
	}

	return inputs, nil
}

// ShareLink renders the attendee-facing confirmation URL for a chamada.
func (s *ChamadaService) ShareLink(chamadaID string) string {
	return s.frontendBaseURL + "/confirmar-presenca/" + chamadaID
}
