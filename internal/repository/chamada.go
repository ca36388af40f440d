package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/repository/rest"
)

var (
	ErrChamadaNotFound = errors.New("chamada not found")
	ErrNetwork         = rest.ErrNetwork
)

type ChamadaClient interface {
	ListChamadas(ctx context.Context, token string) ([]rest.ChamadaPayload, error)
	GetChamada(ctx context.Context, id string) (rest.ChamadaPayload, error)
	CreateChamada(ctx context.Context, token string, payload rest.ChamadaPayload) (rest.ChamadaPayload, error)
	UpdateChamada(ctx context.Context, token string, payload rest.ChamadaPayload, inputs []rest.CustomInputPayload) (rest.ChamadaPayload, error)
	AddCustomInput(ctx context.Context, token, chamadaID string) (rest.CustomInputPayload, error)
	RemoveCustomInput(ctx context.Context, token, chamadaID, inputID string) ([]rest.CustomInputPayload, error)
}

type ChamadaRepository struct {
	client ChamadaClient
}

func NewChamadaRepository(client ChamadaClient) *ChamadaRepository {
	return &ChamadaRepository{
		client: client,
	}
}

func (r *ChamadaRepository) List(ctx context.Context, token string) ([]domain.Chamada, error) {
	payloads, err := r.client.ListChamadas(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("r.client.ListChamadas -> %w", classify(err))
	}

	chamadas := make([]domain.Chamada, 0, len(payloads))
	for _, p := range payloads {
		chamada, err := payloadToDomain(p)
		if err != nil {
			return nil, err
		}
		chamadas = append(chamadas, chamada)
	}

	return chamadas, nil
}

func (r *ChamadaRepository) Get(ctx context.Context, id string) (domain.Chamada, error) {
	payload, err := r.client.GetChamada(ctx, id)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("r.client.GetChamada -> %w", classify(err))
	}

	return payloadToDomain(payload)
}

func (r *ChamadaRepository) Create(ctx context.Context, token string, chamada domain.Chamada) (domain.Chamada, error) {
	created, err := r.client.CreateChamada(ctx, token, domainToPayload(chamada))
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("r.client.CreateChamada -> %w", classify(err))
	}

	return payloadToDomain(created)
}

func (r *ChamadaRepository) Update(ctx context.Context, token string, chamada domain.Chamada) (domain.Chamada, error) {
	payload := domainToPayload(chamada)
	updated, err := r.client.UpdateChamada(ctx, token, payload, payload.CustomInputs)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("r.client.UpdateChamada -> %w", classify(err))
	}

	return payloadToDomain(updated)
}

func (r *ChamadaRepository) AddInput(ctx context.Context, token, chamadaID string) (domain.CustomInput, error) {
	payload, err := r.client.AddCustomInput(ctx, token, chamadaID)
	if err != nil {
		return domain.CustomInput{}, fmt.Errorf("r.client.AddCustomInput -> %w", classify(err))
	}

	return inputToDomain(payload)
}

func (r *ChamadaRepository) RemoveInput(ctx context.Context, token, chamadaID, inputID string) ([]domain.CustomInput, error) {
	payloads, err := r.client.RemoveCustomInput(ctx, token, chamadaID, inputID)
	if err != nil {
		return nil, fmt.Errorf("r.client.RemoveCustomInput -> %w", classify(err))
	}

	return inputsToDomain(payloads)
}

// classify maps a 404 from the backend onto the not-found sentinel so
// callers can branch with errors.Is. Everything else passes through.
func classify(err error) error {
	var serverErr *rest.ServerError
	if errors.As(err, &serverErr) && serverErr.Status == http.StatusNotFound {
		return ErrChamadaNotFound
	}

	return err
}

func payloadToDomain(p rest.ChamadaPayload) (domain.Chamada, error) {
	inputs, err := inputsToDomain(p.CustomInputs)
	if err != nil {
		return domain.Chamada{}, err
	}

	inicio, err := parseWireTime(p.DataInicio)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("parsing dataInicio -> %w", err)
	}
	fim, err := parseWireTime(p.DataFim)
	if err != nil {
		return domain.Chamada{}, fmt.Errorf("parsing dataFim -> %w", err)
	}

	return domain.Chamada{
		ID:              p.ID,
		Nome:            p.Nome,
		DataInicio:      inicio,
		DataFim:         fim,
		Latitude:        p.Lag,
		Longitude:       p.Long,
		ToleranceMeters: p.ToleranceMeters,
		Ativa:           p.Ativa,
		CustomInputs:    inputs,
	}, nil
}

func domainToPayload(c domain.Chamada) rest.ChamadaPayload {
	inputs := make([]rest.CustomInputPayload, len(c.CustomInputs))
	for i, input := range c.CustomInputs {
		inputs[i] = rest.CustomInputPayload{
			ID:          input.ID,
			ChamadaID:   input.ChamadaID,
			Label:       input.Label,
			Type:        string(input.Kind),
			Placeholder: input.Placeholder,
			Options:     input.Options,
		}
	}

	return rest.ChamadaPayload{
		ID:              c.ID,
		Nome:            c.Nome,
		DataInicio:      c.DataInicio.UTC().Format(time.RFC3339),
		DataFim:         c.DataFim.UTC().Format(time.RFC3339),
		Lag:             c.Latitude,
		Long:            c.Longitude,
		ToleranceMeters: c.ToleranceMeters,
		Ativa:           c.Ativa,
		CustomInputs:    inputs,
	}
}

func inputsToDomain(payloads []rest.CustomInputPayload) ([]domain.CustomInput, error) {
	inputs := make([]domain.CustomInput, 0, len(payloads))
	for _, p := range payloads {
		input, err := inputToDomain(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, input)
	}

	return inputs, nil
}

func inputToDomain(p rest.CustomInputPayload) (domain.CustomInput, error) {
	kind, err := domain.ParseInputKind(p.Type)
	if err != nil {
		return domain.CustomInput{}, fmt.Errorf("input %q has kind %q -> %w", p.ID, p.Type, err)
	}

	return domain.CustomInput{
		ID:          p.ID,
		ChamadaID:   p.ChamadaID,
		Kind:        kind,
		Label:       p.Label,
		Placeholder: p.Placeholder,
		Options:     p.Options,
	}, nil
}

// parseWireTime accepts the formats the backend has been seen emitting.
func parseWireTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
