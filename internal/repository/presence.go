package repository

import (
	"context"
	"fmt"

	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/repository/rest"
)

type PresenceClient interface {
	GetPresences(ctx context.Context, token, chamadaID string) (rest.PresenceReportPayload, error)
	SubmitPresence(ctx context.Context, chamadaID string, payload rest.SubmitPresencePayload) error
}

type PresenceRepository struct {
	client PresenceClient
}

func NewPresenceRepository(client PresenceClient) *PresenceRepository {
	return &PresenceRepository{
		client: client,
	}
}

func (r *PresenceRepository) Report(ctx context.Context, token, chamadaID string) (domain.PresenceReport, error) {
	payload, err := r.client.GetPresences(ctx, token, chamadaID)
	if err != nil {
		return domain.PresenceReport{}, fmt.Errorf("r.client.GetPresences -> %w", classify(err))
	}

	inputs, err := inputsToDomain(payload.CustomInputs)
	if err != nil {
		return domain.PresenceReport{}, err
	}

	presences := make([]domain.Presence, 0, len(payload.PopulatedPresences))
	for _, p := range payload.PopulatedPresences {
		envio, err := parseWireTime(p.Envio)
		if err != nil {
			return domain.PresenceReport{}, fmt.Errorf("parsing envio -> %w", err)
		}

		presences = append(presences, domain.Presence{
			ID:           p.ID,
			ChamadaID:    p.ChamadaID,
			Nome:         p.Nome,
			Envio:        envio,
			IP:           p.IP,
			Latitude:     p.Lag,
			Longitude:    p.Long,
			CustomValues: p.CustomValues,
		})
	}

	return domain.PresenceReport{
		ChamadaID:    chamadaID,
		CustomInputs: inputs,
		Presences:    presences,
	}, nil
}

// Submit transmits one confirmation. No retry lives here: a failed
// attempt requires a fresh explicit submit upstream.
func (r *PresenceRepository) Submit(ctx context.Context, submission domain.PresenceSubmission) error {
	customValues := submission.CustomValues
	if customValues == nil {
		customValues = map[string]string{}
	}

	payload := rest.SubmitPresencePayload{
		Nome:         submission.Nome,
		IP:           submission.IP,
		UUID:         submission.Device.Value,
		Lag:          submission.Location.Latitude,
		Long:         submission.Location.Longitude,
		CustomInputs: customValues,
	}

	if err := r.client.SubmitPresence(ctx, submission.ChamadaID, payload); err != nil {
		return fmt.Errorf("r.client.SubmitPresence -> %w", classify(err))
	}

	return nil
}
