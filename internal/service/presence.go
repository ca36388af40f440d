package service

import (
	"context"
	"fmt"

	"github.com/chamada-app/chamadactl/internal/domain"
)

type PresenceRepo interface {
	Report(ctx context.Context, token, chamadaID string) (domain.PresenceReport, error)
	Submit(ctx context.Context, submission domain.PresenceSubmission) error
}

// PresenceService is the administrator's read side of presences. The
// attendee write side lives in ConfirmationFlow.
type PresenceService struct {
	repo PresenceRepo
}

func NewPresenceService(repo PresenceRepo) *PresenceService {
	return &PresenceService{
		repo: repo,
	}
}

func (s *PresenceService) Report(ctx context.Context, token, chamadaID string) (domain.PresenceReport, error) {
	report, err := s.repo.Report(ctx, token, chamadaID)
	if err != nil {
		return domain.PresenceReport{}, fmt.Errorf("s.repo.Report -> %w", err)
	}

	return report, nil
}
