// Package identity derives the stable per-device identifier and the
// public network address attached to presence submissions.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chamada-app/chamadactl/internal/domain"
)

// ErrFingerprintUnavailable means no visitor identifier could be obtained
// from the fingerprint service. Submission must not proceed without one.
var ErrFingerprintUnavailable = errors.New("fingerprint service unavailable")

// Strategy resolves this device's identity.
type Strategy interface {
	Resolve(ctx context.Context) (domain.DeviceIdentity, error)
}

// KV is the slice of the local store the generated strategy needs.
type KV interface {
	SetIfAbsent(key, value string) (string, error)
}

// GeneratedStrategy mints a random identifier once per device and
// persists it before first use. Re-resolving always yields the stored
// value; concurrent first-time initializers converge on a single winner
// through the store's check-then-set.
type GeneratedStrategy struct {
	store KV
	key   string
}

func NewGeneratedStrategy(store KV, key string) *GeneratedStrategy {
	return &GeneratedStrategy{
		store: store,
		key:   key,
	}
}

func (s *GeneratedStrategy) Resolve(_ context.Context) (domain.DeviceIdentity, error) {
	value, err := s.store.SetIfAbsent(s.key, uuid.NewString())
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("s.store.SetIfAbsent -> %w", err)
	}

	return domain.DeviceIdentity{
		Value:    value,
		Strategy: domain.StrategyGenerated,
	}, nil
}
