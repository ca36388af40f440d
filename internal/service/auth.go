package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/localstate"
	"github.com/chamada-app/chamadactl/internal/repository"
)

var (
	ErrWrongCredentials = repository.ErrWrongCredentials
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrSessionExpired   = errors.New("session expired")
)

type AuthRepository interface {
	Login(ctx context.Context, username, password string) (string, error)
	GetAdmin(ctx context.Context, token string) (domain.AdminProfile, error)
}

type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// AuthService owns the admin session: login, restore from the persisted
// token at startup, logout. The token is handed to callers explicitly and
// travels per request; there is no process-wide header default.
type AuthService struct {
	repo  AuthRepository
	store TokenStore
}

func NewAuthService(repo AuthRepository, store TokenStore) *AuthService {
	return &AuthService{
		repo:  repo,
		store: store,
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.AdminSession, error) {
	token, err := s.repo.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, repository.ErrWrongCredentials) {
			return domain.AdminSession{}, ErrWrongCredentials
		}

		return domain.AdminSession{}, fmt.Errorf("s.repo.Login -> %w", err)
	}

	user, err := s.repo.GetAdmin(ctx, token)
	if err != nil {
		return domain.AdminSession{}, fmt.Errorf("s.repo.GetAdmin -> %w", err)
	}

	if err = s.store.Set(localstate.KeyToken, token); err != nil {
		return domain.AdminSession{}, fmt.Errorf("s.store.Set -> %w", err)
	}

	return domain.AdminSession{
		Token: token,
		User:  user,
	}, nil
}

// Restore rebuilds the session from the persisted token. An expired or
// rejected token tears the stored session down and reports it expired.
func (s *AuthService) Restore(ctx context.Context) (domain.AdminSession, error) {
	token, err := s.store.Get(localstate.KeyToken)
	if err != nil {
		if errors.Is(err, localstate.ErrKeyNotFound) {
			return domain.AdminSession{}, ErrNotLoggedIn
		}

		return domain.AdminSession{}, fmt.Errorf("s.store.Get -> %w", err)
	}

	if tokenExpired(token) {
		_ = s.store.Delete(localstate.KeyToken)
		return domain.AdminSession{}, ErrSessionExpired
	}

	user, err := s.repo.GetAdmin(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrWrongCredentials) {
			_ = s.store.Delete(localstate.KeyToken)
			return domain.AdminSession{}, ErrSessionExpired
		}

		return domain.AdminSession{}, fmt.Errorf("s.repo.GetAdmin -> %w", err)
	}

	return domain.AdminSession{
		Token: token,
		User:  user,
	}, nil
}

func (s *AuthService) Logout(_ context.Context) error {
	if err := s.store.Delete(localstate.KeyToken); err != nil {
		return fmt.Errorf("s.store.Delete -> %w", err)
	}

	return nil
}

// tokenExpired inspects the stored token's exp claim without verifying
// the signature (verification is the server's job). Opaque tokens pass
// through and get validated by GET /auth/ instead.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}
