package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/repository/rest"
)

var ErrWrongCredentials = errors.New("wrong credentials")

type AuthClient interface {
	Login(ctx context.Context, username, password string) (string, error)
	GetAdmin(ctx context.Context, token string) (rest.AdminPayload, error)
}

type AuthRepository struct {
	client AuthClient
}

func NewAuthRepository(client AuthClient) *AuthRepository {
	return &AuthRepository{
		client: client,
	}
}

func (r *AuthRepository) Login(ctx context.Context, username, password string) (string, error) {
	token, err := r.client.Login(ctx, username, password)
	if err != nil {
		var serverErr *rest.ServerError
		if errors.As(err, &serverErr) && (serverErr.Status == http.StatusUnauthorized || serverErr.Status == http.StatusForbidden) {
			return "", ErrWrongCredentials
		}

		return "", fmt.Errorf("r.client.Login -> %w", err)
	}

	return token, nil
}

func (r *AuthRepository) GetAdmin(ctx context.Context, token string) (domain.AdminProfile, error) {
	payload, err := r.client.GetAdmin(ctx, token)
	if err != nil {
		var serverErr *rest.ServerError
		if errors.As(err, &serverErr) && serverErr.Status == http.StatusUnauthorized {
			return domain.AdminProfile{}, ErrWrongCredentials
		}

		return domain.AdminProfile{}, fmt.Errorf("r.client.GetAdmin -> %w", err)
	}

	return domain.AdminProfile{
		ID:       payload.ID,
		Username: payload.Username,
		Name:     payload.Name,
	}, nil
}
