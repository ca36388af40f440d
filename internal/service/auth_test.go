package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamada-app/chamadactl/internal/domain"
	"github.com/chamada-app/chamadactl/internal/localstate"
	"github.com/chamada-app/chamadactl/internal/repository"
)

type fakeAuthRepo struct {
	loginToken string
	loginErr   error
	admin      domain.AdminProfile
	adminErr   error
	adminCalls int
}

func (r *fakeAuthRepo) Login(_ context.Context, _, _ string) (string, error) {
	return r.loginToken, r.loginErr
}

func (r *fakeAuthRepo) GetAdmin(_ context.Context, _ string) (domain.AdminProfile, error) {
	r.adminCalls++

	return r.admin, r.adminErr
}

type memTokenStore struct {
	entries map[string]string
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{entries: map[string]string{}}
}

func (s *memTokenStore) Get(key string) (string, error) {
	value, ok := s.entries[key]
	if !ok {
		return "", localstate.ErrKeyNotFound
	}

	return value, nil
}

func (s *memTokenStore) Set(key, value string) error {
	s.entries[key] = value

	return nil
}

func (s *memTokenStore) Delete(key string) error {
	delete(s.entries, key)

	return nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func TestAuthLoginPersistsToken(t *testing.T) {
	repo := &fakeAuthRepo{
		loginToken: "tok-123",
		admin:      domain.AdminProfile{ID: "admin-1", Username: "admin", Name: "Admin da Silva"},
	}
	store := newMemTokenStore()
	svc := NewAuthService(repo, store)

	session, err := svc.Login(context.Background(), "admin", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "tok-123", session.Token)
	assert.Equal(t, "admin", session.User.Username)
	assert.Equal(t, "tok-123", store.entries[localstate.KeyToken])
}

func TestAuthLoginWrongCredentials(t *testing.T) {
	repo := &fakeAuthRepo{loginErr: repository.ErrWrongCredentials}
	store := newMemTokenStore()
	svc := NewAuthService(repo, store)

	_, err := svc.Login(context.Background(), "admin", "wrong")

	assert.ErrorIs(t, err, ErrWrongCredentials)
	assert.Empty(t, store.entries)
}

func TestAuthRestoreWithoutToken(t *testing.T) {
	svc := NewAuthService(&fakeAuthRepo{}, newMemTokenStore())

	_, err := svc.Restore(context.Background())

	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAuthRestoreValidToken(t *testing.T) {
	repo := &fakeAuthRepo{admin: domain.AdminProfile{Username: "admin"}}
	store := newMemTokenStore()
	token := signedToken(t, time.Now().Add(time.Hour))
	store.entries[localstate.KeyToken] = token
	svc := NewAuthService(repo, store)

	session, err := svc.Restore(context.Background())

	require.NoError(t, err)
	assert.Equal(t, token, session.Token)
	assert.Equal(t, "admin", session.User.Username)
}

func TestAuthRestoreExpiredTokenSkipsNetwork(t *testing.T) {
	repo := &fakeAuthRepo{admin: domain.AdminProfile{Username: "admin"}}
	store := newMemTokenStore()
	store.entries[localstate.KeyToken] = signedToken(t, time.Now().Add(-time.Hour))
	svc := NewAuthService(repo, store)

	_, err := svc.Restore(context.Background())

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Zero(t, repo.adminCalls)
	assert.Empty(t, store.entries)
}

func TestAuthRestoreRejectedTokenTearsDown(t *testing.T) {
	repo := &fakeAuthRepo{adminErr: repository.ErrWrongCredentials}
	store := newMemTokenStore()
	store.entries[localstate.KeyToken] = "opaque-but-revoked"
	svc := NewAuthService(repo, store)

	_, err := svc.Restore(context.Background())

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, store.entries)
}

func TestAuthRestoreOpaqueTokenValidatedRemotely(t *testing.T) {
	repo := &fakeAuthRepo{admin: domain.AdminProfile{Username: "admin"}}
	store := newMemTokenStore()
	store.entries[localstate.KeyToken] = "opaque-token"
	svc := NewAuthService(repo, store)

	session, err := svc.Restore(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "opaque-token", session.Token)
	assert.Equal(t, 1, repo.adminCalls)
}

func TestAuthLogout(t *testing.T) {
	store := newMemTokenStore()
	store.entries[localstate.KeyToken] = "tok-123"
	svc := NewAuthService(&fakeAuthRepo{}, store)

	require.NoError(t, svc.Logout(context.Background()))
	assert.Empty(t, store.entries)
}
