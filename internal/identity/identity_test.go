package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamada-app/chamadactl/internal/domain"
)

type memKV struct {
	entries map[string]string
}

func (s *memKV) SetIfAbsent(key, value string) (string, error) {
	if existing, ok := s.entries[key]; ok {
		return existing, nil
	}
	s.entries[key] = value

	return value, nil
}

func TestGeneratedStrategyStableAcrossResolves(t *testing.T) {
	store := &memKV{entries: map[string]string{}}
	strategy := NewGeneratedStrategy(store, "uuid")

	first, err := strategy.Resolve(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first.Value)
	assert.Equal(t, domain.StrategyGenerated, first.Strategy)

	second, err := strategy.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Value, second.Value)

	// A fresh strategy over the same store models a restart.
	third, err := NewGeneratedStrategy(store, "uuid").Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Value, third.Value)
}

func TestFingerprintStrategyResolve(t *testing.T) {
	var gotKey, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Auth-API-Key")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"visitorId":"fp-abc"}`))
	}))
	defer server.Close()

	strategy := NewFingerprintStrategy(server.URL, "key-1", time.Second)

	identity, err := strategy.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fp-abc", identity.Value)
	assert.Equal(t, domain.StrategyFingerprint, identity.Strategy)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "ignoreCache=true", gotQuery)
}

func TestFingerprintStrategyServiceDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	strategy := NewFingerprintStrategy(server.URL, "", time.Second)

	_, err := strategy.Resolve(context.Background())

	assert.ErrorIs(t, err, ErrFingerprintUnavailable)
}

func TestFingerprintStrategyEmptyVisitorID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"visitorId":""}`))
	}))
	defer server.Close()

	strategy := NewFingerprintStrategy(server.URL, "", time.Second)

	_, err := strategy.Resolve(context.Background())

	assert.ErrorIs(t, err, ErrFingerprintUnavailable)
}

func TestIPLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "format=json", r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"ip":"200.1.2.3"}`))
	}))
	defer server.Close()

	lookup := NewIPLookup(server.URL, time.Second)

	ip, err := lookup.Lookup(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "200.1.2.3", ip)
}

func TestIPLookupBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	lookup := NewIPLookup(server.URL, time.Second)

	_, err := lookup.Lookup(context.Background())

	assert.ErrorIs(t, err, ErrIPLookupFailed)
}
