package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/chamada-app/chamadactl/internal/domain"
)

// FingerprintStrategy asks the fingerprint service for a visitor
// identifier. It is requested fresh on every run (ignoreCache); a failure
// here is a hard precondition failure for submission, not something to
// paper over with a locally generated value.
type FingerprintStrategy struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewFingerprintStrategy(url, apiKey string, timeout time.Duration) *FingerprintStrategy {
	return &FingerprintStrategy{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *FingerprintStrategy) Resolve(ctx context.Context) (domain.DeviceIdentity, error) {
	hostname, _ := os.Hostname()
	traits := struct {
		Hostname string `json:"hostname"`
		OS       string `json:"os"`
		Arch     string `json:"arch"`
	}{
		Hostname: hostname,
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
	}

	body, err := json.Marshal(traits)
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("json.Marshal -> %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"?ignoreCache=true", bytes.NewReader(body))
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Auth-API-Key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("%w: %v", ErrFingerprintUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.DeviceIdentity{}, fmt.Errorf("%w: status %d", ErrFingerprintUnavailable, resp.StatusCode)
	}

	var payload struct {
		VisitorID string `json:"visitorId"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.VisitorID == "" {
		return domain.DeviceIdentity{}, fmt.Errorf("%w: malformed response", ErrFingerprintUnavailable)
	}

	return domain.DeviceIdentity{
		Value:    payload.VisitorID,
		Strategy: domain.StrategyFingerprint,
	}, nil
}
