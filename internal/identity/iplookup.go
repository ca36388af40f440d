package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrIPLookupFailed = errors.New("could not resolve public IP address")

// IPLookup resolves the device's public network address via an external
// ipify-style endpoint.
type IPLookup struct {
	url        string
	httpClient *http.Client
}

func NewIPLookup(url string, timeout time.Duration) *IPLookup {
	return &IPLookup{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (l *IPLookup) Lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url+"?format=json", nil)
	if err != nil {
		return "", fmt.Errorf("http.NewRequestWithContext -> %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIPLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrIPLookupFailed, resp.StatusCode)
	}

	var payload struct {
		IP string `json:"ip"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.IP == "" {
		return "", fmt.Errorf("%w: malformed response", ErrIPLookupFailed)
	}

	return payload.IP, nil
}
