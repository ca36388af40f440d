package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/chamada-app/chamadactl/internal/domain"
)

// Exit codes a locator command may use to report classified failures.
const (
	exitPermissionDenied    = 3
	exitPositionUnavailable = 4
)

// ExecProvider shells out to an external locator command which prints a
// single JSON object {"latitude": .., "longitude": ..} on success.
type ExecProvider struct {
	Command string
}

func (p *ExecProvider) Acquire(ctx context.Context) (domain.Coordinates, error) {
	parts := strings.Fields(p.Command)
	if len(parts) == 0 {
		return domain.Coordinates{}, ErrUnsupported
	}

	out, err := exec.CommandContext(ctx, parts[0], parts[1:]...).Output()
	if err != nil {
		return domain.Coordinates{}, classifyExecErr(ctx, err)
	}

	var fix struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err = json.Unmarshal(out, &fix); err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: malformed locator output", ErrPositionUnavailable)
	}

	return domain.Coordinates{
		Latitude:  fix.Latitude,
		Longitude: fix.Longitude,
	}, nil
}

func classifyExecErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return context.DeadlineExceeded
	}

	if errors.Is(err, exec.ErrNotFound) {
		return ErrUnsupported
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case exitPermissionDenied:
			return ErrPermissionDenied
		case exitPositionUnavailable:
			return ErrPositionUnavailable
		}
	}

	return fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
}

// StaticProvider always reports the same fix. Useful for fixed kiosks and
// tests.
type StaticProvider struct {
	Coordinates domain.Coordinates
}

func (p *StaticProvider) Acquire(_ context.Context) (domain.Coordinates, error) {
	return p.Coordinates, nil
}
