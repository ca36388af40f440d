package geolocation

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chamada-app/chamadactl/internal/domain"
)

func locatorScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("locator scripts are POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "locator.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	return path
}

func TestExecProviderParsesFix(t *testing.T) {
	script := locatorScript(t, `echo '{"latitude": -23.55, "longitude": -46.63}'`)
	provider := &ExecProvider{Command: script}

	coords, err := provider.Acquire(context.Background())

	require.NoError(t, err)
	assert.Equal(t, -23.55, coords.Latitude)
	assert.Equal(t, -46.63, coords.Longitude)
}

func TestExecProviderPermissionDenied(t *testing.T) {
	script := locatorScript(t, "exit 3")
	provider := &ExecProvider{Command: script}

	_, err := provider.Acquire(context.Background())

	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestExecProviderPositionUnavailable(t *testing.T) {
	script := locatorScript(t, "exit 4")
	provider := &ExecProvider{Command: script}

	_, err := provider.Acquire(context.Background())

	assert.ErrorIs(t, err, ErrPositionUnavailable)
}

func TestExecProviderMalformedOutput(t *testing.T) {
	script := locatorScript(t, "echo not-json")
	provider := &ExecProvider{Command: script}

	_, err := provider.Acquire(context.Background())

	assert.ErrorIs(t, err, ErrPositionUnavailable)
}

func TestExecProviderEmptyCommand(t *testing.T) {
	provider := &ExecProvider{}

	_, err := provider.Acquire(context.Background())

	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestStaticProvider(t *testing.T) {
	provider := &StaticProvider{Coordinates: domain.Coordinates{Latitude: 1, Longitude: 2}}

	coords, err := provider.Acquire(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1.0, coords.Latitude)
	assert.Equal(t, 2.0, coords.Longitude)
}
