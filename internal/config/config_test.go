package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `app:
  environment: development
  frontend_base_url: https://front.example
backend:
  base_url: https://api.example
  timeout: 15s
location:
  provider: exec
  locator_command: locate-me --json
  timeout: 10s
  fallback_timeout: 15s
identity:
  strategy: fingerprint
local_state:
  path: /tmp/chamadactl.db
ip_lookup:
  url: https://api.ipify.org
  timeout: 5s
fingerprint:
  url: https://fp.example/identify
  api_key: key-1
  timeout: 5s
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))

	conf, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "development", conf.App.Environment)
	assert.Equal(t, "https://front.example", conf.App.FrontendBaseURL)
	assert.Equal(t, "https://api.example", conf.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, conf.Backend.Timeout)
	assert.Equal(t, "exec", conf.Location.Provider)
	assert.Equal(t, "locate-me --json", conf.Location.LocatorCommand)
	assert.Equal(t, 15*time.Second, conf.Location.FallbackTimeout)
	assert.Equal(t, "fingerprint", conf.Identity.Strategy)
	assert.Equal(t, "/tmp/chamadactl.db", conf.LocalState.Path)
	assert.Equal(t, "https://api.ipify.org", conf.IPLookup.URL)
	assert.Equal(t, "key-1", conf.Fingerprint.APIKey)
}

func TestLoadReturnsImmutableSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))

	conf, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "exec", conf.Location.Provider)

	// Editing the file on disk must not mutate the snapshot a running
	// command already holds.
	edited := strings.Replace(testConfigYAML, "provider: exec", "provider: static", 1)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o600))
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, "exec", conf.Location.Provider)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

	assert.Error(t, err)
}
