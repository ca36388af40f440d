package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	App         *APPConfig         `mapstructure:"app"`
	Backend     *BackendConfig     `mapstructure:"backend"`
	Location    *LocationConfig    `mapstructure:"location"`
	Identity    *IdentityConfig    `mapstructure:"identity"`
	LocalState  *LocalStateConfig  `mapstructure:"local_state"`
	IPLookup    *IPLookupConfig    `mapstructure:"ip_lookup"`
	Fingerprint *FingerprintConfig `mapstructure:"fingerprint"`
}

type APPConfig struct {
	Environment string `mapstructure:"environment"`
	// FrontendBaseURL is used to render attendee share links.
	FrontendBaseURL string `mapstructure:"frontend_base_url"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LocationConfig struct {
	// Provider selects how a fix is acquired: "exec" runs LocatorCommand,
	// "static" returns the fixed coordinates below, "none" reports the
	// capability as unsupported.
	Provider       string        `mapstructure:"provider"`
	LocatorCommand string        `mapstructure:"locator_command"`
	Timeout        time.Duration `mapstructure:"timeout"`
	// FallbackTimeout is the client-enforced cap armed independently of the
	// provider's own timeout.
	FallbackTimeout time.Duration `mapstructure:"fallback_timeout"`
	StaticLatitude  float64       `mapstructure:"static_latitude"`
	StaticLongitude float64       `mapstructure:"static_longitude"`
}

type IdentityConfig struct {
	// Strategy is "fingerprint" or "generated".
	Strategy string `mapstructure:"strategy"`
}

type LocalStateConfig struct {
	Path string `mapstructure:"path"`
}

type IPLookupConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type FingerprintConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads the config file once and returns an immutable snapshot. The
// watcher only reports edits; mutating the snapshot a running command
// reads would race, so changes apply on the next invocation.
func Load(configPath string) (*AppConfig, error) {
	conf := &AppConfig{}

	viper.SetConfigFile(configPath)
	viper.SetEnvPrefix("CHAMADA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Info("config file changed; restart to apply", zap.String("file", e.Name))
	})

	return conf, nil
}
