package config

import "time"

// Config holds runtime settings of the wallet daemon.
type Config struct {
	DataDir      string
	DatabasePath string

	APIBaseURL  string
	HTTPTimeout time.Duration

	CredentialRenewalDays   int
	ForegroundRetryCooldown time.Duration

	OnlineCheckInterval time.Duration
	OfflineMaxBackoff   time.Duration

	TrustAnchorsFile string
	EventFlows       []string

	LogLevel   string
	Passphrase string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = ".greenwallet"
	c.DatabasePath = "wallet.db"
	c.APIBaseURL = "https://holder-api.example.org/v8"
	c.HTTPTimeout = 30 * time.Second
	c.CredentialRenewalDays = 5
	c.ForegroundRetryCooldown = 10 * time.Minute
	c.OnlineCheckInterval = 3 * time.Second
	c.OfflineMaxBackoff = time.Minute
	c.TrustAnchorsFile = ""
	c.EventFlows = []string{}
	c.LogLevel = "info"
	c.Passphrase = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, JSON (if present) and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
