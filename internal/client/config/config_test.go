package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ".greenwallet", c.DataDir)
	assert.Equal(t, "wallet.db", c.DatabasePath)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout)
	assert.Equal(t, 5, c.CredentialRenewalDays)
	assert.Equal(t, 10*time.Minute, c.ForegroundRetryCooldown)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, time.Minute, c.OfflineMaxBackoff)
	assert.Equal(t, []string{}, c.EventFlows)
	assert.Equal(t, "info", c.LogLevel)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Chdir(t.TempDir())
	t.Setenv("GREENWALLET_API_BASE_URL", "https://env.example.org")
	t.Setenv("GREENWALLET_CREDENTIAL_RENEWAL_DAYS", "7")
	t.Setenv("GREENWALLET_LOG_LEVEL", "warn")

	path := writeTempJSON(t, "", "", map[string]any{
		"credential_renewal_days": 9,
		"log_level":               "debug",
	})
	os.Args = []string{"wallet", "-c", path, "-l", "error"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, "https://env.example.org", cfg.APIBaseURL)
	assert.Equal(t, 9, cfg.CredentialRenewalDays)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "wallet.db", cfg.DatabasePath)
}
