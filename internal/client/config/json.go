package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/greenwallet/internal/flagx"
	"github.com/dmitrijs2005/greenwallet/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// fields leave the Config untouched.
type JsonConfig struct {
	DataDir                 *string         `json:"data_dir"`
	DatabasePath            *string         `json:"database_path"`
	APIBaseURL              *string         `json:"api_base_url"`
	HTTPTimeout             *timex.Duration `json:"http_timeout"`
	CredentialRenewalDays   *int            `json:"credential_renewal_days"`
	ForegroundRetryCooldown *timex.Duration `json:"foreground_retry_cooldown"`
	OnlineCheckInterval     *timex.Duration `json:"online_check_interval"`
	OfflineMaxBackoff       *timex.Duration `json:"offline_max_backoff"`
	TrustAnchorsFile        *string         `json:"trust_anchors_file"`
	EventFlows              []string        `json:"event_flows"`
	LogLevel                *string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file given
// with -c or -config. Without one it does nothing. Panics on read or
// unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	if jc.CredentialRenewalDays != nil {
		cfg.CredentialRenewalDays = *jc.CredentialRenewalDays
	}
	if jc.ForegroundRetryCooldown != nil {
		cfg.ForegroundRetryCooldown = jc.ForegroundRetryCooldown.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.OfflineMaxBackoff != nil {
		cfg.OfflineMaxBackoff = jc.OfflineMaxBackoff.Duration
	}
	setString(&cfg.TrustAnchorsFile, jc.TrustAnchorsFile)
	if jc.EventFlows != nil {
		cfg.EventFlows = jc.EventFlows
	}
	setString(&cfg.LogLevel, jc.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
