package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "GREENWALLET_"

// parseEnv loads a dotenv file into the process environment and overlays
// Config with the GREENWALLET_* variables that are set.
//
// The dotenv file is the one given with -env, or ./.env when present.
// Variables already in the environment win over the file. Panics on an
// unreadable -env file or an unparsable value.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString("DATA_DIR", &cfg.DataDir)
	envString("DATABASE_PATH", &cfg.DatabasePath)
	envString("API_BASE_URL", &cfg.APIBaseURL)
	envDuration("HTTP_TIMEOUT", &cfg.HTTPTimeout)
	envInt("CREDENTIAL_RENEWAL_DAYS", &cfg.CredentialRenewalDays)
	envDuration("FOREGROUND_RETRY_COOLDOWN", &cfg.ForegroundRetryCooldown)
	envDuration("ONLINE_CHECK_INTERVAL", &cfg.OnlineCheckInterval)
	envDuration("OFFLINE_MAX_BACKOFF", &cfg.OfflineMaxBackoff)
	envString("TRUST_ANCHORS_FILE", &cfg.TrustAnchorsFile)
	if v, ok := os.LookupEnv(envPrefix + "EVENT_FLOWS"); ok {
		cfg.EventFlows = splitList(v)
	}
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("PASSPHRASE", &cfg.Passphrase)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}

func envDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
