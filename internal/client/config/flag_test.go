package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "https://api.example.org", "-d", "other.db", "-i", "10", "-r", "3", "-t", "anchors.pem", "-f", "vaccination,recovery", "-l", "debug"},
			expected: &Config{
				APIBaseURL:            "https://api.example.org",
				DatabasePath:          "other.db",
				OnlineCheckInterval:   10 * time.Second,
				CredentialRenewalDays: 3,
				TrustAnchorsFile:      "anchors.pem",
				EventFlows:            []string{"vaccination", "recovery"},
				LogLevel:              "debug",
			},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"cmd", "-c", "conf.json", "-env", ".env.test", "-i", "2"},
			expected: &Config{OnlineCheckInterval: 2 * time.Second, EventFlows: []string{}},
		},
		{name: "incorrect check interval", args: []string{"cmd", "-i", "abc"}, expectPanic: true},
		{name: "incorrect renewal days", args: []string{"cmd", "-r", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
