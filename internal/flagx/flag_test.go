package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value",
			args:         []string{"-c", "conf.json", "-db", "wallet.db"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "equals form",
			args:         []string{"-config=alt.json", "-db", "wallet.db"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "-y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag followed by another flag keeps no value",
			args:         []string{"-c", "-threshold", "5"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "trailing flag without value",
			args:         []string{"-env"},
			allowedFlags: []string{"-env"},
			want:         []string{"-env"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })
	os.Args = append([]string{"wallet"}, args...)
}

func TestJsonConfigFlags(t *testing.T) {
	withArgs(t, "-api", "https://example.org", "-c", "wallet.json")
	assert.Equal(t, "wallet.json", JsonConfigFlags())

	withArgs(t, "-config=other.json")
	assert.Equal(t, "other.json", JsonConfigFlags())

	withArgs(t, "-api", "https://example.org")
	assert.Equal(t, "", JsonConfigFlags())
}

func TestEnvFileFlags(t *testing.T) {
	withArgs(t, "-env", "prod.env", "-c", "wallet.json")
	assert.Equal(t, "prod.env", EnvFileFlags())

	withArgs(t)
	assert.Equal(t, "", EnvFileFlags())
}
