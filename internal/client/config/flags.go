package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-i", "-r", "-t", "-f", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   holder API base URL
//	-d string   database file, relative to the data directory
//	-i int      online check interval (in seconds)
//	-r int      credential renewal threshold (in days)
//	-t string   PEM bundle of trust anchors
//	-f string   comma separated event flows
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// stages do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "holder API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "database file")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.IntVar(&cfg.CredentialRenewalDays, "r", cfg.CredentialRenewalDays, "credential renewal threshold (in days)")
	fs.StringVar(&cfg.TrustAnchorsFile, "t", cfg.TrustAnchorsFile, "PEM bundle of trust anchors")
	flows := fs.String("f", strings.Join(cfg.EventFlows, ","), "comma separated event flows")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.EventFlows = splitList(*flows)
}
