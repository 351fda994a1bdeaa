package models

import (
	"strings"
	"time"
)

// RemoteConfiguration is the signed configuration served by the holder API.
type RemoteConfiguration struct {
	ConfigTTL              int        `json:"configTTL"`
	CredentialRenewalDays  *int       `json:"credentialRenewalDays,omitempty"`
	ArchiveOnlyDate        *time.Time `json:"archiveOnlyDate,omitempty"`
	BackendTLSCertificates []string   `json:"backendTLSCertificates,omitempty"`
	Providers              []Provider `json:"providers,omitempty"`
}

// IsArchiveMode reports whether the wallet has reached its archive-only date.
func (c *RemoteConfiguration) IsArchiveMode(now time.Time) bool {
	if c == nil || c.ArchiveOnlyDate == nil {
		return false
	}
	return !now.Before(*c.ArchiveOnlyDate)
}

// RenewalDays returns the configured renewal threshold or fallback.
func (c *RemoteConfiguration) RenewalDays(fallback int) int {
	if c == nil || c.CredentialRenewalDays == nil {
		return fallback
	}
	return *c.CredentialRenewalDays
}

// FindProvider looks a provider up by identifier, case-insensitively.
func (c *RemoteConfiguration) FindProvider(identifier string) (Provider, bool) {
	if c == nil {
		return Provider{}, false
	}
	for _, p := range c.Providers {
		if strings.EqualFold(p.Identifier, identifier) {
			return p, true
		}
	}
	return Provider{}, false
}
