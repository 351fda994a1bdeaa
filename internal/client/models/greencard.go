package models

import "time"

type GreenCard struct {
	ID          string
	WalletID    string
	Type        GreenCardType
	Origins     []Origin
	Credentials []Credential
}

type Origin struct {
	ID             string
	GreenCardID    string
	Type           OriginType
	EventDate      time.Time
	ValidFrom      time.Time
	ExpirationTime time.Time
	DoseNumber     *int
	Hints          []string
}

type Credential struct {
	ID             string
	GreenCardID    string
	Data           []byte
	ValidFrom      time.Time
	ExpirationTime time.Time
	Version        int
}

// IsValid reports whether now lies in [ValidFrom, ExpirationTime).
func (o Origin) IsValid(now time.Time) bool {
	return !now.Before(o.ValidFrom) && now.Before(o.ExpirationTime)
}

func (c Credential) IsValid(now time.Time) bool {
	return !now.Before(c.ValidFrom) && now.Before(c.ExpirationTime)
}

// HasUnexpiredOrigin reports whether any origin (of one of types, when
// given) expires after now.
func (g GreenCard) HasUnexpiredOrigin(now time.Time, types ...OriginType) bool {
	for _, o := range g.Origins {
		if len(types) > 0 && !containsOriginType(types, o.Type) {
			continue
		}
		if o.ExpirationTime.After(now) {
			return true
		}
	}
	return false
}

// LastExpiringOrigin returns the origin with the latest expiration time.
func (g GreenCard) LastExpiringOrigin() (Origin, bool) {
	var (
		last  Origin
		found bool
	)
	for _, o := range g.Origins {
		if !found || o.ExpirationTime.After(last.ExpirationTime) {
			last, found = o, true
		}
	}
	return last, found
}

// LatestCredentialExpiry returns the latest credential expiration time.
func (g GreenCard) LatestCredentialExpiry() (time.Time, bool) {
	var (
		latest time.Time
		found  bool
	)
	for _, c := range g.Credentials {
		if !found || c.ExpirationTime.After(latest) {
			latest, found = c.ExpirationTime, true
		}
	}
	return latest, found
}

// ActiveCredential returns a credential valid at now, preferring the one
// that expires last.
func (g GreenCard) ActiveCredential(now time.Time) (Credential, bool) {
	var (
		best  Credential
		found bool
	)
	for _, c := range g.Credentials {
		if !c.IsValid(now) {
			continue
		}
		if !found || c.ExpirationTime.After(best.ExpirationTime) {
			best, found = c, true
		}
	}
	return best, found
}

func containsOriginType(types []OriginType, t OriginType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}
