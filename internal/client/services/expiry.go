package services

import (
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
)

type ExpiryStateKind int

const (
	NoActionNeeded ExpiryStateKind = iota
	Expiring
	Expired
)

func (k ExpiryStateKind) String() string {
	switch k {
	case NoActionNeeded:
		return "noActionNeeded"
	case Expiring:
		return "expiring"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// CredentialExpiryState says whether the wallet needs fresh credentials.
// Deadline is set for Expiring only.
type CredentialExpiryState struct {
	Kind     ExpiryStateKind
	Deadline time.Time
}

func (s CredentialExpiryState) Equal(o CredentialExpiryState) bool {
	return s.Kind == o.Kind && s.Deadline.Equal(o.Deadline)
}

const day = 24 * time.Hour

// credentialExpiryState derives the expiry state of cards at now. Cards
// without credentials count as expired once one of their origins is valid
// within threshold days; cards whose origins outlive their credentials are
// judged on their last credential.
func credentialExpiryState(cards []models.GreenCard, now time.Time, thresholdDays int) CredentialExpiryState {
	var (
		expired  int
		expiring []time.Time
	)
	horizon := now.Add(time.Duration(thresholdDays) * day)

	for _, gc := range cards {
		latestCredential, hasCredentials := gc.LatestCredentialExpiry()
		if !hasCredentials {
			for _, o := range gc.Origins {
				if o.ExpirationTime.After(now) && !o.ValidFrom.After(horizon) {
					expired++
					break
				}
			}
			continue
		}

		lastOrigin, ok := gc.LastExpiringOrigin()
		if !ok || !latestCredential.Before(lastOrigin.ExpirationTime) {
			// nothing more to fetch
			continue
		}

		daysLeft := int(latestCredential.Sub(now) / day)
		switch {
		case daysLeft > thresholdDays:
		case daysLeft <= 0:
			expired++
		default:
			expiring = append(expiring, latestCredential)
		}
	}

	switch {
	case expired > 0:
		return CredentialExpiryState{Kind: Expired}
	case len(expiring) > 0:
		earliest := expiring[0]
		for _, t := range expiring[1:] {
			if t.Before(earliest) {
				earliest = t
			}
		}
		return CredentialExpiryState{Kind: Expiring, Deadline: earliest}
	}
	return CredentialExpiryState{Kind: NoActionNeeded}
}
