// Package cryptolib is the boundary to the anonymous-credential library.
//
// The blind-signature primitives (secret key generation, commitment messages,
// credential construction and attribute disclosure) live in a native library;
// this package only fixes the interface the wallet consumes and the shape of
// the attributes it reads back.
package cryptolib

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
)

var ErrUnavailable = errors.New("credential library unavailable")

// Library is implemented by bindings to the credential library. A nil
// result together with a nil error is treated as a failure by callers.
type Library interface {
	GenerateSecretKey() ([]byte, error)
	GenerateCommitmentMessage(nonce, secretKey []byte) (string, error)
	// CreateCredentials turns the issuer's create-credential messages into a
	// JSON array of DomesticCredential.
	CreateCredentials(secretKey, createCredentialMessages []byte) ([]byte, error)
	ReadEuCredentials(data []byte) (*EuCredentialAttributes, error)
	ReadDomesticCredentials(data []byte) (*DomesticCredentialAttributes, error)
}

// DomesticCredential is one element of the CreateCredentials result.
type DomesticCredential struct {
	Credential []byte                       `json:"credential"`
	Attributes DomesticCredentialAttributes `json:"attributes"`
}

type DomesticCredentialAttributes struct {
	CredentialVersion int    `json:"credentialVersion,string"`
	ValidFrom         int64  `json:"validFrom,string"`
	ValidForHours     int64  `json:"validForHours,string"`
	IsSpecimen        string `json:"isSpecimen"`
	IsPaperProof      string `json:"isPaperProof"`
	FirstNameInitial  string `json:"firstNameInitial"`
	LastNameInitial   string `json:"lastNameInitial"`
	BirthDay          string `json:"birthDay"`
	BirthMonth        string `json:"birthMonth"`
}

func (a DomesticCredentialAttributes) ValidFromTime() time.Time {
	return time.Unix(a.ValidFrom, 0).UTC()
}

func (a DomesticCredentialAttributes) ExpirationTime() time.Time {
	return a.ValidFromTime().Add(time.Duration(a.ValidForHours) * time.Hour)
}

// EuCredentialAttributes are the readable fields of a digital covid
// certificate. Times are unix seconds.
type EuCredentialAttributes struct {
	CredentialVersion       int                     `json:"credentialVersion"`
	DigitalCovidCertificate DigitalCovidCertificate `json:"dcc"`
	ExpirationTime          float64                 `json:"expirationTime"`
	IssuedAt                float64                 `json:"issuedAt"`
	Issuer                  string                  `json:"issuer"`
}

func (a EuCredentialAttributes) IssuedAtTime() time.Time {
	return unixSeconds(a.IssuedAt)
}

func (a EuCredentialAttributes) ExpirationTimeTime() time.Time {
	return unixSeconds(a.ExpirationTime)
}

// EventMode reports the kind of event the certificate covers.
func (a EuCredentialAttributes) EventMode() (models.EventMode, bool) {
	dcc := a.DigitalCovidCertificate
	switch {
	case len(dcc.Vaccinations) > 0:
		return models.EventModeVaccination, true
	case len(dcc.Recoveries) > 0:
		return models.EventModeRecovery, true
	case len(dcc.Tests) > 0:
		return models.EventModeTest, true
	}
	return "", false
}

// EventDate returns the date of the first covered event.
func (a EuCredentialAttributes) EventDate() (time.Time, bool) {
	dcc := a.DigitalCovidCertificate
	switch {
	case len(dcc.Vaccinations) > 0:
		return models.ParseEventDate(dcc.Vaccinations[0].DateOfVaccination)
	case len(dcc.Recoveries) > 0:
		return models.ParseEventDate(dcc.Recoveries[0].FirstPositiveTestDate)
	case len(dcc.Tests) > 0:
		return models.ParseEventDate(dcc.Tests[0].SampleDate)
	}
	return time.Time{}, false
}

type DigitalCovidCertificate struct {
	DateOfBirth  string           `json:"dob"`
	Name         DCCName          `json:"nam"`
	Vaccinations []DCCVaccination `json:"v,omitempty"`
	Tests        []DCCTest        `json:"t,omitempty"`
	Recoveries   []DCCRecovery    `json:"r,omitempty"`
	Version      string           `json:"ver"`
}

type DCCName struct {
	FamilyName string `json:"fn"`
	GivenName  string `json:"gn"`
}

type DCCVaccination struct {
	DateOfVaccination string `json:"dt"`
	DoseNumber        int    `json:"dn"`
	TotalDoses        int    `json:"sd"`
	Country           string `json:"co"`
}

type DCCTest struct {
	SampleDate string `json:"sc"`
	TestType   string `json:"tt"`
	Country    string `json:"co"`
}

type DCCRecovery struct {
	FirstPositiveTestDate string `json:"fr"`
	ValidFrom             string `json:"df"`
	ValidUntil            string `json:"du"`
	Country               string `json:"co"`
}

func unixSeconds(v float64) time.Time {
	sec := int64(v)
	nsec := int64((v - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
