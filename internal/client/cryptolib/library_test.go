package cryptolib

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomesticCredential_Decode(t *testing.T) {
	raw := `[{"credential":"Y3JlZA==","attributes":{"credentialVersion":"2","validFrom":"1625140800","validForHours":"24","isSpecimen":"0","isPaperProof":"0"}}]`

	var creds []DomesticCredential
	require.NoError(t, json.Unmarshal([]byte(raw), &creds))
	require.Len(t, creds, 1)

	c := creds[0]
	assert.Equal(t, []byte("cred"), c.Credential)
	assert.Equal(t, 2, c.Attributes.CredentialVersion)
	assert.Equal(t, time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC), c.Attributes.ValidFromTime())
	assert.Equal(t, time.Date(2021, 7, 2, 12, 0, 0, 0, time.UTC), c.Attributes.ExpirationTime())
}

func TestEuCredentialAttributes_EventModeAndDate(t *testing.T) {
	tests := []struct {
		name     string
		dcc      DigitalCovidCertificate
		wantMode models.EventMode
		wantDate time.Time
		ok       bool
	}{
		{
			name:     "vaccination",
			dcc:      DigitalCovidCertificate{Vaccinations: []DCCVaccination{{DateOfVaccination: "2021-06-01"}}},
			wantMode: models.EventModeVaccination,
			wantDate: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "recovery",
			dcc:      DigitalCovidCertificate{Recoveries: []DCCRecovery{{FirstPositiveTestDate: "2021-05-01"}}},
			wantMode: models.EventModeRecovery,
			wantDate: time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "test",
			dcc:      DigitalCovidCertificate{Tests: []DCCTest{{SampleDate: "2021-07-01T10:00:00Z"}}},
			wantMode: models.EventModeTest,
			wantDate: time.Date(2021, 7, 1, 10, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{name: "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := EuCredentialAttributes{DigitalCovidCertificate: tt.dcc}

			mode, ok := attrs.EventMode()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.wantMode, mode)

			date, ok := attrs.EventDate()
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.wantDate.Equal(date))
		})
	}
}

func TestEuCredentialAttributes_Times(t *testing.T) {
	attrs := EuCredentialAttributes{IssuedAt: 1625140800, ExpirationTime: 1625140800.5}
	assert.Equal(t, time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC), attrs.IssuedAtTime())
	assert.Equal(t, 500*time.Millisecond, attrs.ExpirationTimeTime().Sub(attrs.IssuedAtTime()))
}

func TestUnavailable(t *testing.T) {
	var lib Library = Unavailable{}

	_, err := lib.GenerateSecretKey()
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = lib.GenerateCommitmentMessage(nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = lib.CreateCredentials(nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = lib.ReadEuCredentials(nil)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = lib.ReadDomesticCredentials(nil)
	require.ErrorIs(t, err, ErrUnavailable)
}
