package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2021-06-01", time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"2021-06-01T10:30:00", time.Date(2021, 6, 1, 10, 30, 0, 0, time.UTC), true},
		{"2021-06-01T10:30:00Z", time.Date(2021, 6, 1, 10, 30, 0, 0, time.UTC), true},
		{"  ", time.Time{}, false},
		{"01/06/2021", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseEventDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
	}
}

func TestEvent_SortDatePrecedence(t *testing.T) {
	raw := `{
		"providerIdentifier": "CC",
		"protocolVersion": "3.0",
		"status": "complete",
		"holder": {"firstName": "Corrie", "lastName": "van Geer", "birthDate": "1960-01-01"},
		"events": [
			{"type": "vaccination", "unique": "1", "vaccination": {"date": "2021-06-01", "doseNumber": "1"}},
			{"type": "negativetest", "unique": "2", "negativetest": {"sampleDate": "2021-07-02T10:00:00Z"}},
			{"type": "positivetest", "unique": "3", "positivetest": {"sampleDate": "2021-05-01T09:00:00Z"}},
			{"type": "vaccinationassessment", "unique": "4", "vaccinationassessment": {"assessmentDate": "2021-08-01T00:00:00Z"}},
			{"type": "unknown", "unique": "5"}
		]
	}`

	var wrapper EventResult
	require.NoError(t, json.Unmarshal([]byte(raw), &wrapper))
	require.Len(t, wrapper.Events, 5)
	assert.Equal(t, "van Geer", wrapper.Holder.LastName)

	d, ok := wrapper.Events[0].SortDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), d)

	d, ok = wrapper.Events[1].SortDate()
	require.True(t, ok)
	assert.Equal(t, 2, d.Day())

	d, ok = wrapper.Events[3].SortDate()
	require.True(t, ok)
	assert.Equal(t, time.August, d.Month())

	_, ok = wrapper.Events[4].SortDate()
	assert.False(t, ok)

	both := Event{
		Vaccination:  &VaccinationEvent{Date: "2021-06-01"},
		PositiveTest: &TestEvent{SampleDate: "2021-01-01"},
	}
	d, ok = both.SortDate()
	require.True(t, ok)
	assert.Equal(t, time.June, d.Month())
}

func TestRemoteConfiguration(t *testing.T) {
	var nilCfg *RemoteConfiguration
	assert.False(t, nilCfg.IsArchiveMode(now))
	assert.Equal(t, 5, nilCfg.RenewalDays(5))

	raw := `{
		"configTTL": 86400,
		"credentialRenewalDays": 8,
		"archiveOnlyDate": "2021-07-01T00:00:00Z",
		"backendTLSCertificates": ["LS0t"],
		"providers": [{"provider_identifier": "GGD", "name": "GGD", "cms": ["AAAA"]}]
	}`
	var cfg RemoteConfiguration
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))

	assert.Equal(t, 8, cfg.RenewalDays(5))
	assert.True(t, cfg.IsArchiveMode(now))
	assert.False(t, cfg.IsArchiveMode(now.Add(-days(1))))

	p, ok := cfg.FindProvider("ggd")
	require.True(t, ok)
	assert.Equal(t, []string{"AAAA"}, p.CMS)

	_, ok = cfg.FindProvider("ZZZ")
	assert.False(t, ok)
}
