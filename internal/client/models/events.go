package models

import (
	"strings"
	"time"
)

// EventResult is the decoded payload of a provider's signed event group.
type EventResult struct {
	ProviderIdentifier string  `json:"providerIdentifier"`
	ProtocolVersion    string  `json:"protocolVersion"`
	Holder             *Holder `json:"holder,omitempty"`
	Status             string  `json:"status"`
	Events             []Event `json:"events"`
}

type Holder struct {
	FirstName string `json:"firstName"`
	Infix     string `json:"infix"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
}

type Event struct {
	Type                  string                 `json:"type"`
	Unique                string                 `json:"unique"`
	IsSpecimen            bool                   `json:"isSpecimen"`
	Vaccination           *VaccinationEvent      `json:"vaccination,omitempty"`
	NegativeTest          *TestEvent             `json:"negativetest,omitempty"`
	PositiveTest          *TestEvent             `json:"positivetest,omitempty"`
	Recovery              *RecoveryEvent         `json:"recovery,omitempty"`
	VaccinationAssessment *VaccinationAssessment `json:"vaccinationassessment,omitempty"`
	DCCEvent              *DCCEvent              `json:"dccEvent,omitempty"`
}

type VaccinationEvent struct {
	Date       string `json:"date"`
	HpkCode    string `json:"hpkCode,omitempty"`
	Brand      string `json:"brand,omitempty"`
	DoseNumber string `json:"doseNumber,omitempty"`
	TotalDoses string `json:"totalDoses,omitempty"`
	Country    string `json:"country,omitempty"`
}

type TestEvent struct {
	SampleDate string `json:"sampleDate"`
	TestType   string `json:"testType,omitempty"`
	Facility   string `json:"facility,omitempty"`
}

type RecoveryEvent struct {
	SampleDate string `json:"sampleDate"`
	ValidFrom  string `json:"validFrom,omitempty"`
	ValidUntil string `json:"validUntil,omitempty"`
}

type VaccinationAssessment struct {
	AssessmentDate string `json:"assessmentDate"`
	Country        string `json:"country,omitempty"`
}

// DCCEvent is a scanned paper certificate.
type DCCEvent struct {
	Credential   string `json:"credential"`
	CouplingCode string `json:"couplingCode"`
}

// SortDate returns the date the event happened on.
func (e Event) SortDate() (time.Time, bool) {
	var raw string
	switch {
	case e.Vaccination != nil:
		raw = e.Vaccination.Date
	case e.NegativeTest != nil:
		raw = e.NegativeTest.SampleDate
	case e.Recovery != nil:
		raw = e.Recovery.SampleDate
	case e.VaccinationAssessment != nil:
		raw = e.VaccinationAssessment.AssessmentDate
	case e.PositiveTest != nil:
		raw = e.PositiveTest.SampleDate
	default:
		return time.Time{}, false
	}
	return ParseEventDate(raw)
}

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseEventDate accepts RFC 3339 timestamps, zone-less timestamps and plain
// dates. Missing zones are read as UTC.
func ParseEventDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
