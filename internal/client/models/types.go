package models

import "strings"

// EventMode is the kind of events stored in an event group.
type EventMode string

const (
	EventModePaperflow             EventMode = "paperflow"
	EventModePositiveTest          EventMode = "positivetest"
	EventModeRecovery              EventMode = "recovery"
	EventModeTest                  EventMode = "test"
	EventModeVaccination           EventMode = "vaccination"
	EventModeVaccinationAssessment EventMode = "vaccinationassessment"
)

// ParseEventMode accepts the stored raw values. The event type names used
// inside provider payloads ("negativetest", "dcc") are mapped as well.
func ParseEventMode(s string) (EventMode, bool) {
	switch strings.ToLower(s) {
	case "paperflow", "dcc":
		return EventModePaperflow, true
	case "positivetest":
		return EventModePositiveTest, true
	case "recovery":
		return EventModeRecovery, true
	case "test", "negativetest":
		return EventModeTest, true
	case "vaccination":
		return EventModeVaccination, true
	case "vaccinationassessment":
		return EventModeVaccinationAssessment, true
	}
	return "", false
}

// GreenCardType is the credential domain of a green card.
type GreenCardType string

const (
	GreenCardTypeDomestic GreenCardType = "domestic"
	GreenCardTypeEU       GreenCardType = "eu"
)

// OriginType is the kind of fact an origin proves.
type OriginType string

const (
	OriginTypeVaccination           OriginType = "vaccination"
	OriginTypeRecovery              OriginType = "recovery"
	OriginTypeTest                  OriginType = "test"
	OriginTypeVaccinationAssessment OriginType = "vaccinationassessment"
)

func ParseOriginType(s string) (OriginType, bool) {
	switch t := OriginType(strings.ToLower(s)); t {
	case OriginTypeVaccination, OriginTypeRecovery, OriginTypeTest, OriginTypeVaccinationAssessment:
		return t, true
	}
	return "", false
}

// RemovalReason tags a RemovedEvent.
type RemovalReason string

const (
	RemovalReasonBlockedEvent       RemovalReason = "event_blocked"
	RemovalReasonMismatchedIdentity RemovalReason = "identity_mismatched"
)
