package models

import "time"

// SignedResponse is the detached-signature envelope. Both fields are base64.
type SignedResponse struct {
	Payload   string `json:"payload"`
	Signature string `json:"signature"`
}

// PrepareIssueEnvelope is the prepare_issue response.
type PrepareIssueEnvelope struct {
	Stoken              string `json:"stoken"`
	PrepareIssueMessage string `json:"prepareIssueMessage"`
}

// GreenCardsRequest is the credentials request body.
type GreenCardsRequest struct {
	Stoken                 string   `json:"stoken"`
	Events                 []string `json:"events"`
	IssueCommitmentMessage string   `json:"issueCommitmentMessage"`
	Flows                  []string `json:"flows"`
}

// RemoteGreenCards is the credentials response.
type RemoteGreenCards struct {
	DomesticGreenCard *RemoteDomesticGreenCard `json:"domesticGreenCard,omitempty"`
	EUGreenCards      []RemoteEUGreenCard      `json:"euGreenCards,omitempty"`
	BlobExpireDates   []BlobExpiry             `json:"blobExpireDates,omitempty"`
	Hints             []string                 `json:"hints,omitempty"`
}

type RemoteDomesticGreenCard struct {
	Origins                  []RemoteOrigin `json:"origins"`
	CreateCredentialMessages string         `json:"createCredentialMessages"`
}

type RemoteEUGreenCard struct {
	Origins    []RemoteOrigin `json:"origins"`
	Credential string         `json:"credential"`
}

type RemoteOrigin struct {
	Type           string    `json:"type"`
	EventTime      time.Time `json:"eventTime"`
	ExpirationTime time.Time `json:"expirationTime"`
	ValidFrom      time.Time `json:"validFrom"`
	DoseNumber     *int      `json:"doseNumber,omitempty"`
	Hints          []string  `json:"hints"`
}

// BlobExpiry shortens or revokes a stored event group. Identifier is the
// event group ID.
type BlobExpiry struct {
	Identifier     string    `json:"identifier"`
	ExpirationDate time.Time `json:"expirationDate"`
	Reason         string    `json:"reason,omitempty"`
}

// Provider is an event provider together with the certificates it signs
// its event groups with.
type Provider struct {
	Identifier string `json:"provider_identifier"`
	Name       string `json:"name"`
	// CMS holds base64 encoded PEM signing certificates.
	CMS []string `json:"cms"`
}
