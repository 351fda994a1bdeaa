// Package models contains the wallet's data model and the wire shapes of the
// holder API.
//
// # Stored entities
//
// A Wallet owns EventGroups (one provider's signed batch of events),
// GreenCards (one per credential domain, each with Origins and Credentials)
// and RemovedEvents (audit records of events dropped from the wallet).
//
// # Wire types
//
// PrepareIssueEnvelope, GreenCardsRequest and RemoteGreenCards are the
// request/response bodies of the issuance endpoints. SignedResponse is the
// detached-signature envelope wrapping every signed payload. EventResult is
// the decoded payload of a provider event group; RemoteConfiguration the
// decoded payload of the signed configuration endpoint.
package models
