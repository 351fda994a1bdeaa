// Package client talks to the holder API over JSON/HTTPS.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface): PrepareIssue,
//     FetchGreenCards, FetchRemoteConfiguration and Ping.
//  2. An HTTP implementation (see HTTPClient) that sets the protocol
//     headers, verifies signed envelopes through a SignatureValidator and
//     maps every failure to a *ServerError.
//  3. Stable user-facing error codes (see ErrorCode) rendered from a
//     ServerError together with the flow and step it occurred in.
//
// # Error Handling
//
// Every failure is a *ServerError whose Err is a NetworkError. Callers match
// kinds with errors.Is, e.g. errors.Is(err, client.ServerBusy). Ping wraps
// ErrUnavailable.
package client
