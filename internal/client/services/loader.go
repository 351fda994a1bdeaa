// Package services holds the wallet's long-running behaviour: turning stored
// signed events into green cards, and keeping those green cards fresh.
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/greenwallet/internal/client/client"
	"github.com/dmitrijs2005/greenwallet/internal/client/cryptolib"
	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/store"
	"github.com/dmitrijs2005/greenwallet/internal/logging"
)

type IssuanceErrorKind string

const (
	NoSignedEvents                    IssuanceErrorKind = "noSignedEvents"
	PreparingIssue                    IssuanceErrorKind = "preparingIssue"
	FailedToParsePrepareIssue         IssuanceErrorKind = "failedToParsePrepareIssue"
	FailedToGenerateCommitmentMessage IssuanceErrorKind = "failedToGenerateCommitmentMessage"
	FailedToGenerateDomesticSecretKey IssuanceErrorKind = "failedToGenerateDomesticSecretKey"
	Credentials                       IssuanceErrorKind = "credentials"
	FailedToSaveGreenCards            IssuanceErrorKind = "failedToSaveGreenCards"
)

// Client codes of the failures that never reached the network.
const (
	clientCodeFailedToParsePrepareIssue         = "053"
	clientCodeFailedToGenerateCommitmentMessage = "054"
	clientCodeFailedToSaveGreenCards            = "055"
	clientCodeUnhandled                         = "999"
)

// IssuanceError is returned by GreenCardLoader. Server is set for the
// network steps (PreparingIssue, Credentials), Err for the rest.
type IssuanceError struct {
	Kind   IssuanceErrorKind
	Server *client.ServerError
	Err    error
}

func (e *IssuanceError) Error() string {
	switch {
	case e.Server != nil && e.Server.Provider != "":
		return fmt.Sprintf("credentials/provider/%s: %v", e.Kind, e.Server)
	case e.Server != nil:
		return fmt.Sprintf("credentials/%s: %v", e.Kind, e.Server)
	case e.Err != nil:
		return fmt.Sprintf("credentials/%s: %v", e.Kind, e.Err)
	}
	return "credentials/" + string(e.Kind)
}

func (e *IssuanceError) Unwrap() error {
	if e.Server != nil {
		return e.Server
	}
	return e.Err
}

// ErrorCode renders the user-facing code of e within flow. NoSignedEvents
// has no code; the caller shows an empty state instead.
func (e *IssuanceError) ErrorCode(flow client.Flow) (client.ErrorCode, bool) {
	switch e.Kind {
	case PreparingIssue:
		if e.Server != nil {
			return client.NewErrorCode(e.Server, flow, client.StepNonce), true
		}
	case Credentials:
		if e.Server != nil {
			return client.NewErrorCode(e.Server, flow, client.StepSigner), true
		}
	case FailedToParsePrepareIssue:
		return client.ErrorCode{Flow: flow, Step: client.StepNonce, ClientCode: clientCodeFailedToParsePrepareIssue}, true
	case FailedToGenerateCommitmentMessage:
		return client.ErrorCode{Flow: flow, Step: client.StepNonce, ClientCode: clientCodeFailedToGenerateCommitmentMessage}, true
	case FailedToSaveGreenCards:
		return client.ErrorCode{Flow: flow, Step: client.StepStoringCredentials, ClientCode: clientCodeFailedToSaveGreenCards}, true
	case NoSignedEvents:
		return client.ErrorCode{}, false
	}
	return client.ErrorCode{Flow: flow, Step: client.StepSigner, ClientCode: clientCodeUnhandled}, true
}

func newIssuanceError(kind IssuanceErrorKind, err error) *IssuanceError {
	ie := &IssuanceError{Kind: kind, Err: err}
	var se *client.ServerError
	if errors.As(err, &se) {
		ie.Server = se
	}
	return ie
}

// GreenCardLoader signs the stored events into a fresh set of green cards.
type GreenCardLoader interface {
	// SignTheEventsIntoGreenCardsAndCredentials replaces every green card
	// with the ones the server issues for the stored events. scope, when
	// set, overrides the configured flows. Errors are *IssuanceError.
	SignTheEventsIntoGreenCardsAndCredentials(ctx context.Context, scope *models.EventMode) (*models.RemoteGreenCards, error)
}

type greenCardLoader struct {
	client client.Client
	crypto cryptolib.Library
	store  store.CredentialStore
	flows  []string
	log    logging.Logger
}

func NewGreenCardLoader(c client.Client, crypto cryptolib.Library, s store.CredentialStore, flows []string, log logging.Logger) GreenCardLoader {
	return &greenCardLoader{
		client: c,
		crypto: crypto,
		store:  s,
		flows:  flows,
		log:    logging.OrNop(log),
	}
}

func (l *greenCardLoader) SignTheEventsIntoGreenCardsAndCredentials(ctx context.Context, scope *models.EventMode) (*models.RemoteGreenCards, error) {
	secretKey, err := l.crypto.GenerateSecretKey()
	if err != nil || len(secretKey) == 0 {
		return nil, newIssuanceError(FailedToGenerateDomesticSecretKey, err)
	}

	prepared, err := l.client.PrepareIssue(ctx)
	if err != nil {
		return nil, newIssuanceError(PreparingIssue, err)
	}
	nonce, err := base64.StdEncoding.DecodeString(prepared.PrepareIssueMessage)
	if err != nil {
		return nil, newIssuanceError(FailedToParsePrepareIssue, err)
	}

	events, err := l.store.FetchSignedEvents(ctx)
	if err != nil {
		return nil, newIssuanceError(NoSignedEvents, err)
	}
	if len(events) == 0 {
		return nil, newIssuanceError(NoSignedEvents, nil)
	}

	icm, err := l.crypto.GenerateCommitmentMessage(nonce, secretKey)
	if err != nil || icm == "" {
		return nil, newIssuanceError(FailedToGenerateCommitmentMessage, err)
	}

	req := models.GreenCardsRequest{
		Stoken:                 prepared.Stoken,
		Events:                 make([]string, len(events)),
		IssueCommitmentMessage: base64.StdEncoding.EncodeToString([]byte(icm)),
		Flows:                  l.requestedFlows(scope),
	}
	for i, e := range events {
		req.Events[i] = string(e)
	}

	cards, err := l.client.FetchGreenCards(ctx, req)
	if err != nil {
		return nil, newIssuanceError(Credentials, err)
	}

	if err := l.store.Atomically(ctx, func(ctx context.Context, tx store.CredentialStore) error {
		return l.commit(ctx, tx, secretKey, cards)
	}); err != nil {
		l.log.Error(ctx, "failed to save green cards", "error", err)
		return nil, newIssuanceError(FailedToSaveGreenCards, err)
	}

	l.log.Info(ctx, "green cards issued",
		"domestic", cards.DomesticGreenCard != nil,
		"eu", len(cards.EUGreenCards),
		"blobExpiries", len(cards.BlobExpireDates))
	return cards, nil
}

func (l *greenCardLoader) requestedFlows(scope *models.EventMode) []string {
	if scope != nil {
		return []string{string(*scope)}
	}
	if l.flows == nil {
		return []string{}
	}
	return l.flows
}

// commit replaces the green cards with cards, under tx.
func (l *greenCardLoader) commit(ctx context.Context, tx store.CredentialStore, secretKey []byte, cards *models.RemoteGreenCards) error {
	if err := tx.RemoveExistingGreenCards(ctx); err != nil {
		return err
	}
	if err := tx.StoreSecretKey(ctx, secretKey); err != nil {
		return err
	}
	if cards.DomesticGreenCard != nil {
		if err := tx.StoreDomesticGreenCard(ctx, *cards.DomesticGreenCard); err != nil {
			return fmt.Errorf("domestic green card: %w", err)
		}
	}
	for i, eu := range cards.EUGreenCards {
		if err := tx.StoreEuGreenCard(ctx, eu); err != nil {
			return fmt.Errorf("eu green card %d: %w", i, err)
		}
	}
	if len(cards.BlobExpireDates) == 0 {
		return nil
	}

	groups, err := tx.ListEventGroups(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]models.EventGroup, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	for _, blob := range cards.BlobExpireDates {
		ok, err := tx.UpdateEventGroup(ctx, blob.Identifier, blob.ExpirationDate)
		if err != nil {
			return err
		}
		if !ok {
			l.log.Warn(ctx, "blob expiry for unknown event group", "id", blob.Identifier)
		}
		group, found := byID[blob.Identifier]
		if blob.Reason == "" || !found {
			continue
		}
		if _, err := tx.CreateRemovedEventForBlobExpiry(ctx, blob, group); err != nil {
			return err
		}
	}
	return nil
}
