package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/removedevents"
	"github.com/google/uuid"
)

func (s *Store) ListRemovedEvents(ctx context.Context) ([]models.RemovedEvent, error) {
	return removedevents.NewSQLiteRepository(s.handle()).List(ctx, s.walletID)
}

func (s *Store) StoreRemovedEvent(ctx context.Context, mode models.EventMode, eventDate time.Time, reason models.RemovalReason) (*models.RemovedEvent, error) {
	e := &models.RemovedEvent{
		ID:        uuid.NewString(),
		WalletID:  s.walletID,
		Type:      mode,
		EventDate: eventDate,
		Reason:    reason,
		CreatedAt: s.now(),
	}
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		return r.removedEvents.Insert(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateRemovedEventForBlobExpiry records that group was revoked for the
// reason given in blob. The event date is read from the group's payload; a
// payload without a readable date yields the zero time.
func (s *Store) CreateRemovedEventForBlobExpiry(ctx context.Context, blob models.BlobExpiry, group models.EventGroup) (*models.RemovedEvent, error) {
	mode, date := s.eventOf(group)
	return s.StoreRemovedEvent(ctx, mode, date, models.RemovalReason(blob.Reason))
}

func (s *Store) RemoveExistingRemovedEvents(ctx context.Context, reason models.RemovalReason) (int, error) {
	var n int
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		var err error
		n, err = r.removedEvents.DeleteByReason(ctx, s.walletID, reason)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove removed events: %w", err)
	}
	return n, nil
}

// eventOf decodes the first event of a stored group. Paper certificates are
// read through the crypto library.
func (s *Store) eventOf(group models.EventGroup) (models.EventMode, time.Time) {
	var envelope models.SignedResponse
	if err := json.Unmarshal(group.JSONData, &envelope); err != nil {
		return group.Type, time.Time{}
	}
	payload, err := base64.StdEncoding.DecodeString(envelope.Payload)
	if err != nil {
		return group.Type, time.Time{}
	}

	var dcc models.DCCEvent
	if err := json.Unmarshal(payload, &dcc); err == nil && dcc.Credential != "" {
		attrs, err := s.crypto.ReadEuCredentials([]byte(dcc.Credential))
		if err != nil || attrs == nil {
			return group.Type, time.Time{}
		}
		mode, ok := attrs.EventMode()
		if !ok {
			mode = group.Type
		}
		date, _ := attrs.EventDate()
		return mode, date
	}

	var result models.EventResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return group.Type, time.Time{}
	}
	for _, e := range result.Events {
		if date, ok := e.SortDate(); ok {
			return group.Type, date
		}
	}
	return group.Type, time.Time{}
}
