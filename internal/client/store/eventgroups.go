package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/eventgroups"
	"github.com/dmitrijs2005/greenwallet/internal/common"
	"github.com/google/uuid"
)

// FetchSignedEvents returns the stored signed envelope of every event group
// with the group's identifier added under "id", so blob expiries in the
// issuance response can name the group. Envelopes that are not JSON objects
// are skipped.
func (s *Store) FetchSignedEvents(ctx context.Context) ([][]byte, error) {
	groups, err := s.ListEventGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(groups))
	for _, g := range groups {
		event, err := withIdentifier(g)
		if err != nil {
			s.log.Warn(ctx, "skipping unreadable event group", "id", g.ID, "error", err)
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func withIdentifier(g models.EventGroup) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(g.JSONData, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: envelope is not an object", common.ErrorMalformed)
	}
	id, err := json.Marshal(g.ID)
	if err != nil {
		return nil, err
	}
	fields["id"] = id
	return json.Marshal(fields)
}

func (s *Store) ListEventGroups(ctx context.Context) ([]models.EventGroup, error) {
	return eventgroups.NewSQLiteRepository(s.handle()).List(ctx, s.walletID)
}

// EventGroup returns common.ErrorNotFound for unknown ids.
func (s *Store) EventGroup(ctx context.Context, id string) (*models.EventGroup, error) {
	return eventgroups.NewSQLiteRepository(s.handle()).GetByID(ctx, id)
}

func (s *Store) StoreEventGroup(ctx context.Context, mode models.EventMode, provider string, envelope []byte, expiry *time.Time, isDraft bool) (*models.EventGroup, error) {
	g := &models.EventGroup{
		ID:                 uuid.NewString(),
		WalletID:           s.walletID,
		Type:               mode,
		ProviderIdentifier: provider,
		JSONData:           envelope,
		ExpiryDate:         expiry,
		IsDraft:            isDraft,
		CreatedAt:          s.now(),
	}
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		return r.eventGroups.Insert(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "event group stored", "id", g.ID, "type", mode, "provider", provider, "draft", isDraft)
	return g, nil
}

// RemoveExistingEventGroups deletes the groups of mode from provider.
func (s *Store) RemoveExistingEventGroups(ctx context.Context, mode models.EventMode, provider string) (int, error) {
	return s.deleteEventGroups(ctx, func(ctx context.Context, r eventgroups.Repository) (int, error) {
		return r.DeleteByTypeAndProvider(ctx, s.walletID, mode, provider)
	})
}

// RemoveExistingEventGroupsByType deletes the groups of mode from any provider.
func (s *Store) RemoveExistingEventGroupsByType(ctx context.Context, mode models.EventMode) (int, error) {
	return s.deleteEventGroups(ctx, func(ctx context.Context, r eventgroups.Repository) (int, error) {
		return r.DeleteByType(ctx, s.walletID, mode)
	})
}

func (s *Store) RemoveAllEventGroups(ctx context.Context) (int, error) {
	return s.deleteEventGroups(ctx, func(ctx context.Context, r eventgroups.Repository) (int, error) {
		return r.DeleteAll(ctx, s.walletID)
	})
}

func (s *Store) RemoveDraftEventGroups(ctx context.Context) (int, error) {
	return s.deleteEventGroups(ctx, func(ctx context.Context, r eventgroups.Repository) (int, error) {
		return r.DeleteDrafts(ctx, s.walletID)
	})
}

// ExpireEventGroups deletes the groups whose expiry date lies before now.
func (s *Store) ExpireEventGroups(ctx context.Context, now time.Time) (int, error) {
	return s.deleteEventGroups(ctx, func(ctx context.Context, r eventgroups.Repository) (int, error) {
		return r.DeleteExpiredBefore(ctx, s.walletID, now)
	})
}

func (s *Store) deleteEventGroups(ctx context.Context, del func(ctx context.Context, r eventgroups.Repository) (int, error)) (int, error) {
	var n int
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		var err error
		n, err = del(ctx, r.eventGroups)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to remove event groups: %w", err)
	}
	return n, nil
}

// UpdateEventGroup sets the expiry date of a group. It reports false when
// no group carries id.
func (s *Store) UpdateEventGroup(ctx context.Context, id string, expiry time.Time) (bool, error) {
	var ok bool
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		var err error
		ok, err = r.eventGroups.UpdateExpiry(ctx, id, expiry)
		return err
	})
	return ok, err
}

func (s *Store) UpdateEventGroupDraft(ctx context.Context, id string, isDraft bool) (bool, error) {
	var ok bool
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		var err error
		ok, err = r.eventGroups.UpdateDraft(ctx, id, isDraft)
		return err
	})
	return ok, err
}
