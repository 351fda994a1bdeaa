package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/cryptolib"
	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/greencards"
	"github.com/google/uuid"
)

func (s *Store) ListGreenCards(ctx context.Context) ([]models.GreenCard, error) {
	return greencards.NewSQLiteRepository(s.handle()).List(ctx, s.walletID)
}

// RemoveExistingGreenCards deletes every green card. When a domestic card
// was among them the holder secret key is cleared too.
func (s *Store) RemoveExistingGreenCards(ctx context.Context) error {
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		domestic, err := r.greenCards.CountByType(ctx, s.walletID, models.GreenCardTypeDomestic)
		if err != nil {
			return err
		}
		if _, err := r.greenCards.DeleteAll(ctx, s.walletID); err != nil {
			return err
		}
		if domestic > 0 {
			return r.secrets.SetHolderSecretKey(ctx, nil)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove green cards: %w", err)
	}
	return nil
}

// RemoveDomesticGreenCards deletes the domestic cards and the secret key
// their credentials were issued against.
func (s *Store) RemoveDomesticGreenCards(ctx context.Context) error {
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		n, err := r.greenCards.DeleteByType(ctx, s.walletID, models.GreenCardTypeDomestic)
		if err != nil {
			return err
		}
		if n > 0 {
			return r.secrets.SetHolderSecretKey(ctx, nil)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove domestic green cards: %w", err)
	}
	return nil
}

// StoreDomesticGreenCard stores remote with one credential per element the
// crypto library creates from its credential messages. A card without
// origins is skipped.
func (s *Store) StoreDomesticGreenCard(ctx context.Context, remote models.RemoteDomesticGreenCard) error {
	if len(remote.Origins) == 0 {
		return nil
	}

	gc, err := s.newGreenCard(models.GreenCardTypeDomestic, remote.Origins)
	if err != nil {
		return err
	}

	ccm, err := base64.StdEncoding.DecodeString(remote.CreateCredentialMessages)
	if err != nil {
		return fmt.Errorf("%w: create credential messages: %v", ErrCredentialDecoding, err)
	}

	return s.withTx(ctx, func(ctx context.Context, r repos) error {
		key, err := r.secrets.HolderSecretKey(ctx)
		if err != nil {
			return err
		}
		if key == nil {
			return ErrNoSecretKey
		}

		raw, err := s.crypto.CreateCredentials(key, ccm)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCredentialDecoding, err)
		}
		var created []cryptolib.DomesticCredential
		if err := json.Unmarshal(raw, &created); err != nil {
			return fmt.Errorf("%w: %v", ErrCredentialDecoding, err)
		}

		for _, dc := range created {
			gc.Credentials = append(gc.Credentials, models.Credential{
				ID:             uuid.NewString(),
				GreenCardID:    gc.ID,
				Data:           dc.Credential,
				ValidFrom:      dc.Attributes.ValidFromTime(),
				ExpirationTime: dc.Attributes.ExpirationTime(),
				Version:        dc.Attributes.CredentialVersion,
			})
		}

		if err := r.greenCards.Insert(ctx, gc); err != nil {
			return err
		}
		s.log.Debug(ctx, "domestic green card stored", "origins", len(gc.Origins), "credentials", len(gc.Credentials))
		return nil
	})
}

// StoreEuGreenCard stores remote with its single credential. A card without
// origins is skipped.
func (s *Store) StoreEuGreenCard(ctx context.Context, remote models.RemoteEUGreenCard) error {
	if len(remote.Origins) == 0 {
		return nil
	}

	gc, err := s.newGreenCard(models.GreenCardTypeEU, remote.Origins)
	if err != nil {
		return err
	}

	data := []byte(remote.Credential)
	attrs, err := s.crypto.ReadEuCredentials(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialDecoding, err)
	}
	if attrs == nil {
		return ErrCredentialDecoding
	}

	gc.Credentials = []models.Credential{{
		ID:             uuid.NewString(),
		GreenCardID:    gc.ID,
		Data:           data,
		ValidFrom:      attrs.IssuedAtTime(),
		ExpirationTime: attrs.ExpirationTimeTime(),
		Version:        attrs.CredentialVersion,
	}}

	return s.withTx(ctx, func(ctx context.Context, r repos) error {
		if err := r.greenCards.Insert(ctx, gc); err != nil {
			return err
		}
		s.log.Debug(ctx, "eu green card stored", "origins", len(gc.Origins))
		return nil
	})
}

func (s *Store) newGreenCard(t models.GreenCardType, origins []models.RemoteOrigin) (*models.GreenCard, error) {
	gc := &models.GreenCard{ID: uuid.NewString(), WalletID: s.walletID, Type: t}

	for _, ro := range origins {
		ot, ok := models.ParseOriginType(ro.Type)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOriginType, ro.Type)
		}
		if ro.ExpirationTime.Before(ro.ValidFrom) {
			return nil, fmt.Errorf("origin %s expires before it becomes valid", ot)
		}
		gc.Origins = append(gc.Origins, models.Origin{
			ID:             uuid.NewString(),
			GreenCardID:    gc.ID,
			Type:           ot,
			EventDate:      ro.EventTime,
			ValidFrom:      ro.ValidFrom,
			ExpirationTime: ro.ExpirationTime,
			DoseNumber:     ro.DoseNumber,
			Hints:          ro.Hints,
		})
	}
	return gc, nil
}

// GreencardsWithUnexpiredOrigins returns the cards still holding an origin
// (of one of types, when given) that expires after now.
func (s *Store) GreencardsWithUnexpiredOrigins(ctx context.Context, now time.Time, types ...models.OriginType) ([]models.GreenCard, error) {
	cards, err := s.ListGreenCards(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.GreenCard
	for _, gc := range cards {
		if gc.HasUnexpiredOrigin(now, types...) {
			out = append(out, gc)
		}
	}
	return out, nil
}

// RemoveExpiredGreenCards deletes the cards whose every origin expired at or
// before now.
func (s *Store) RemoveExpiredGreenCards(ctx context.Context, now time.Time) ([]ExpiredGreenCard, error) {
	var removed []ExpiredGreenCard
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		cards, err := r.greenCards.List(ctx, s.walletID)
		if err != nil {
			return err
		}
		for _, gc := range cards {
			last, ok := gc.LastExpiringOrigin()
			if !ok || last.ExpirationTime.After(now) {
				continue
			}
			if err := r.greenCards.DeleteByID(ctx, gc.ID); err != nil {
				return err
			}
			removed = append(removed, ExpiredGreenCard{Type: gc.Type, OriginType: last.Type})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove expired green cards: %w", err)
	}
	return removed, nil
}
