package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/cryptolib"
	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/eventgroups"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/greencards"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/removedevents"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/wallets"
	"github.com/dmitrijs2005/greenwallet/internal/common"
	"github.com/dmitrijs2005/greenwallet/internal/dbx"
	"github.com/dmitrijs2005/greenwallet/internal/logging"
	"github.com/dmitrijs2005/greenwallet/internal/timex"
	"github.com/google/uuid"
)

var (
	ErrUnknownOriginType  = errors.New("unknown origin type")
	ErrCredentialDecoding = errors.New("credential could not be decoded")
	ErrNoSecretKey        = errors.New("no holder secret key stored")
)

// CredentialStore is the store as seen by the issuance and refresh services.
type CredentialStore interface {
	FetchSignedEvents(ctx context.Context) ([][]byte, error)
	StoreEventGroup(ctx context.Context, mode models.EventMode, provider string, envelope []byte, expiry *time.Time, isDraft bool) (*models.EventGroup, error)
	ListEventGroups(ctx context.Context) ([]models.EventGroup, error)
	RemoveExistingEventGroups(ctx context.Context, mode models.EventMode, provider string) (int, error)
	UpdateEventGroup(ctx context.Context, id string, expiry time.Time) (bool, error)

	StoreSecretKey(ctx context.Context, key []byte) error
	RemoveExistingGreenCards(ctx context.Context) error
	StoreDomesticGreenCard(ctx context.Context, remote models.RemoteDomesticGreenCard) error
	StoreEuGreenCard(ctx context.Context, remote models.RemoteEUGreenCard) error
	GreencardsWithUnexpiredOrigins(ctx context.Context, now time.Time, types ...models.OriginType) ([]models.GreenCard, error)
	RemoveExpiredGreenCards(ctx context.Context, now time.Time) ([]ExpiredGreenCard, error)

	CreateRemovedEventForBlobExpiry(ctx context.Context, blob models.BlobExpiry, group models.EventGroup) (*models.RemovedEvent, error)

	// Atomically runs fn against a view of the store bound to one
	// transaction. An error from fn rolls every change back.
	Atomically(ctx context.Context, fn func(ctx context.Context, tx CredentialStore) error) error
}

// SecretKeys gives access to the holder secret key.
type SecretKeys interface {
	HolderSecretKey(ctx context.Context) ([]byte, error)
	SetHolderSecretKey(ctx context.Context, key []byte) error
}

// SecretKeysBinder returns SecretKeys reading and writing through repo, so
// that key changes commit together with the rest of a transaction.
type SecretKeysBinder func(repo metadata.Repository) SecretKeys

// ExpiredGreenCard describes a green card removed by RemoveExpiredGreenCards.
type ExpiredGreenCard struct {
	Type       models.GreenCardType
	OriginType models.OriginType
}

type Store struct {
	db       *sql.DB
	tx       dbx.DBTX
	walletID string

	secrets SecretKeysBinder
	crypto  cryptolib.Library
	now     timex.Clock
	log     logging.Logger
}

var _ CredentialStore = (*Store)(nil)

type Option func(*Store)

func WithClock(c timex.Clock) Option {
	return func(s *Store) { s.now = c }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = logging.OrNop(l) }
}

// New returns a Store on db, creating the main wallet if it does not exist.
func New(ctx context.Context, db *sql.DB, secrets SecretKeysBinder, crypto cryptolib.Library, opts ...Option) (*Store, error) {
	s := &Store{
		db:      db,
		secrets: secrets,
		crypto:  crypto,
		now:     timex.SystemClock,
		log:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	id, err := s.createMainWalletIfNotExists(ctx)
	if err != nil {
		return nil, err
	}
	s.walletID = id
	return s, nil
}

// WalletID is the identifier of the main wallet.
func (s *Store) WalletID() string {
	return s.walletID
}

func (s *Store) createMainWalletIfNotExists(ctx context.Context) (string, error) {
	var id string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := wallets.NewSQLiteRepository(tx)
		w, err := repo.GetByLabel(ctx, models.MainWalletLabel)
		if err == nil {
			id = w.ID
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		w = &models.Wallet{ID: uuid.NewString(), Label: models.MainWalletLabel, CreatedAt: s.now()}
		if err := repo.Create(ctx, w); err != nil {
			return err
		}
		id = w.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create main wallet: %w", err)
	}
	return id, nil
}

// Atomically implements CredentialStore. Nested calls join the outer
// transaction.
func (s *Store) Atomically(ctx context.Context, fn func(ctx context.Context, tx CredentialStore) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		view := *s
		view.tx = tx
		return fn(ctx, &view)
	})
}

// Wipe deletes everything the wallet holds, including the secret key, and
// recreates an empty main wallet.
func (s *Store) Wipe(ctx context.Context) error {
	err := s.withTx(ctx, func(ctx context.Context, r repos) error {
		if _, err := r.removedEvents.DeleteAll(ctx, s.walletID); err != nil {
			return err
		}
		if _, err := r.greenCards.DeleteAll(ctx, s.walletID); err != nil {
			return err
		}
		if _, err := r.eventGroups.DeleteAll(ctx, s.walletID); err != nil {
			return err
		}
		if err := r.secrets.SetHolderSecretKey(ctx, nil); err != nil {
			return err
		}
		if err := r.wallets.DeleteAll(ctx); err != nil {
			return err
		}
		return r.wallets.Create(ctx, &models.Wallet{ID: s.walletID, Label: models.MainWalletLabel, CreatedAt: s.now()})
	})
	if err != nil {
		return fmt.Errorf("failed to wipe wallet: %w", err)
	}
	return nil
}

type repos struct {
	wallets       wallets.Repository
	eventGroups   eventgroups.Repository
	greenCards    greencards.Repository
	removedEvents removedevents.Repository
	secrets       SecretKeys
}

func (s *Store) reposFor(tx dbx.DBTX) repos {
	return repos{
		wallets:       wallets.NewSQLiteRepository(tx),
		eventGroups:   eventgroups.NewSQLiteRepository(tx),
		greenCards:    greencards.NewSQLiteRepository(tx),
		removedEvents: removedevents.NewSQLiteRepository(tx),
		secrets:       s.secrets(metadata.NewSQLiteRepository(tx)),
	}
}

// withTx runs fn in the bound transaction, or in a new one.
func (s *Store) withTx(ctx context.Context, fn func(ctx context.Context, r repos) error) error {
	if s.tx != nil {
		return fn(ctx, s.reposFor(s.tx))
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, s.reposFor(tx))
	})
}

// handle is what read-only calls query through.
func (s *Store) handle() dbx.DBTX {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// SecretKey returns the stored holder secret key, or nil.
func (s *Store) SecretKey(ctx context.Context) ([]byte, error) {
	return s.secrets(metadata.NewSQLiteRepository(s.handle())).HolderSecretKey(ctx)
}

// StoreSecretKey replaces the holder secret key; nil clears it.
func (s *Store) StoreSecretKey(ctx context.Context, key []byte) error {
	return s.withTx(ctx, func(ctx context.Context, r repos) error {
		return r.secrets.SetHolderSecretKey(ctx, key)
	})
}
