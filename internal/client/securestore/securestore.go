// Package securestore keeps the wallet's protected values (the holder secret
// key and the last known remote configuration) sealed inside the metadata
// table.
//
// The master key is derived from the device passphrase with Argon2id and a
// random per-device salt; every value is sealed with its own HKDF subkey and
// bound to its key name.
package securestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/greenwallet/internal/common"
	"github.com/dmitrijs2005/greenwallet/internal/cryptox"
)

const (
	prefix = "secure."

	keySalt       = prefix + "salt"
	keyCheck      = prefix + "check"
	keySecretKey  = prefix + "holder_secret_key"
	keyRemoteConf = prefix + "remote_configuration"

	checkValue = "greenwallet"
)

// ErrLocked is returned by Open when the passphrase does not unlock the
// existing values.
var ErrLocked = errors.New("secure store locked: wrong passphrase")

type Store struct {
	repo      metadata.Repository
	masterKey []byte
}

// Open derives the master key for passphrase, creating the salt on first use.
func Open(ctx context.Context, repo metadata.Repository, passphrase []byte) (*Store, error) {
	salt, err := repo.Get(ctx, keySalt)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = common.GenerateRandByteArray(cryptox.SaltLen)
		if err := repo.Set(ctx, keySalt, salt); err != nil {
			return nil, err
		}
	}

	s := &Store{repo: repo, masterKey: cryptox.DeriveMasterKey(passphrase, salt)}

	check, err := s.get(ctx, keyCheck)
	switch {
	case errors.Is(err, common.ErrorMalformed):
		return nil, ErrLocked
	case err != nil:
		return nil, err
	case check == nil:
		if err := s.set(ctx, keyCheck, []byte(checkValue)); err != nil {
			return nil, err
		}
	case string(check) != checkValue:
		return nil, ErrLocked
	}
	return s, nil
}

// WithRepository returns a Store sharing the master key but reading and
// writing through repo, typically one bound to a transaction.
func (s *Store) WithRepository(repo metadata.Repository) *Store {
	return &Store{repo: repo, masterKey: s.masterKey}
}

// HolderSecretKey returns nil when no key is stored.
func (s *Store) HolderSecretKey(ctx context.Context) ([]byte, error) {
	return s.get(ctx, keySecretKey)
}

// SetHolderSecretKey stores key; a nil key removes the stored one.
func (s *Store) SetHolderSecretKey(ctx context.Context, key []byte) error {
	if key == nil {
		return s.repo.Delete(ctx, keySecretKey)
	}
	return s.set(ctx, keySecretKey, key)
}

// RemoteConfiguration returns nil when none has been stored yet.
func (s *Store) RemoteConfiguration(ctx context.Context) (*models.RemoteConfiguration, error) {
	b, err := s.get(ctx, keyRemoteConf)
	if err != nil || b == nil {
		return nil, err
	}
	var cfg models.RemoteConfiguration
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("%w: remote configuration: %v", common.ErrorMalformed, err)
	}
	return &cfg, nil
}

func (s *Store) SetRemoteConfiguration(ctx context.Context, cfg *models.RemoteConfiguration) error {
	if cfg == nil {
		return s.repo.Delete(ctx, keyRemoteConf)
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.set(ctx, keyRemoteConf, b)
}

// Wipe removes every protected value, including the salt.
func (s *Store) Wipe(ctx context.Context) error {
	_, err := s.repo.DeletePrefix(ctx, prefix)
	return err
}

func (s *Store) get(ctx context.Context, name string) ([]byte, error) {
	blob, err := s.repo.Get(ctx, name)
	if err != nil || blob == nil {
		return nil, err
	}
	key, err := cryptox.DeriveSubkey(s.masterKey, name)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	plain, err := cryptox.Open(key, blob, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrorMalformed, name, err)
	}
	return plain, nil
}

func (s *Store) set(ctx context.Context, name string, value []byte) error {
	key, err := cryptox.DeriveSubkey(s.masterKey, name)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	blob, err := cryptox.Seal(key, value, []byte(name))
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, name, blob)
}
