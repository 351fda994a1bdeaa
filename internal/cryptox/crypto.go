// Package cryptox seals small values at rest: Argon2id turns a passphrase
// into a master key, HKDF derives per-purpose subkeys from it and
// XChaCha20-Poly1305 encrypts with a random nonce prefixed to the output.
package cryptox

import (
	"crypto/sha256"
	"errors"
	"io"

	"github.com/dmitrijs2005/greenwallet/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	KeyLen  = chacha20poly1305.KeySize
	SaltLen = 16

	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, KeyLen)
}

// DeriveSubkey expands master into a KeyLen key bound to label.
func DeriveSubkey(master []byte, label string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, nil, []byte(label))
	key := make([]byte, KeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Seal encrypts plaintext under key, authenticating aad. The result is
// nonce || ciphertext.
func Seal(key, plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(chacha20poly1305.NonceSizeX)

	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, aad), nil
}

// Open reverses Seal. A wrong key, tampered blob or mismatched aad fails.
func Open(key, blob, aad []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, ErrCiphertextTooShort
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	return aead.Open(nil, nonce, blob[chacha20poly1305.NonceSizeX:], aad)
}
