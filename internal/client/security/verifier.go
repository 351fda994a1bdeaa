// Package security verifies the detached CMS signatures that wrap every
// payload the wallet receives from the holder API and event providers.
package security

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/bluele/gcache"
	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/logging"
	"go.mozilla.org/pkcs7"
)

// ErrDecode is returned when the signature or payload is not valid base64.
var ErrDecode = errors.New("signed envelope is not valid base64")

type StrategyKind int

const (
	// StrategyNone accepts everything. Only for bootstrapping.
	StrategyNone StrategyKind = iota
	// StrategyConfig trusts the anchors the wallet was configured with.
	StrategyConfig
	// StrategyData trusts the certificates of the stored remote configuration.
	StrategyData
	// StrategyProvider trusts one event provider's certificates.
	StrategyProvider
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyNone:
		return "none"
	case StrategyConfig:
		return "config"
	case StrategyData:
		return "data"
	case StrategyProvider:
		return "provider"
	}
	return fmt.Sprintf("strategy(%d)", int(k))
}

type TrustStrategy struct {
	Kind     StrategyKind
	Provider models.Provider
}

var (
	TrustNone   = TrustStrategy{Kind: StrategyNone}
	TrustConfig = TrustStrategy{Kind: StrategyConfig}
	TrustData   = TrustStrategy{Kind: StrategyData}
)

func TrustProvider(p models.Provider) TrustStrategy {
	return TrustStrategy{Kind: StrategyProvider, Provider: p}
}

// RemoteConfigurationSource yields the currently stored remote
// configuration, or nil.
type RemoteConfigurationSource interface {
	RemoteConfiguration(ctx context.Context) (*models.RemoteConfiguration, error)
}

const poolCacheSize = 32

type Verifier struct {
	config []*x509.Certificate
	data   RemoteConfigurationSource
	pools  gcache.Cache
	log    logging.Logger
}

// NewVerifier returns a Verifier trusting config for StrategyConfig and the
// certificates from data for StrategyData. data may be nil.
func NewVerifier(config []*x509.Certificate, data RemoteConfigurationSource, log logging.Logger) *Verifier {
	return &Verifier{
		config: config,
		data:   data,
		pools:  gcache.New(poolCacheSize).LRU().Build(),
		log:    logging.OrNop(log),
	}
}

// Validate reports whether signature is a valid detached signature over
// payload by a signer chaining to one of the strategy's anchors. Both
// arguments are base64. TrustNone accepts any input without decoding it. A
// rejected signature is (false, nil); only a decoding problem or a failure
// to load anchors returns an error.
func (v *Verifier) Validate(ctx context.Context, signature, payload []byte, strategy TrustStrategy) (bool, error) {
	if strategy.Kind == StrategyNone {
		return true, nil
	}

	sig, err := decodeBase64(signature)
	if err != nil {
		return false, fmt.Errorf("%w: signature: %v", ErrDecode, err)
	}
	content, err := decodeBase64(payload)
	if err != nil {
		return false, fmt.Errorf("%w: payload: %v", ErrDecode, err)
	}

	pool, err := v.pool(ctx, strategy)
	if err != nil {
		return false, err
	}
	if pool == nil {
		v.log.Warn(ctx, "no trust anchors, rejecting signature", "strategy", strategy.Kind)
		return false, nil
	}

	if err := verifyDetached(sig, content, pool); err != nil {
		v.log.Info(ctx, "signature rejected", "strategy", strategy.Kind, "error", err)
		return false, nil
	}
	return true, nil
}

func verifyDetached(signature, content []byte, pool *x509.CertPool) error {
	p7, err := pkcs7.Parse(signature)
	if err != nil {
		return err
	}
	p7.Content = content
	return p7.VerifyWithChain(pool)
}

// pool returns the cert pool for strategy, or nil when it has no anchors.
func (v *Verifier) pool(ctx context.Context, strategy TrustStrategy) (*x509.CertPool, error) {
	switch strategy.Kind {
	case StrategyConfig:
		if len(v.config) == 0 {
			return nil, nil
		}
		return v.cached("config", func() (*x509.CertPool, error) {
			return poolOf(v.config), nil
		})

	case StrategyData:
		if v.data == nil {
			return nil, nil
		}
		rc, err := v.data.RemoteConfiguration(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load remote configuration: %w", err)
		}
		if rc == nil {
			return nil, nil
		}
		return v.encodedPool(ctx, "data", rc.BackendTLSCertificates)

	case StrategyProvider:
		return v.encodedPool(ctx, "provider", strategy.Provider.CMS)
	}
	return nil, fmt.Errorf("unknown trust strategy %s", strategy.Kind)
}

// encodedPool builds a pool from base64 encoded PEM certificates, keyed on
// their content so a changed anchor list is never served from the cache.
func (v *Verifier) encodedPool(ctx context.Context, label string, encoded []string) (*x509.CertPool, error) {
	if len(encoded) == 0 {
		return nil, nil
	}

	h := sha256.New()
	for _, e := range encoded {
		h.Write([]byte(e))
		h.Write([]byte{0})
	}
	key := label + ":" + hex.EncodeToString(h.Sum(nil))

	return v.cached(key, func() (*x509.CertPool, error) {
		var certs []*x509.Certificate
		for i, e := range encoded {
			pemBytes, err := base64.StdEncoding.DecodeString(e)
			if err != nil {
				v.log.Warn(ctx, "skipping undecodable trust anchor", "source", label, "index", i)
				continue
			}
			parsed, err := ParseCertificates(pemBytes)
			if err != nil {
				v.log.Warn(ctx, "skipping unparsable trust anchor", "source", label, "index", i, "error", err)
				continue
			}
			certs = append(certs, parsed...)
		}
		if len(certs) == 0 {
			return nil, nil
		}
		return poolOf(certs), nil
	})
}

func (v *Verifier) cached(key string, build func() (*x509.CertPool, error)) (*x509.CertPool, error) {
	if p, err := v.pools.Get(key); err == nil {
		pool, _ := p.(*x509.CertPool)
		return pool, nil
	}
	pool, err := build()
	if err != nil {
		return nil, err
	}
	if pool != nil {
		_ = v.pools.Set(key, pool)
	}
	return pool, nil
}

func poolOf(certs []*x509.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool
}

func decodeBase64(b []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(b)))
	n, err := base64.StdEncoding.Decode(out, b)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}
