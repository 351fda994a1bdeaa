package security

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/greenwallet/internal/filex"
)

// ParseCertificates parses every CERTIFICATE block of a PEM bundle.
func ParseCertificates(bundle []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, bundle = pem.Decode(bundle)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		certs = append(certs, c)
	}
	if len(certs) == 0 {
		return nil, errors.New("no certificates found")
	}
	return certs, nil
}

// LoadCertificates reads a PEM bundle from path. An empty path yields no
// anchors.
func LoadCertificates(path string) ([]*x509.Certificate, error) {
	b, err := filex.ReadOptional(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trust anchors: %w", err)
	}
	if b == nil {
		return nil, nil
	}
	return ParseCertificates(b)
}
