package authz

import (
	"bytes"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SigningCredential is the issuer's RSA public key. It is built once at
// startup and only read afterwards.
type SigningCredential struct {
	key *rsa.PublicKey
}

// ParseSigningCredential accepts a PEM encoded X.509 certificate, PKIX
// public key or PKCS#1 public key. Error messages never contain key
// material.
func ParseSigningCredential(pemData []byte) (*SigningCredential, error) {
	if len(bytes.TrimSpace(pemData)) == 0 {
		return nil, ErrEmptyCredential
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRSAKey, err)
	}

	return NewSigningCredential(key)
}

func NewSigningCredential(key *rsa.PublicKey) (*SigningCredential, error) {
	if key == nil {
		return nil, ErrEmptyCredential
	}
	return &SigningCredential{key: key}, nil
}

func (c *SigningCredential) PublicKey() *rsa.PublicKey {
	return c.key
}
