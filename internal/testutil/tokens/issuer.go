// Package tokens issues RS256 tokens and matching PEM certificates for
// tests that exercise bearer-token verification.
package tokens

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const keyBits = 2048

// Issuer owns an RSA key pair and a self-signed certificate wrapping the
// public half, like an identity provider's signing certificate.
type Issuer struct {
	Key     *rsa.PrivateKey
	CertPEM []byte
}

// NewIssuer generates a fresh key pair and certificate.
func NewIssuer(t testing.TB) *Issuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "issuer.test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	return &Issuer{
		Key:     key,
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}
}

// PublicKeyPEM returns the public key as a PKIX "PUBLIC KEY" block.
func (i *Issuer) PublicKeyPEM(t testing.TB) []byte {
	t.Helper()

	der, err := x509.MarshalPKIXPublicKey(&i.Key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

// Claims returns registered claims for subject valid for one hour.
func Claims(subject string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    "https://issuer.test/",
		Audience:  jwt.ClaimStrings{"todo-api"},
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
}

// Sign signs claims with RS256.
func (i *Issuer) Sign(t testing.TB, claims jwt.Claims) string {
	t.Helper()
	return i.SignWith(t, jwt.SigningMethodRS256, i.Key, claims)
}

// SignWith signs claims with an arbitrary method and key.
func (i *Issuer) SignWith(t testing.TB, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
