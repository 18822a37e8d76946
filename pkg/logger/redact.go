package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
)

const fingerprintLength = 12

// Fingerprint returns a short, non-reversible identifier for a secret so
// log lines can be correlated without carrying the secret itself.
func Fingerprint(secret string) string {
	if secret == "" {
		return "***"
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])[:fingerprintLength]
}

// Secret is a slog attribute holding the fingerprint of a secret value.
func Secret(key, secret string) slog.Attr {
	return slog.String(key, Fingerprint(secret))
}

// Error is the conventional attribute for an error value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
