package authz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	bearerPrefix  = "Bearer "
	jwtSeparators = 2
)

// ClaimsVerifier validates an Authorization header value and returns the
// verified claims, or an *AuthError.
type ClaimsVerifier interface {
	Verify(authHeader string) (*Claims, error)
}

// Verifier checks RS256 bearer tokens against a SigningCredential. It holds
// no mutable state and is safe for concurrent use.
type Verifier struct {
	credential *SigningCredential
	parser     *jwt.Parser
}

type verifierOptions struct {
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

type VerifierOption func(*verifierOptions)

// WithIssuer requires the iss claim to equal issuer.
func WithIssuer(issuer string) VerifierOption {
	return func(o *verifierOptions) { o.issuer = issuer }
}

// WithAudience requires the aud claim to contain audience.
func WithAudience(audience string) VerifierOption {
	return func(o *verifierOptions) { o.audience = audience }
}

// WithLeeway tolerates clock skew on exp, nbf and iat.
func WithLeeway(leeway time.Duration) VerifierOption {
	return func(o *verifierOptions) { o.leeway = leeway }
}

// WithClock overrides the time source used for temporal checks.
func WithClock(now func() time.Time) VerifierOption {
	return func(o *verifierOptions) { o.now = now }
}

// NewVerifier pins verification to RS256. Expiry is mandatory; nbf and iat
// are enforced when present.
func NewVerifier(credential *SigningCredential, opts ...VerifierOption) *Verifier {
	o := verifierOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(o.leeway),
		jwt.WithTimeFunc(o.now),
	}
	if o.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(o.issuer))
	}
	if o.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(o.audience))
	}

	return &Verifier{
		credential: credential,
		parser:     jwt.NewParser(parserOpts...),
	}
}

// Verify extracts the bearer token from authHeader and verifies it.
func (v *Verifier) Verify(authHeader string) (*Claims, error) {
	token, err := BearerToken(authHeader)
	if err != nil {
		return nil, err
	}
	return v.ParseToken(token)
}

// ParseToken verifies a raw token.
func (v *Verifier) ParseToken(token string) (*Claims, error) {
	if strings.Count(token, ".") != jwtSeparators {
		return nil, newAuthError(ReasonMalformed, ErrTokenStructure)
	}

	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, v.keyFunc); err != nil {
		return nil, newAuthError(classify(err), err)
	}

	switch claims.Subject {
	case "":
		return nil, newAuthError(ReasonInvalidClaims, ErrMissingSubject)
	case SentinelSubject:
		return nil, newAuthError(ReasonInvalidClaims, ErrReservedSubject)
	}

	return claims, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (any, error) {
	if token.Method != jwt.SigningMethodRS256 {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedMethod, token.Header["alg"])
	}
	return v.credential.PublicKey(), nil
}

// classify maps a parser error onto a Reason. Temporal errors are checked
// before the generic invalid-claims error they are joined with.
func classify(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ReasonNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return ReasonInvalidClaims
	default:
		return ReasonMalformed
	}
}

// BearerToken returns the token following a case-insensitive "Bearer "
// prefix.
func BearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", newAuthError(ReasonMissingOrMalformedHeader, ErrMissingHeader)
	}

	if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", newAuthError(ReasonMissingOrMalformedHeader, ErrInvalidScheme)
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if token == "" {
		return "", newAuthError(ReasonMissingOrMalformedHeader, ErrEmptyToken)
	}

	return token, nil
}
