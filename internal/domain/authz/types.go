package authz

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SentinelSubject is the principal reported on every deny decision.
const SentinelSubject = "user"

const (
	PolicyVersion  = "2012-10-17"
	PolicyAction   = "execute-api:Invoke"
	PolicyResource = "*"
	EffectAllow    = "Allow"
	EffectDeny     = "Deny"
)

// Claims is the verified payload of a bearer token.
type Claims struct {
	jwt.RegisteredClaims
}

// Reason classifies why a token was rejected.
type Reason string

const (
	ReasonMissingOrMalformedHeader Reason = "MissingOrMalformedHeader"
	ReasonMalformed                Reason = "Malformed"
	ReasonInvalidSignature         Reason = "InvalidSignature"
	ReasonExpired                  Reason = "Expired"
	ReasonNotYetValid              Reason = "NotYetValid"
	ReasonInvalidClaims            Reason = "InvalidClaims"

	// ReasonInternal marks a deny produced by an unexpected fault rather
	// than by token verification. It never appears on an AuthError.
	ReasonInternal Reason = "Internal"
)

// AuthError is the expected failure of token verification.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("authorization failed: %s", e.Reason)
	}
	return fmt.Sprintf("authorization failed: %s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func newAuthError(reason Reason, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}

// ReasonOf returns the AuthError reason carried by err, or ReasonInternal
// when err is not an AuthError.
func ReasonOf(err error) Reason {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Reason
	}
	return ReasonInternal
}

var (
	ErrMissingHeader    = errors.New("no authentication header")
	ErrInvalidScheme    = errors.New("invalid authentication header")
	ErrEmptyToken       = errors.New("empty bearer token")
	ErrTokenStructure   = errors.New("token must have exactly three segments")
	ErrMissingSubject   = errors.New("token has no subject")
	ErrReservedSubject  = errors.New("token subject is reserved")
	ErrNotRSAKey        = errors.New("signing credential is not an RSA public key")
	ErrEmptyCredential  = errors.New("signing credential is empty")
	ErrUnexpectedMethod = errors.New("unexpected signing method")
)

// Decision is the outcome of authorizing one request.
type Decision struct {
	SubjectID string
	Allow     bool
	// Reason is set on deny decisions for logs and metrics only; it is
	// never rendered into the policy.
	Reason Reason
}

func allow(subject string) *Decision {
	return &Decision{SubjectID: subject, Allow: true}
}

func deny(reason Reason) *Decision {
	return &Decision{SubjectID: SentinelSubject, Allow: false, Reason: reason}
}

// Effect is the policy effect of the decision.
func (d *Decision) Effect() string {
	if d.Allow {
		return EffectAllow
	}
	return EffectDeny
}

// Policy is the gateway authorizer response.
type Policy struct {
	PrincipalID    string         `json:"principalId"`
	PolicyDocument PolicyDocument `json:"policyDocument"`
}

type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

type Statement struct {
	Action   string `json:"Action"`
	Effect   string `json:"Effect"`
	Resource string `json:"Resource"`
}

// Policy renders the decision as a gateway policy granting or denying
// invocation of every resource.
func (d *Decision) Policy() *Policy {
	return &Policy{
		PrincipalID: d.SubjectID,
		PolicyDocument: PolicyDocument{
			Version: PolicyVersion,
			Statement: []Statement{
				{
					Action:   PolicyAction,
					Effect:   d.Effect(),
					Resource: PolicyResource,
				},
			},
		},
	}
}
