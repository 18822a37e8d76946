package authz

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/astro-web3/todo-service/internal/infra/cache"
	"github.com/astro-web3/todo-service/pkg/logger"
)

// Service builds authorization decisions from raw Authorization header
// values. Decide never fails: every verification error becomes a deny.
type Service interface {
	Decide(ctx context.Context, authHeader string) *Decision
}

type service struct {
	verifier      ClaimsVerifier
	decisionCache cache.DecisionCache
	cacheTTL      time.Duration
	now           func() time.Time
}

func NewService(verifier ClaimsVerifier) Service {
	return &service{
		verifier: verifier,
		now:      time.Now,
	}
}

// NewServiceWithCache remembers allow decisions for at most cacheTTL and
// never beyond the token's own expiry.
func NewServiceWithCache(verifier ClaimsVerifier, decisionCache cache.DecisionCache, cacheTTL time.Duration) Service {
	return &service{
		verifier:      verifier,
		decisionCache: decisionCache,
		cacheTTL:      cacheTTL,
		now:           time.Now,
	}
}

func (s *service) Decide(ctx context.Context, authHeader string) (decision *Decision) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "authorization fault recovered", slog.String("panic", fmt.Sprint(r)))
			decision = deny(ReasonInternal)
		}
	}()

	token, err := BearerToken(authHeader)
	if err != nil {
		return s.deny(ctx, "", err)
	}

	tokenHash := cache.HashToken(token)
	if cached := s.lookup(ctx, tokenHash); cached != nil {
		logger.DebugContext(ctx, "authorization served from cache", logger.Secret("token", token))
		return allow(cached.SubjectID)
	}

	claims, err := s.verifier.Verify(authHeader)
	if err != nil {
		return s.deny(ctx, token, err)
	}

	s.remember(ctx, tokenHash, claims)

	logger.InfoContext(ctx, "user was authorized",
		slog.String("subject", claims.Subject),
		logger.Secret("token", token),
	)

	return allow(claims.Subject)
}

// deny logs the reason kind and a token fingerprint only.
func (s *service) deny(ctx context.Context, token string, err error) *Decision {
	reason := ReasonOf(err)
	logger.WarnContext(ctx, "user not authorized",
		slog.String("reason", string(reason)),
		logger.Secret("token", token),
		logger.Error(err),
	)
	return deny(reason)
}

func (s *service) lookup(ctx context.Context, tokenHash string) *cache.CachedDecision {
	if s.decisionCache == nil {
		return nil
	}

	cached, err := s.decisionCache.Get(ctx, tokenHash)
	if err != nil {
		logger.WarnContext(ctx, "failed to get decision from cache, will verify token", logger.Error(err))
		return nil
	}
	if cached == nil || cached.SubjectID == "" || cached.SubjectID == SentinelSubject {
		return nil
	}
	if !s.now().Before(time.Unix(cached.ExpiresAt, 0)) {
		return nil
	}

	return cached
}

func (s *service) remember(ctx context.Context, tokenHash string, claims *Claims) {
	if s.decisionCache == nil || claims.ExpiresAt == nil {
		return
	}

	ttl := s.cacheTTL
	if remaining := claims.ExpiresAt.Sub(s.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	value := &cache.CachedDecision{
		SubjectID: claims.Subject,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if err := s.decisionCache.Set(ctx, tokenHash, value, ttl); err != nil {
		logger.WarnContext(ctx, "failed to set decision cache", logger.Error(err))
	}
}
