package authz

import (
	"context"
	"time"

	"github.com/astro-web3/todo-service/internal/domain/authz"
	"github.com/astro-web3/todo-service/pkg/metrics"
	"github.com/astro-web3/todo-service/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

const operationAuthorize = "authorize"

type Service interface {
	Check(ctx context.Context, authHeader string) *authz.Decision
}

type service struct {
	domainService authz.Service
	metrics       *metrics.Metrics
}

func NewService(domainService authz.Service, m *metrics.Metrics) Service {
	return &service{
		domainService: domainService,
		metrics:       m,
	}
}

func (s *service) Check(ctx context.Context, authHeader string) *authz.Decision {
	ctx, span := tracer.Start(ctx, "app.authz.Check")
	defer span.End()

	start := time.Now()
	defer s.metrics.ObserveLatency(operationAuthorize, start)

	decision := s.domainService.Decide(ctx, authHeader)

	if decision.Allow {
		span.SetAttributes(attribute.Bool("authz.allowed", true))
	} else {
		span.SetAttributes(
			attribute.Bool("authz.allowed", false),
			attribute.String("authz.reason", string(decision.Reason)),
		)
	}

	s.metrics.RecordDecision(decision.Effect())
	s.metrics.RecordOutcome(operationAuthorize, decision.Reason != authz.ReasonInternal)

	return decision
}
