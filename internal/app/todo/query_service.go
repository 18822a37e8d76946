package todo

import (
	"context"
	"log/slog"
	"time"

	tododomain "github.com/astro-web3/todo-service/internal/domain/todo"
	"github.com/astro-web3/todo-service/pkg/logger"
	"github.com/astro-web3/todo-service/pkg/metrics"
	"github.com/astro-web3/todo-service/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type QueryService struct {
	domainService tododomain.Service
	metrics       *metrics.Metrics
}

func NewQueryService(domainService tododomain.Service, m *metrics.Metrics) *QueryService {
	return &QueryService{
		domainService: domainService,
		metrics:       m,
	}
}

func (s *QueryService) ListTodos(ctx context.Context, userID string) ([]*tododomain.Todo, error) {
	ctx, span := tracer.Start(ctx, "app.todo.ListTodos")
	defer span.End()
	defer s.metrics.ObserveLatency(OperationList, time.Now())

	span.SetAttributes(attribute.String("todo.user_id", userID))

	logger.InfoContext(ctx, "listing todos", slog.String("user_id", userID))

	todos, err := s.domainService.ListTodos(ctx, userID)
	s.metrics.RecordOutcome(OperationList, err == nil)
	if err != nil {
		tracer.Fail(span, err)
		logger.ErrorContext(ctx, "failed to list todos", logger.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	logger.InfoContext(ctx, "todos listed", slog.Int("count", len(todos)))

	return todos, nil
}
