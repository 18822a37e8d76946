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

const (
	OperationCreate = "createTodo"
	OperationUpdate = "updateTodo"
	OperationDelete = "deleteTodo"
	OperationList   = "getTodos"
)

type CommandService struct {
	domainService tododomain.Service
	metrics       *metrics.Metrics
}

func NewCommandService(domainService tododomain.Service, m *metrics.Metrics) *CommandService {
	return &CommandService{
		domainService: domainService,
		metrics:       m,
	}
}

func (s *CommandService) CreateTodo(ctx context.Context, userID, name, dueDate string) (*tododomain.Todo, error) {
	ctx, span := tracer.Start(ctx, "app.todo.CreateTodo")
	defer span.End()
	defer s.metrics.ObserveLatency(OperationCreate, time.Now())

	span.SetAttributes(attribute.String("todo.user_id", userID))

	logger.InfoContext(ctx, "creating todo", slog.String("user_id", userID))

	t, err := s.domainService.CreateTodo(ctx, userID, name, dueDate)
	s.metrics.RecordOutcome(OperationCreate, err == nil)
	if err != nil {
		tracer.Fail(span, err)
		logger.ErrorContext(ctx, "failed to create todo", logger.Error(err))
		return nil, err
	}

	span.SetAttributes(attribute.String("todo.id", t.TodoID))
	logger.InfoContext(ctx, "todo created", slog.String("todo_id", t.TodoID))

	return t, nil
}

func (s *CommandService) UpdateTodo(ctx context.Context, userID, todoID string, fields tododomain.Fields) error {
	ctx, span := tracer.Start(ctx, "app.todo.UpdateTodo")
	defer span.End()
	defer s.metrics.ObserveLatency(OperationUpdate, time.Now())

	span.SetAttributes(
		attribute.String("todo.user_id", userID),
		attribute.String("todo.id", todoID),
		attribute.Int("todo.field_count", len(fields)),
	)

	logger.InfoContext(ctx, "updating todo",
		slog.String("user_id", userID),
		slog.String("todo_id", todoID),
	)

	err := s.domainService.UpdateTodo(ctx, userID, todoID, fields)
	s.metrics.RecordOutcome(OperationUpdate, err == nil)
	if err != nil {
		tracer.Fail(span, err)
		logger.WarnContext(ctx, "failed to update todo", slog.String("todo_id", todoID), logger.Error(err))
		return err
	}

	logger.InfoContext(ctx, "todo updated", slog.String("todo_id", todoID))
	return nil
}

func (s *CommandService) DeleteTodo(ctx context.Context, userID, todoID string) error {
	ctx, span := tracer.Start(ctx, "app.todo.DeleteTodo")
	defer span.End()
	defer s.metrics.ObserveLatency(OperationDelete, time.Now())

	span.SetAttributes(
		attribute.String("todo.user_id", userID),
		attribute.String("todo.id", todoID),
	)

	logger.InfoContext(ctx, "deleting todo",
		slog.String("user_id", userID),
		slog.String("todo_id", todoID),
	)

	err := s.domainService.DeleteTodo(ctx, userID, todoID)
	s.metrics.RecordOutcome(OperationDelete, err == nil)
	if err != nil {
		tracer.Fail(span, err)
		logger.WarnContext(ctx, "failed to delete todo", slog.String("todo_id", todoID), logger.Error(err))
		return err
	}

	logger.InfoContext(ctx, "todo deleted", slog.String("todo_id", todoID))
	return nil
}
