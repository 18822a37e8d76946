package todo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/astro-web3/todo-service/pkg/logger"
	"github.com/google/uuid"
)

type service struct {
	repo  Repository
	now   func() time.Time
	newID func() string
}

func NewService(repo Repository) Service {
	return &service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (s *service) CreateTodo(ctx context.Context, userID, name, dueDate string) (*Todo, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if name == "" {
		return nil, ErrMissingName
	}

	todo := &Todo{
		UserID:    userID,
		TodoID:    s.newID(),
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Name:      name,
		DueDate:   dueDate,
		Done:      false,
	}

	if err := s.repo.Put(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	logger.DebugContext(ctx, "todo stored",
		slog.String("user_id", userID),
		slog.String("todo_id", todo.TodoID),
	)

	return todo, nil
}

func (s *service) ListTodos(ctx context.Context, userID string) ([]*Todo, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	todos, err := s.repo.QueryByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	if todos == nil {
		return []*Todo{}, nil
	}
	return todos, nil
}

// UpdateTodo validates and compiles fields before touching the store so a
// bad request is reported without a round trip. The store write is
// conditional on the item existing, so no read precedes it.
func (s *service) UpdateTodo(ctx context.Context, userID, todoID string, fields Fields) error {
	if userID == "" {
		return ErrMissingUserID
	}
	if err := ValidateFields(fields); err != nil {
		return err
	}

	compiled, err := CompileUpdate(fields)
	if err != nil {
		return err
	}

	key := Key{UserID: userID, TodoID: todoID}
	if err := s.repo.Update(ctx, key, compiled); err != nil {
		return err
	}

	logger.DebugContext(ctx, "todo updated",
		slog.String("todo_id", todoID),
		slog.String("expression", compiled.Expression),
	)

	return nil
}

func (s *service) DeleteTodo(ctx context.Context, userID, todoID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	return s.repo.Delete(ctx, Key{UserID: userID, TodoID: todoID})
}
