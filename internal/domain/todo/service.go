package todo

import (
	"context"
)

type Service interface {
	CreateTodo(ctx context.Context, userID, name, dueDate string) (*Todo, error)

	ListTodos(ctx context.Context, userID string) ([]*Todo, error)

	UpdateTodo(ctx context.Context, userID, todoID string, fields Fields) error

	DeleteTodo(ctx context.Context, userID, todoID string) error
}
