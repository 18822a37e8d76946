package todo

import (
	"context"
)

// Repository is the item store. Get, Update and Delete return
// ErrTodoNotFound for a missing item; Update and Delete decide that
// atomically with the write. Any other error is a store fault and is
// propagated as is.
type Repository interface {
	Get(ctx context.Context, key Key) (*Todo, error)
	Put(ctx context.Context, todo *Todo) error
	Update(ctx context.Context, key Key, update *CompiledUpdate) error
	Delete(ctx context.Context, key Key) error
	QueryByUserID(ctx context.Context, userID string) ([]*Todo, error)
}
