// Package memory is an in-process todo store for local runs and tests. It
// applies compiled updates the same way the real store evaluates them.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/astro-web3/todo-service/internal/domain/todo"
)

type item map[string]any

type TodoRepository struct {
	mu    sync.RWMutex
	items map[todo.Key]item
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{items: make(map[todo.Key]item)}
}

func (r *TodoRepository) Get(_ context.Context, key todo.Key) (*todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[key]
	if !ok {
		return nil, todo.ErrTodoNotFound
	}
	return decode(it)
}

func (r *TodoRepository) Put(_ context.Context, t *todo.Todo) error {
	it, err := encode(t)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[t.Key()] = it
	return nil
}

// Update applies all assignments or none.
func (r *TodoRepository) Update(_ context.Context, key todo.Key, update *todo.CompiledUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[key]
	if !ok {
		return todo.ErrTodoNotFound
	}

	next := make(item, len(it))
	for k, v := range it {
		next[k] = v
	}
	update.Apply(next)

	if _, err := decode(next); err != nil {
		return fmt.Errorf("update produced an invalid item: %w", err)
	}

	r.items[key] = next
	return nil
}

func (r *TodoRepository) Delete(_ context.Context, key todo.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[key]; !ok {
		return todo.ErrTodoNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *TodoRepository) QueryByUserID(_ context.Context, userID string) ([]*todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]*todo.Todo, 0)
	for key, it := range r.items {
		if key.UserID != userID {
			continue
		}
		t, err := decode(it)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}

	sort.Slice(todos, func(i, j int) bool { return todos[i].TodoID < todos[j].TodoID })
	return todos, nil
}

func encode(t *todo.Todo) (item, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal todo: %w", err)
	}
	var it item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal todo item: %w", err)
	}
	return it, nil
}

func decode(it item) (*todo.Todo, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal todo item: %w", err)
	}
	var t todo.Todo
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal todo: %w", err)
	}
	return &t, nil
}
