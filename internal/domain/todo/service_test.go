package todo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/astro-web3/todo-service/internal/domain/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	items     map[todo.Key]*todo.Todo
	updates   []*todo.CompiledUpdate
	deleted   []todo.Key
	getErr    error
	putErr    error
	updateErr error
	queryErr  error
}

func newMockRepository(items ...*todo.Todo) *mockRepository {
	m := &mockRepository{items: make(map[todo.Key]*todo.Todo)}
	for _, it := range items {
		m.items[it.Key()] = it
	}
	return m
}

func (m *mockRepository) Get(_ context.Context, key todo.Key) (*todo.Todo, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	it, ok := m.items[key]
	if !ok {
		return nil, todo.ErrTodoNotFound
	}
	return it, nil
}

func (m *mockRepository) Put(_ context.Context, t *todo.Todo) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.items[t.Key()] = t
	return nil
}

func (m *mockRepository) Update(_ context.Context, key todo.Key, update *todo.CompiledUpdate) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.items[key]; !ok {
		return todo.ErrTodoNotFound
	}
	m.updates = append(m.updates, update)
	return nil
}

func (m *mockRepository) Delete(_ context.Context, key todo.Key) error {
	if _, ok := m.items[key]; !ok {
		return todo.ErrTodoNotFound
	}
	m.deleted = append(m.deleted, key)
	delete(m.items, key)
	return nil
}

func (m *mockRepository) QueryByUserID(_ context.Context, userID string) ([]*todo.Todo, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []*todo.Todo
	for key, it := range m.items {
		if key.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func TestService_CreateTodo(t *testing.T) {
	repo := newMockRepository()
	svc := todo.NewService(repo)

	created, err := svc.CreateTodo(context.Background(), "auth0|1", "buy milk", "2024-06-01")
	require.NoError(t, err)

	assert.Equal(t, "auth0|1", created.UserID)
	assert.NotEmpty(t, created.TodoID)
	assert.NotEmpty(t, created.CreatedAt)
	assert.Equal(t, "buy milk", created.Name)
	assert.False(t, created.Done)
	assert.Same(t, created, repo.items[created.Key()])
}

func TestService_CreateTodo_Validation(t *testing.T) {
	svc := todo.NewService(newMockRepository())

	_, err := svc.CreateTodo(context.Background(), "", "x", "")
	assert.ErrorIs(t, err, todo.ErrMissingUserID)

	_, err = svc.CreateTodo(context.Background(), "u", "", "")
	assert.ErrorIs(t, err, todo.ErrMissingName)
}

func TestService_CreateTodo_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("throttled")
	repo := newMockRepository()
	repo.putErr = storeErr

	_, err := todo.NewService(repo).CreateTodo(context.Background(), "u", "x", "")
	assert.ErrorIs(t, err, storeErr)
}

func TestService_ListTodos(t *testing.T) {
	repo := newMockRepository(
		&todo.Todo{UserID: "u1", TodoID: "a"},
		&todo.Todo{UserID: "u2", TodoID: "b"},
	)
	svc := todo.NewService(repo)

	todos, err := svc.ListTodos(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "a", todos[0].TodoID)

	empty, err := svc.ListTodos(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestService_UpdateTodo(t *testing.T) {
	repo := newMockRepository(&todo.Todo{UserID: "u1", TodoID: "a"})
	svc := todo.NewService(repo)

	err := svc.UpdateTodo(context.Background(), "u1", "a", todo.Fields{"done": true})
	require.NoError(t, err)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, "SET #done = :done", repo.updates[0].Expression)
}

func TestService_UpdateTodo_NoFields(t *testing.T) {
	repo := newMockRepository(&todo.Todo{UserID: "u1", TodoID: "a"})
	repo.getErr = errors.New("store must not be called")

	err := todo.NewService(repo).UpdateTodo(context.Background(), "u1", "a", todo.Fields{})
	require.ErrorIs(t, err, todo.ErrNoFieldsProvided)
	assert.Empty(t, repo.updates)
}

func TestService_UpdateTodo_DoesNotReadBeforeWrite(t *testing.T) {
	repo := newMockRepository(&todo.Todo{UserID: "u1", TodoID: "a"})
	repo.getErr = errors.New("store must not be read")
	svc := todo.NewService(repo)

	require.NoError(t, svc.UpdateTodo(context.Background(), "u1", "a", todo.Fields{"done": true}))
	require.NoError(t, svc.DeleteTodo(context.Background(), "u1", "a"))
}

func TestService_UpdateTodo_FieldValidation(t *testing.T) {
	tests := []struct {
		name       string
		fields     todo.Fields
		wantReason todo.UpdateReason
		wantErr    error
		wantField  string
	}{
		{name: "created at", fields: todo.Fields{"createdAt": "bogus"}, wantReason: todo.ReasonInvalidFieldName, wantErr: todo.ErrFieldNotMutable, wantField: "createdAt"},
		{name: "unknown field", fields: todo.Fields{"unknownField": 1.0}, wantReason: todo.ReasonInvalidFieldName, wantErr: todo.ErrFieldNotMutable, wantField: "unknownField"},
		{name: "sort key", fields: todo.Fields{"todoId": "b"}, wantReason: todo.ReasonInvalidFieldName, wantErr: todo.ErrKeyFieldUpdate, wantField: "todoId"},
		{name: "done as string", fields: todo.Fields{"done": "yes"}, wantReason: todo.ReasonInvalidFieldValue, wantErr: todo.ErrInvalidFieldType, wantField: "done"},
		{name: "empty name", fields: todo.Fields{"name": ""}, wantReason: todo.ReasonInvalidFieldValue, wantErr: todo.ErrInvalidFieldType, wantField: "name"},
		{name: "numeric due date", fields: todo.Fields{"dueDate": 20240101.0}, wantReason: todo.ReasonInvalidFieldValue, wantErr: todo.ErrInvalidFieldType, wantField: "dueDate"},
		{name: "null attachment", fields: todo.Fields{"attachmentUrl": nil}, wantReason: todo.ReasonInvalidFieldValue, wantErr: todo.ErrInvalidFieldType, wantField: "attachmentUrl"},
		{name: "one bad among good", fields: todo.Fields{"done": true, "name": "ok", "notes": "x"}, wantReason: todo.ReasonInvalidFieldName, wantErr: todo.ErrFieldNotMutable, wantField: "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository(&todo.Todo{UserID: "u1", TodoID: "a"})

			err := todo.NewService(repo).UpdateTodo(context.Background(), "u1", "a", tt.fields)

			var updateErr *todo.UpdateError
			require.True(t, errors.As(err, &updateErr))
			assert.Equal(t, tt.wantReason, updateErr.Reason)
			assert.Equal(t, tt.wantField, updateErr.Field)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.updates)
		})
	}
}

func TestService_UpdateTodo_AllMutableFields(t *testing.T) {
	repo := newMockRepository(&todo.Todo{UserID: "u1", TodoID: "a"})

	err := todo.NewService(repo).UpdateTodo(context.Background(), "u1", "a", todo.Fields{
		"name":          "buy milk",
		"dueDate":       "2024-06-01",
		"done":          true,
		"attachmentUrl": "https://files/a",
	})
	require.NoError(t, err)
	require.Len(t, repo.updates, 1)
	assert.Equal(t, "SET #attachmentUrl = :attachmentUrl, #done = :done, #dueDate = :dueDate, #name = :name", repo.updates[0].Expression)
}

func TestService_UpdateTodo_KeyFieldRejected(t *testing.T) {
	repo := newMockRepository(&todo.Todo{UserID: "u1", TodoID: "a"})

	err := todo.NewService(repo).UpdateTodo(context.Background(), "u1", "a", todo.Fields{"userId": "u2"})
	require.ErrorIs(t, err, todo.ErrKeyFieldUpdate)
	assert.Empty(t, repo.updates)
}

func TestService_UpdateTodo_NotFound(t *testing.T) {
	repo := newMockRepository()

	err := todo.NewService(repo).UpdateTodo(context.Background(), "u1", "missing", todo.Fields{"done": true})
	require.ErrorIs(t, err, todo.ErrTodoNotFound)
	assert.Empty(t, repo.updates)
}

func TestService_UpdateTodo_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("conditional request failed upstream")
	repo := newMockRepository(&todo.Todo{UserID: "u1", TodoID: "a"})
	repo.updateErr = storeErr

	err := todo.NewService(repo).UpdateTodo(context.Background(), "u1", "a", todo.Fields{"done": true})
	assert.ErrorIs(t, err, storeErr)
}

func TestService_DeleteTodo(t *testing.T) {
	repo := newMockRepository(&todo.Todo{UserID: "u1", TodoID: "a"})
	svc := todo.NewService(repo)

	require.NoError(t, svc.DeleteTodo(context.Background(), "u1", "a"))
	assert.Equal(t, []todo.Key{{UserID: "u1", TodoID: "a"}}, repo.deleted)

	assert.ErrorIs(t, svc.DeleteTodo(context.Background(), "u1", "a"), todo.ErrTodoNotFound)
}

func TestService_UserScoping(t *testing.T) {
	repo := newMockRepository(&todo.Todo{UserID: "owner", TodoID: "a"})
	svc := todo.NewService(repo)

	assert.ErrorIs(t, svc.DeleteTodo(context.Background(), "intruder", "a"), todo.ErrTodoNotFound)
	assert.ErrorIs(t, svc.UpdateTodo(context.Background(), "intruder", "a", todo.Fields{"done": true}), todo.ErrTodoNotFound)
	assert.Empty(t, repo.deleted)
}
