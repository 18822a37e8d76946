package todo_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/astro-web3/todo-service/internal/domain/todo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileUpdate_Empty(t *testing.T) {
	for _, fields := range []todo.Fields{nil, {}} {
		compiled, err := todo.CompileUpdate(fields)
		assert.Nil(t, compiled)
		require.ErrorIs(t, err, todo.ErrNoFieldsProvided)

		var updateErr *todo.UpdateError
		require.True(t, errors.As(err, &updateErr))
		assert.Equal(t, todo.ReasonNoFieldsProvided, updateErr.Reason)
		assert.Contains(t, err.Error(), "no fields provided")
	}
}

func TestCompileUpdate_ReservedAndPlainFields(t *testing.T) {
	compiled, err := todo.CompileUpdate(todo.Fields{"name": "buy milk", "done": true, "notes": "x"})
	require.NoError(t, err)

	assert.Equal(t, "SET #done = :done, #name = :name, notes = :notes", compiled.Expression)
	assert.Equal(t, map[string]string{"#name": "name", "#done": "done", "notes": "notes"}, compiled.Names)
	assert.Equal(t, map[string]any{":name": "buy milk", ":done": true, ":notes": "x"}, compiled.Values)
	assert.Equal(t, map[string]string{"#name": "name", "#done": "done"}, compiled.Placeholders())
}

func TestCompileUpdate_EveryReservedWordIsAliased(t *testing.T) {
	for _, name := range []string{"name", "done", "dueDate", "attachmentUrl"} {
		assert.True(t, todo.IsReserved(name), name)
		assert.Equal(t, "#"+name, todo.Alias(name))
	}
	assert.False(t, todo.IsReserved("notes"))
	assert.False(t, todo.IsReserved("Name"), "membership is case sensitive")
	assert.Equal(t, "notes", todo.Alias("notes"))
}

func TestCompileUpdate_PlaceholdersDerivedFromFieldNames(t *testing.T) {
	fields := todo.Fields{"name": "a", "dueDate": "2024-05-01", "attachmentUrl": "https://x", "priority": 3}
	compiled, err := todo.CompileUpdate(fields)
	require.NoError(t, err)

	require.Len(t, compiled.Names, len(fields))
	require.Len(t, compiled.Values, len(fields))
	for name, value := range fields {
		alias := todo.Alias(name)
		assert.Equal(t, name, compiled.Names[alias])
		assert.Equal(t, value, compiled.Values[":"+name])
		assert.Contains(t, compiled.Expression, alias+" = :"+name)
	}
	assert.Equal(t, len(fields)-1, strings.Count(compiled.Expression, ", "))
}

func TestCompileUpdate_Deterministic(t *testing.T) {
	fields := todo.Fields{"name": "buy milk", "done": true, "notes": "x", "dueDate": "2024-01-01"}

	first, err := todo.CompileUpdate(fields)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := todo.CompileUpdate(fields)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompileUpdate_ApplyIsIdempotent(t *testing.T) {
	fields := todo.Fields{"name": "buy milk", "done": true, "notes": "x"}
	first, err := todo.CompileUpdate(fields)
	require.NoError(t, err)
	second, err := todo.CompileUpdate(fields)
	require.NoError(t, err)

	once := map[string]any{"userId": "u1", "todoId": "t1", "name": "old", "done": false}
	first.Apply(once)

	twice := map[string]any{"userId": "u1", "todoId": "t1", "name": "old", "done": false}
	first.Apply(twice)
	second.Apply(twice)

	assert.Equal(t, once, twice)
	assert.Equal(t, map[string]any{"userId": "u1", "todoId": "t1", "name": "buy milk", "done": true, "notes": "x"}, once)
}

func TestCompileUpdate_InvalidFieldName(t *testing.T) {
	for _, name := range []string{"", "has space", "a.b", "#name", ":x", "1st", "with-dash"} {
		_, err := todo.CompileUpdate(todo.Fields{name: "v"})
		require.ErrorIs(t, err, todo.ErrInvalidFieldName, "field %q", name)

		var updateErr *todo.UpdateError
		require.True(t, errors.As(err, &updateErr))
		assert.Equal(t, todo.ReasonInvalidFieldName, updateErr.Reason)
		assert.Equal(t, name, updateErr.Field)
	}
}
