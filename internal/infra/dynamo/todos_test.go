package dynamo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/astro-web3/todo-service/internal/domain/todo"
	"github.com/astro-web3/todo-service/internal/infra/dynamo"
	"github.com/aws/aws-sdk-go-v2/aws"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	getOut    *ddb.GetItemOutput
	queryOut  *ddb.QueryOutput
	err       error
	getIn     *ddb.GetItemInput
	putIn     *ddb.PutItemInput
	updateIn  *ddb.UpdateItemInput
	deleteIn  *ddb.DeleteItemInput
	queryIn   *ddb.QueryInput
	updateErr error
	deleteErr error
}

func (f *fakeClient) GetItem(_ context.Context, in *ddb.GetItemInput, _ ...func(*ddb.Options)) (*ddb.GetItemOutput, error) {
	f.getIn = in
	if f.err != nil {
		return nil, f.err
	}
	if f.getOut == nil {
		return &ddb.GetItemOutput{}, nil
	}
	return f.getOut, nil
}

func (f *fakeClient) PutItem(_ context.Context, in *ddb.PutItemInput, _ ...func(*ddb.Options)) (*ddb.PutItemOutput, error) {
	f.putIn = in
	return &ddb.PutItemOutput{}, f.err
}

func (f *fakeClient) UpdateItem(_ context.Context, in *ddb.UpdateItemInput, _ ...func(*ddb.Options)) (*ddb.UpdateItemOutput, error) {
	f.updateIn = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &ddb.UpdateItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *ddb.DeleteItemInput, _ ...func(*ddb.Options)) (*ddb.DeleteItemOutput, error) {
	f.deleteIn = in
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &ddb.DeleteItemOutput{}, f.err
}

func (f *fakeClient) Query(_ context.Context, in *ddb.QueryInput, _ ...func(*ddb.Options)) (*ddb.QueryOutput, error) {
	f.queryIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.queryOut, nil
}

func s(v string) *types.AttributeValueMemberS {
	return &types.AttributeValueMemberS{Value: v}
}

var testKey = todo.Key{UserID: "auth0|1", TodoID: "t1"}

func expectedKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"userId": s("auth0|1"), "todoId": s("t1")}
}

func TestTodoRepository_Get(t *testing.T) {
	client := &fakeClient{getOut: &ddb.GetItemOutput{Item: map[string]types.AttributeValue{
		"userId":    s("auth0|1"),
		"todoId":    s("t1"),
		"createdAt": s("2024-01-01T00:00:00Z"),
		"name":      s("buy milk"),
		"dueDate":   s("2024-01-02"),
		"done":      &types.AttributeValueMemberBOOL{Value: true},
	}}}
	repo := dynamo.NewTodoRepository(client, "Todos", "UserIdIndex")

	got, err := repo.Get(context.Background(), testKey)
	require.NoError(t, err)

	assert.Equal(t, &todo.Todo{
		UserID: "auth0|1", TodoID: "t1", CreatedAt: "2024-01-01T00:00:00Z",
		Name: "buy milk", DueDate: "2024-01-02", Done: true,
	}, got)
	assert.Equal(t, "Todos", aws.ToString(client.getIn.TableName))
	assert.Equal(t, expectedKey(), client.getIn.Key)
}

func TestTodoRepository_GetNotFound(t *testing.T) {
	repo := dynamo.NewTodoRepository(&fakeClient{}, "Todos", "UserIdIndex")

	_, err := repo.Get(context.Background(), testKey)
	assert.ErrorIs(t, err, todo.ErrTodoNotFound)
}

func TestTodoRepository_StoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("ProvisionedThroughputExceededException")
	repo := dynamo.NewTodoRepository(&fakeClient{err: storeErr}, "Todos", "UserIdIndex")
	ctx := context.Background()

	_, err := repo.Get(ctx, testKey)
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorIs(t, repo.Put(ctx, &todo.Todo{UserID: "u", TodoID: "t"}), storeErr)
	assert.ErrorIs(t, repo.Delete(ctx, testKey), storeErr)
	_, err = repo.QueryByUserID(ctx, "u")
	assert.ErrorIs(t, err, storeErr)
}

func TestTodoRepository_Put(t *testing.T) {
	client := &fakeClient{}
	repo := dynamo.NewTodoRepository(client, "Todos", "UserIdIndex")

	require.NoError(t, repo.Put(context.Background(), &todo.Todo{UserID: "auth0|1", TodoID: "t1", Name: "n"}))

	assert.Equal(t, "Todos", aws.ToString(client.putIn.TableName))
	assert.Equal(t, s("n"), client.putIn.Item["name"])
	assert.NotContains(t, client.putIn.Item, "attachmentUrl")
}

func TestTodoRepository_Update(t *testing.T) {
	client := &fakeClient{}
	repo := dynamo.NewTodoRepository(client, "Todos", "UserIdIndex")

	compiled, err := todo.CompileUpdate(todo.Fields{"name": "buy milk", "done": true, "notes": "x"})
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), testKey, compiled))

	in := client.updateIn
	assert.Equal(t, expectedKey(), in.Key)
	assert.Equal(t, "SET #done = :done, #name = :name, notes = :notes", aws.ToString(in.UpdateExpression))
	assert.Equal(t, "attribute_exists(todoId)", aws.ToString(in.ConditionExpression))
	assert.Equal(t, map[string]string{"#name": "name", "#done": "done"}, in.ExpressionAttributeNames)
	assert.Equal(t, map[string]types.AttributeValue{
		":name":  s("buy milk"),
		":done":  &types.AttributeValueMemberBOOL{Value: true},
		":notes": s("x"),
	}, in.ExpressionAttributeValues)
}

func TestTodoRepository_UpdateWithoutAliasesOmitsNames(t *testing.T) {
	client := &fakeClient{}
	repo := dynamo.NewTodoRepository(client, "Todos", "UserIdIndex")

	compiled, err := todo.CompileUpdate(todo.Fields{"notes": "x"})
	require.NoError(t, err)
	require.NoError(t, repo.Update(context.Background(), testKey, compiled))

	assert.Nil(t, client.updateIn.ExpressionAttributeNames)
}

func TestTodoRepository_UpdateMissingItem(t *testing.T) {
	client := &fakeClient{updateErr: &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}}
	repo := dynamo.NewTodoRepository(client, "Todos", "UserIdIndex")

	compiled, err := todo.CompileUpdate(todo.Fields{"done": true})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Update(context.Background(), testKey, compiled), todo.ErrTodoNotFound)
}

func TestTodoRepository_Delete(t *testing.T) {
	client := &fakeClient{}
	repo := dynamo.NewTodoRepository(client, "Todos", "UserIdIndex")

	require.NoError(t, repo.Delete(context.Background(), testKey))
	assert.Equal(t, expectedKey(), client.deleteIn.Key)
	assert.Equal(t, "attribute_exists(todoId)", aws.ToString(client.deleteIn.ConditionExpression))
}

func TestTodoRepository_DeleteMissingItem(t *testing.T) {
	client := &fakeClient{deleteErr: &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}}
	repo := dynamo.NewTodoRepository(client, "Todos", "UserIdIndex")

	assert.ErrorIs(t, repo.Delete(context.Background(), testKey), todo.ErrTodoNotFound)
}

func TestTodoRepository_QueryByUserID(t *testing.T) {
	client := &fakeClient{queryOut: &ddb.QueryOutput{Items: []map[string]types.AttributeValue{
		{"userId": s("auth0|1"), "todoId": s("t1"), "name": s("a")},
		{"userId": s("auth0|1"), "todoId": s("t2"), "name": s("b"), "attachmentUrl": s("https://files/t2")},
	}}}
	repo := dynamo.NewTodoRepository(client, "Todos", "UserIdIndex")

	todos, err := repo.QueryByUserID(context.Background(), "auth0|1")
	require.NoError(t, err)
	require.Len(t, todos, 2)
	assert.Equal(t, "t1", todos[0].TodoID)
	assert.Equal(t, "https://files/t2", todos[1].AttachmentURL)

	in := client.queryIn
	assert.Equal(t, "UserIdIndex", aws.ToString(in.IndexName))
	assert.Equal(t, "userId = :userId", aws.ToString(in.KeyConditionExpression))
	assert.Equal(t, s("auth0|1"), in.ExpressionAttributeValues[":userId"])
}
