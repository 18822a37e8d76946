package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/astro-web3/todo-service/internal/domain/todo"
	"github.com/astro-web3/todo-service/pkg/tracer"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	queryByUserExpression = todo.AttrUserID + " = :userId"
	itemExistsCondition   = "attribute_exists(" + todo.AttrTodoID + ")"
)

// TodoRepository stores todos in a table keyed by (userId, todoId) with a
// secondary index on userId.
type TodoRepository struct {
	client      Client
	table       string
	userIDIndex string
}

func NewTodoRepository(client Client, table, userIDIndex string) *TodoRepository {
	return &TodoRepository{
		client:      client,
		table:       table,
		userIDIndex: userIDIndex,
	}
}

func (r *TodoRepository) startSpan(ctx context.Context, operation string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "infra.dynamo."+operation, trace.WithAttributes(
		attribute.String("db.system", "dynamodb"),
		attribute.String("db.operation", operation),
		attribute.String("aws.dynamodb.table_names", r.table),
	))
}

func (r *TodoRepository) Get(ctx context.Context, key todo.Key) (*todo.Todo, error) {
	ctx, span := r.startSpan(ctx, "GetItem")
	defer span.End()

	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal todo key: %w", err)
	}

	out, err := r.client.GetItem(ctx, &ddb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       av,
	})
	if err != nil {
		tracer.Fail(span, err)
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, todo.ErrTodoNotFound
	}

	var t todo.Todo
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal todo: %w", err)
	}

	return &t, nil
}

func (r *TodoRepository) Put(ctx context.Context, t *todo.Todo) error {
	ctx, span := r.startSpan(ctx, "PutItem")
	defer span.End()

	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("failed to marshal todo: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &ddb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		tracer.Fail(span, err)
		return fmt.Errorf("failed to put todo: %w", err)
	}

	return nil
}

// Update applies the compiled SET expression as one UpdateItem call, so
// either every field changes or none does. The call is conditional on the
// item existing so it never creates a partial item.
func (r *TodoRepository) Update(ctx context.Context, key todo.Key, update *todo.CompiledUpdate) error {
	ctx, span := r.startSpan(ctx, "UpdateItem")
	defer span.End()

	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return fmt.Errorf("failed to marshal todo key: %w", err)
	}

	values, err := attributevalue.MarshalMap(update.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal update values: %w", err)
	}

	input := &ddb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       av,
		UpdateExpression:          aws.String(update.Expression),
		ConditionExpression:       aws.String(itemExistsCondition),
		ExpressionAttributeValues: values,
	}
	// The store rejects identity entries and unused names, so only aliases
	// are sent.
	if names := update.Placeholders(); len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return todo.ErrTodoNotFound
		}
		tracer.Fail(span, err)
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return nil
}

// Delete is conditional on the item existing so a missing todo is reported
// instead of silently succeeding.
func (r *TodoRepository) Delete(ctx context.Context, key todo.Key) error {
	ctx, span := r.startSpan(ctx, "DeleteItem")
	defer span.End()

	av, err := attributevalue.MarshalMap(key)
	if err != nil {
		return fmt.Errorf("failed to marshal todo key: %w", err)
	}

	if _, err := r.client.DeleteItem(ctx, &ddb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 av,
		ConditionExpression: aws.String(itemExistsCondition),
	}); err != nil {
		if isConditionFailed(err) {
			return todo.ErrTodoNotFound
		}
		tracer.Fail(span, err)
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return nil
}

func isConditionFailed(err error) bool {
	var conditionFailed *types.ConditionalCheckFailedException
	return errors.As(err, &conditionFailed)
}

func (r *TodoRepository) QueryByUserID(ctx context.Context, userID string) ([]*todo.Todo, error) {
	ctx, span := r.startSpan(ctx, "Query")
	defer span.End()

	out, err := r.client.Query(ctx, &ddb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(r.userIDIndex),
		KeyConditionExpression: aws.String(queryByUserExpression),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		tracer.Fail(span, err)
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}

	todos := make([]*todo.Todo, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &todos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal todos: %w", err)
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	return todos, nil
}
