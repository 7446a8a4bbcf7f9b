package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/guregu/dynamo/v2"
	"github.com/qacker/backend/srvcerror"
)

// UserRow is the stored shape of a user document.
type UserRow struct {
	ID        string    `dynamo:"id,hash"`
	Name      string    `dynamo:"name"`
	Role      string    `dynamo:"role"`
	Score     int       `dynamo:"score"`
	CreatedAt time.Time `dynamo:"created_at"`
}

func (row UserRow) toDomain() User {
	return User{
		ID:        row.ID,
		Name:      row.Name,
		Role:      Role(row.Role),
		Score:     row.Score,
		CreatedAt: row.CreatedAt,
	}
}

// DynamoDbUserRepo stores users in a DynamoDB table keyed by "id".
type DynamoDbUserRepo struct {
	ddbClient  *dynamodb.Client
	tableName  string
	usersTable dynamo.Table
}

func NewDynamoDbUserRepo(ddbClient *dynamodb.Client, tableName string) *DynamoDbUserRepo {
	db := dynamo.NewFromIface(ddbClient)
	return &DynamoDbUserRepo{
		ddbClient:  ddbClient,
		tableName:  tableName,
		usersTable: db.Table(tableName),
	}
}

func (r *DynamoDbUserRepo) StoreUser(ctx context.Context, u User) error {
	row := UserRow{
		ID:        u.ID,
		Name:      u.Name,
		Role:      string(u.Role),
		Score:     u.Score,
		CreatedAt: u.CreatedAt,
	}
	err := r.usersTable.Put(row).If("attribute_not_exists('id')").Run(ctx)
	if err != nil {
		if dynamo.IsCondCheckFailed(err) {
			return ErrUserExists()
		}
		return srvcerror.ErrStore(fmt.Errorf("put user %s: %w", u.ID, err))
	}
	return nil
}

func (r *DynamoDbUserRepo) GetUser(ctx context.Context, id string) (User, error) {
	var row UserRow
	err := r.usersTable.Get("id", id).One(ctx, &row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return User{}, ErrUserNotFound()
		}
		return User{}, srvcerror.ErrStore(fmt.Errorf("get user %s: %w", id, err))
	}
	return row.toDomain(), nil
}

func (r *DynamoDbUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	var rows []UserRow
	err := r.usersTable.Scan().All(ctx, &rows)
	if err != nil {
		return nil, srvcerror.ErrStore(fmt.Errorf("scan users: %w", err))
	}
	res := make([]User, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res, nil
}

// AddScore issues "ADD score :delta" so concurrent writers never lose updates.
func (r *DynamoDbUserRepo) AddScore(ctx context.Context, id string, delta int) (int, error) {
	upd := expression.Add(expression.Name("score"), expression.Value(delta))
	cond := expression.AttributeExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build score update expression: %w", err)
	}

	out, err := r.ddbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       userKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return 0, ErrUserNotFound()
		}
		return 0, srvcerror.ErrStore(fmt.Errorf("add score to user %s: %w", id, err))
	}

	var score int
	if err := attributevalue.Unmarshal(out.Attributes["score"], &score); err != nil {
		return 0, fmt.Errorf("failed to unmarshal updated score: %w", err)
	}
	return score, nil
}

func (r *DynamoDbUserRepo) SetScore(ctx context.Context, id string, score int) error {
	upd := expression.Set(expression.Name("score"), expression.Value(score))
	cond := expression.AttributeExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build score overwrite expression: %w", err)
	}

	_, err = r.ddbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       userKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return ErrUserNotFound()
		}
		return srvcerror.ErrStore(fmt.Errorf("set score of user %s: %w", id, err))
	}
	return nil
}

func userKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

// CreateDynamoDbTable creates the on-demand users table with its indexes.
func CreateDynamoDbTable(ctx context.Context, ddbClient *dynamodb.Client, tableName string) error {
	db := dynamo.NewFromIface(ddbClient)
	return db.CreateTable(tableName, UserRow{}).OnDemand(true).Run(ctx)
}
