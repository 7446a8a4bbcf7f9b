package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/guregu/dynamo/v2"
	"github.com/qacker/backend/srvcerror"
)

const AssignedToIndex = "assigned_to-index"

// TaskRow is the stored shape of a task document.
type TaskRow struct {
	ID          string `dynamo:"id,hash"`
	QuestionRef string `dynamo:"question_ref"`
	Topic       string `dynamo:"topic,omitempty"`
	AnswerDraft string `dynamo:"answer_draft,omitempty"`

	AssignedTo string    `dynamo:"assigned_to" index:"assigned_to-index,hash"`
	AssignedBy string    `dynamo:"assigned_by,omitempty"`
	AssignedAt time.Time `dynamo:"assigned_at,omitempty"`
	DueAt      time.Time `dynamo:"due_at,omitempty"`

	Status               string     `dynamo:"status"`
	MissedPenaltyApplied bool       `dynamo:"missed_penalty_applied,omitempty"`
	MissedAt             *time.Time `dynamo:"missed_at,omitempty"`
}

func (row TaskRow) toDomain() Task {
	return Task{
		ID:                   row.ID,
		QuestionRef:          row.QuestionRef,
		Topic:                row.Topic,
		AnswerDraft:          row.AnswerDraft,
		AssignedTo:           row.AssignedTo,
		AssignedBy:           row.AssignedBy,
		AssignedAt:           row.AssignedAt,
		DueAt:                row.DueAt,
		Status:               Status(row.Status),
		MissedPenaltyApplied: row.MissedPenaltyApplied,
		MissedAt:             row.MissedAt,
	}
}

func rowFromDomain(t Task) TaskRow {
	return TaskRow{
		ID:                   t.ID,
		QuestionRef:          t.QuestionRef,
		Topic:                t.Topic,
		AnswerDraft:          t.AnswerDraft,
		AssignedTo:           t.AssignedTo,
		AssignedBy:           t.AssignedBy,
		AssignedAt:           t.AssignedAt,
		DueAt:                t.DueAt,
		Status:               string(t.Status),
		MissedPenaltyApplied: t.MissedPenaltyApplied,
		MissedAt:             t.MissedAt,
	}
}

type DynamoDbTaskRepo struct {
	ddbClient  *dynamodb.Client
	tableName  string
	tasksTable dynamo.Table
}

func NewDynamoDbTaskRepo(ddbClient *dynamodb.Client, tableName string) *DynamoDbTaskRepo {
	db := dynamo.NewFromIface(ddbClient)
	return &DynamoDbTaskRepo{
		ddbClient:  ddbClient,
		tableName:  tableName,
		tasksTable: db.Table(tableName),
	}
}

func (r *DynamoDbTaskRepo) StoreTask(ctx context.Context, t Task) error {
	err := r.tasksTable.Put(rowFromDomain(t)).If("attribute_not_exists('id')").Run(ctx)
	if err != nil {
		if dynamo.IsCondCheckFailed(err) {
			return ErrTaskExists()
		}
		return srvcerror.ErrStore(fmt.Errorf("put task %s: %w", t.ID, err))
	}
	return nil
}

func (r *DynamoDbTaskRepo) GetTask(ctx context.Context, id string) (Task, error) {
	var row TaskRow
	err := r.tasksTable.Get("id", id).One(ctx, &row)
	if err != nil {
		if errors.Is(err, dynamo.ErrNotFound) {
			return Task{}, ErrTaskNotFound()
		}
		return Task{}, srvcerror.ErrStore(fmt.Errorf("get task %s: %w", id, err))
	}
	return row.toDomain(), nil
}

func (r *DynamoDbTaskRepo) ListTasks(ctx context.Context) ([]Task, error) {
	var rows []TaskRow
	if err := r.tasksTable.Scan().All(ctx, &rows); err != nil {
		return nil, srvcerror.ErrStore(fmt.Errorf("scan tasks: %w", err))
	}
	return toDomainList(rows), nil
}

func (r *DynamoDbTaskRepo) ListTasksAssignedTo(ctx context.Context, userID string) ([]Task, error) {
	var rows []TaskRow
	err := r.tasksTable.Get("assigned_to", userID).Index(AssignedToIndex).All(ctx, &rows)
	if err != nil {
		return nil, srvcerror.ErrStore(fmt.Errorf("query tasks of %s: %w", userID, err))
	}
	return toDomainList(rows), nil
}

func (r *DynamoDbTaskRepo) ListAwaitingMissedCheck(ctx context.Context) ([]Task, error) {
	var rows []TaskRow
	err := r.tasksTable.Scan().
		Filter("'status' = ? AND (attribute_not_exists('missed_penalty_applied') OR 'missed_penalty_applied' = ?)",
			string(StatusPending), false).
		All(ctx, &rows)
	if err != nil {
		return nil, srvcerror.ErrStore(fmt.Errorf("scan pending tasks: %w", err))
	}
	return toDomainList(rows), nil
}

func (r *DynamoDbTaskRepo) MarkSubmitted(ctx context.Context, id string) error {
	err := r.tasksTable.Update("id", id).
		Set("status", string(StatusSubmitted)).
		If("attribute_exists('id') AND 'status' = ?", string(StatusPending)).
		Run(ctx)
	if err != nil {
		if dynamo.IsCondCheckFailed(err) {
			return ErrTaskNotPending()
		}
		return srvcerror.ErrStore(fmt.Errorf("mark task %s submitted: %w", id, err))
	}
	return nil
}

// MarkMissed flips status, guard flag and timestamp in one conditional write,
// so two sweeps racing on the same task cannot both succeed.
func (r *DynamoDbTaskRepo) MarkMissed(ctx context.Context, id string, at time.Time) (bool, error) {
	upd := expression.Set(expression.Name("status"), expression.Value(string(StatusMissed))).
		Set(expression.Name("missed_penalty_applied"), expression.Value(true)).
		Set(expression.Name("missed_at"), expression.Value(at.UTC().Format(time.RFC3339Nano)))
	cond := expression.Name("status").Equal(expression.Value(string(StatusPending))).And(
		expression.Or(
			expression.AttributeNotExists(expression.Name("missed_penalty_applied")),
			expression.Name("missed_penalty_applied").Equal(expression.Value(false)),
		))
	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return false, fmt.Errorf("failed to build missed update expression: %w", err)
	}

	_, err = r.ddbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return false, nil
		}
		return false, srvcerror.ErrStore(fmt.Errorf("mark task %s missed: %w", id, err))
	}
	return true, nil
}

func toDomainList(rows []TaskRow) []Task {
	res := make([]Task, 0, len(rows))
	for _, row := range rows {
		res = append(res, row.toDomain())
	}
	return res
}

// CreateDynamoDbTable creates the on-demand tasks table with its indexes.
func CreateDynamoDbTable(ctx context.Context, ddbClient *dynamodb.Client, tableName string) error {
	db := dynamo.NewFromIface(ddbClient)
	return db.CreateTable(tableName, TaskRow{}).OnDemand(true).Run(ctx)
}
