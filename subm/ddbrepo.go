package subm

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guregu/dynamo/v2"
	"github.com/qacker/backend/srvcerror"
)

const (
	UserIDIndex = "user_id-index"
	TaskIDIndex = "task_id-index"
)

// SubmRow is the stored shape of a submission document.
type SubmRow struct {
	ID             string    `dynamo:"id,hash"`
	TaskID         string    `dynamo:"task_id" index:"task_id-index,hash"`
	UserID         string    `dynamo:"user_id" index:"user_id-index,hash"`
	AnswerLink     string    `dynamo:"answer_link"`
	SubmittedAt    time.Time `dynamo:"submitted_at"`
	WorkingMinutes int       `dynamo:"working_minutes"`
	ScoreDelta     int       `dynamo:"score_delta"`
	IsLate         bool      `dynamo:"is_late"`
}

type DynamoDbSubmRepo struct {
	submTable dynamo.Table
}

func NewDynamoDbSubmRepo(ddbClient *dynamodb.Client, tableName string) *DynamoDbSubmRepo {
	db := dynamo.NewFromIface(ddbClient)
	return &DynamoDbSubmRepo{
		submTable: db.Table(tableName),
	}
}

func (r *DynamoDbSubmRepo) StoreSubm(ctx context.Context, s Submission) error {
	row := SubmRow{
		ID:             s.ID,
		TaskID:         s.TaskID,
		UserID:         s.UserID,
		AnswerLink:     s.AnswerLink,
		SubmittedAt:    s.SubmittedAt,
		WorkingMinutes: s.WorkingMinutes,
		ScoreDelta:     s.ScoreDelta,
		IsLate:         s.IsLate,
	}
	if err := r.submTable.Put(row).Run(ctx); err != nil {
		return srvcerror.ErrStore(fmt.Errorf("put submission %s: %w", s.ID, err))
	}
	return nil
}

func (r *DynamoDbSubmRepo) ListSubms(ctx context.Context) ([]Submission, error) {
	var rows []SubmRow
	if err := r.submTable.Scan().All(ctx, &rows); err != nil {
		return nil, srvcerror.ErrStore(fmt.Errorf("scan submissions: %w", err))
	}
	return toDomainList(rows), nil
}

func (r *DynamoDbSubmRepo) ListSubmsByUser(ctx context.Context, userID string) ([]Submission, error) {
	var rows []SubmRow
	err := r.submTable.Get("user_id", userID).Index(UserIDIndex).All(ctx, &rows)
	if err != nil {
		return nil, srvcerror.ErrStore(fmt.Errorf("query submissions of user %s: %w", userID, err))
	}
	return toDomainList(rows), nil
}

func (r *DynamoDbSubmRepo) ListSubmsByTask(ctx context.Context, taskID string) ([]Submission, error) {
	var rows []SubmRow
	err := r.submTable.Get("task_id", taskID).Index(TaskIDIndex).All(ctx, &rows)
	if err != nil {
		return nil, srvcerror.ErrStore(fmt.Errorf("query submissions of task %s: %w", taskID, err))
	}
	return toDomainList(rows), nil
}

// toDomainList orders rows by submission time since scans come back unordered.
func toDomainList(rows []SubmRow) []Submission {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SubmittedAt.Before(rows[j].SubmittedAt)
	})
	res := make([]Submission, 0, len(rows))
	for _, row := range rows {
		res = append(res, Submission{
			ID:             row.ID,
			TaskID:         row.TaskID,
			UserID:         row.UserID,
			AnswerLink:     row.AnswerLink,
			SubmittedAt:    row.SubmittedAt,
			WorkingMinutes: row.WorkingMinutes,
			ScoreDelta:     row.ScoreDelta,
			IsLate:         row.IsLate,
		})
	}
	return res
}

// CreateDynamoDbTable creates the on-demand submissions table with its indexes.
func CreateDynamoDbTable(ctx context.Context, ddbClient *dynamodb.Client, tableName string) error {
	db := dynamo.NewFromIface(ddbClient)
	return db.CreateTable(tableName, SubmRow{}).OnDemand(true).Run(ctx)
}
