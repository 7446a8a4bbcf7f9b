package scoreledger

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/guregu/dynamo/v2"
	"github.com/qacker/backend/srvcerror"
)

type auditRow struct {
	UserID       string    `dynamo:"user_id,hash"`
	SortKey      string    `dynamo:"entry_key,range"` // <at_rfc3339_utc>#<entry_id>
	EntryID      string    `dynamo:"entry_id"`
	Kind         string    `dynamo:"kind"`
	Delta        int       `dynamo:"delta"`
	NewScore     int       `dynamo:"new_score"`
	TaskID       string    `dynamo:"task_id,omitempty"`
	SubmissionID string    `dynamo:"submission_id,omitempty"`
	Rule         string    `dynamo:"rule,omitempty"`
	At           time.Time `dynamo:"at"`
}

// DynamoDbAudit stores entries partitioned by user, sorted by time.
type DynamoDbAudit struct {
	auditTable dynamo.Table
}

func NewDynamoDbAudit(ddbClient *dynamodb.Client, tableName string) *DynamoDbAudit {
	db := dynamo.NewFromIface(ddbClient)
	return &DynamoDbAudit{auditTable: db.Table(tableName)}
}

func (a *DynamoDbAudit) Append(ctx context.Context, e Entry) error {
	row := auditRow{
		UserID:       e.UserID,
		SortKey:      fmt.Sprintf("%s#%s", e.At.UTC().Format(time.RFC3339Nano), e.ID),
		EntryID:      e.ID,
		Kind:         string(e.Kind),
		Delta:        e.Delta,
		NewScore:     e.NewScore,
		TaskID:       e.TaskID,
		SubmissionID: e.SubmissionID,
		Rule:         e.Rule,
		At:           e.At,
	}
	if err := a.auditTable.Put(row).Run(ctx); err != nil {
		return srvcerror.ErrStore(fmt.Errorf("put audit entry %s: %w", e.ID, err))
	}
	return nil
}

func (a *DynamoDbAudit) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	var rows []auditRow
	err := a.auditTable.Get("user_id", userID).Order(dynamo.Ascending).All(ctx, &rows)
	if err != nil {
		return nil, srvcerror.ErrStore(fmt.Errorf("query audit entries of %s: %w", userID, err))
	}
	res := make([]Entry, 0, len(rows))
	for _, row := range rows {
		res = append(res, Entry{
			ID:           row.EntryID,
			UserID:       row.UserID,
			Kind:         Kind(row.Kind),
			Delta:        row.Delta,
			NewScore:     row.NewScore,
			TaskID:       row.TaskID,
			SubmissionID: row.SubmissionID,
			Rule:         row.Rule,
			At:           row.At,
		})
	}
	return res, nil
}

// CreateDynamoDbTable creates the on-demand score audit table with its indexes.
func CreateDynamoDbTable(ctx context.Context, ddbClient *dynamodb.Client, tableName string) error {
	db := dynamo.NewFromIface(ddbClient)
	return db.CreateTable(tableName, auditRow{}).OnDemand(true).Run(ctx)
}
