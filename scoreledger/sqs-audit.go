package scoreledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SqsAudit forwards every entry as a JSON message for downstream consumers.
type SqsAudit struct {
	client   *sqs.Client
	queueUrl string
}

func NewSqsAudit(client *sqs.Client, queueUrl string) *SqsAudit {
	return &SqsAudit{client: client, queueUrl: queueUrl}
}

func (a *SqsAudit) Append(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	_, err = a.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(a.queueUrl),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(e.Kind)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send audit entry %s to sqs: %w", e.ID, err)
	}
	return nil
}
