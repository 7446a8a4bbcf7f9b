// Package ddbtest connects tests to a DynamoDB Local instance.
package ddbtest

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const EndpointEnv = "DYNAMODB_TEST_ENDPOINT"

// Client skips the test unless DYNAMODB_TEST_ENDPOINT is set.
func Client(t *testing.T) *dynamodb.Client {
	t.Helper()
	endpoint := os.Getenv(EndpointEnv)
	if endpoint == "" {
		t.Skipf("%s not set", EndpointEnv)
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("local"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
	)
	require.NoError(t, err)

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}

// Table creates a uniquely named table with create and drops it when the
// test ends.
func Table(t *testing.T, client *dynamodb.Client, prefix string,
	create func(ctx context.Context, client *dynamodb.Client, name string) error,
) string {
	t.Helper()
	ctx := context.Background()
	name := prefix + "-" + uuid.NewString()
	require.NoError(t, create(ctx, client, name))
	t.Cleanup(func() {
		client.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{TableName: aws.String(name)})
	})
	return name
}
