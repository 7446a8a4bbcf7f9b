package conf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const maxAwsAttempts = 5

func LoadAWS(ctx context.Context, c Config) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(c.AwsRegion),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), maxAwsAttempts)
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

// NewDynamoDbClient honours the endpoint override used for DynamoDB Local.
func NewDynamoDbClient(awsCfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// ResolveJwtKey prefers JWT_KEY and falls back to the configured secret.
func (c Config) ResolveJwtKey(ctx context.Context, awsCfg aws.Config) ([]byte, error) {
	if c.JwtKey != "" {
		return []byte(c.JwtKey), nil
	}
	if c.JwtKeySecretName == "" {
		return nil, errors.New("neither JWT_KEY nor JWT_KEY_SECRET_NAME is set")
	}
	secret, err := GetSecretFromAWS(ctx, awsCfg, c.JwtKeySecretName)
	if err != nil {
		return nil, fmt.Errorf("failed to get jwt key from aws: %w", err)
	}
	return []byte(secret), nil
}

func GetSecretFromAWS(ctx context.Context, awsCfg aws.Config, secretName string) (string, error) {
	svc := secretsmanager.NewFromConfig(awsCfg)
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	result, err := svc.GetSecretValue(ctx, input)
	if err != nil {
		return "", err
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretName)
	}
	return *result.SecretString, nil
}
