package db

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// LoadAWSConfig loads the default credential chain (the Lambda execution role
// when deployed) pinned to region.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx, config.WithRegion(region))
}

// NewDynamoClient builds a DynamoDB client. A non-empty endpoint points the
// client at e.g. DynamoDB Local.
func NewDynamoClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return dynamodb.NewFromConfig(cfg)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
}
