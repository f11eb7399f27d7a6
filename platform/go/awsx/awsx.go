package awsx

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config selects the AWS region and an optional DynamoDB endpoint override
// used when developing against DynamoDB Local.
type Config struct {
	Region         string
	DynamoEndpoint string
}

// Clients bundles the AWS service clients the API depends on. They are built
// once at process start and injected into the adapters that need them.
type Clients struct {
	Dynamo *dynamodb.Client
	Lambda *lambda.Client
	S3     *s3.Client
}

// NewClients resolves credentials from the default chain and constructs the
// service clients.
func NewClients(ctx context.Context, cfg Config) (*Clients, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("aws region is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var dynamoOpts []func(*dynamodb.Options)
	if cfg.DynamoEndpoint != "" {
		dynamoOpts = append(dynamoOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		})
	}

	return &Clients{
		Dynamo: dynamodb.NewFromConfig(awsCfg, dynamoOpts...),
		Lambda: lambda.NewFromConfig(awsCfg),
		S3:     s3.NewFromConfig(awsCfg),
	}, nil
}
