// Package awsutil provides utilities for loading AWS configuration and clients.
package awsutil

import (
	"context"

	"github.com/kylejryan/momo-invoice-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Seams for tests.
var (
	loadDefaultConfig = awsCfg.LoadDefaultConfig
)

// Load loads the AWS configuration for env.Region. Static credentials are used
// only when both halves are configured (LocalStack and similar).
func Load(ctx context.Context, env config.Env) (aws.Config, error) {
	opts := []func(*awsCfg.LoadOptions) error{awsCfg.WithRegion(env.Region)}
	if env.AccessKeyID != "" && env.SecretAccessKey != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(env.AccessKeyID, env.SecretAccessKey, ""),
		))
	}
	return loadDefaultConfig(ctx, opts...)
}

// NewS3 builds the long-lived S3 client. A custom endpoint (e.g.
// http://localstack:4566) switches to path-style addressing.
func NewS3(cfg aws.Config, env config.Env) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if env.EndpointURL != "" {
			o.BaseEndpoint = aws.String(env.EndpointURL)
			o.UsePathStyle = true
		}
	})
}

// NewDynamoDB builds the long-lived DynamoDB client.
func NewDynamoDB(cfg aws.Config, env config.Env) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if env.EndpointURL != "" {
			o.BaseEndpoint = aws.String(env.EndpointURL)
		}
	})
}
