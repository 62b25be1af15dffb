// Package main renders uploaded invoice JSON blobs into Excel workbooks on
// S3 ObjectCreated events.
package main

import (
	"context"
	"os"

	"github.com/kylejryan/momo-invoice-backend/internal/awsutil"
	"github.com/kylejryan/momo-invoice-backend/internal/config"
	"github.com/kylejryan/momo-invoice-backend/internal/invoice"
	"github.com/kylejryan/momo-invoice-backend/internal/logging"
	"github.com/kylejryan/momo-invoice-backend/internal/s3io"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	env := config.Load()
	log := logging.New(os.Stdout, env.LogLevel, logging.JSON)

	cfg, err := awsutil.Load(context.Background(), env)
	if err != nil {
		log.Error("load aws config", "error", err)
		os.Exit(1)
	}

	tr := invoice.NewTransformer(env, &s3io.Store{S3: awsutil.NewS3(cfg, env)}, log, nil)
	lambda.Start(tr.Handle)
}
