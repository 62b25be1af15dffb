// Package main serves the invoice REST API behind API Gateway. One function
// handles every route; the resource template selects the operation.
package main

import (
	"context"
	"os"

	"github.com/kylejryan/momo-invoice-backend/internal/awsutil"
	"github.com/kylejryan/momo-invoice-backend/internal/config"
	"github.com/kylejryan/momo-invoice-backend/internal/ddb"
	"github.com/kylejryan/momo-invoice-backend/internal/invoice"
	"github.com/kylejryan/momo-invoice-backend/internal/logging"
	"github.com/kylejryan/momo-invoice-backend/internal/s3io"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	env := config.Load()
	log := logging.New(os.Stdout, env.LogLevel, logging.JSON)

	// A bad region still starts; every operation then fails with a 500.
	cfg, err := awsutil.Load(context.Background(), env)
	if err != nil {
		log.Error("load aws config", "error", err)
		os.Exit(1)
	}

	ctrl := invoice.NewController(env,
		&s3io.Store{S3: awsutil.NewS3(cfg, env)},
		&ddb.Repo{DB: awsutil.NewDynamoDB(cfg, env), Table: env.Table},
		log,
	)
	lambda.Start(ctrl.HandleProxy)
}
