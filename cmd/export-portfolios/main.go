package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"portfolio-api/internal/app"
	"portfolio-api/internal/export"
)

func main() {
	a, err := app.Bootstrap(context.Background())
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	h := export.NewExporter(a.Store, s3.NewFromConfig(a.AWS), a.Settings.Export, a.Log)
	lambda.Start(h.Handle)
}
