package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"portfolio-api/internal/app"
)

func main() {
	a, err := app.Bootstrap(context.Background())
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	lambda.Start(a.Portfolios.Route)
}
