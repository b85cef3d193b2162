package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"portfolio-api/internal/handlers"
)

func main() {
	lambda.Start(handlers.Health)
}
