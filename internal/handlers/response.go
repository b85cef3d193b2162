package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"portfolio-api/internal/apperrors"

	"github.com/aws/aws-lambda-go/events"
)

// CORS values sent on every response.
const (
	AllowOrigin  = "*"
	AllowHeaders = "Content-Type,x-api-key"
	AllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
)

// CORSHeaders returns a fresh copy of the cross-origin header set.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  AllowOrigin,
		"Access-Control-Allow-Headers": AllowHeaders,
		"Access-Control-Allow-Methods": AllowMethods,
	}
}

func jsonHeaders() map[string]string {
	h := CORSHeaders()
	h["Content-Type"] = "application/json"
	return h
}

func jsonResp(status int, v any) (events.APIGatewayV2HTTPResponse, error) {
	b, err := json.Marshal(v)
	if err != nil {
		b = []byte(`{"error":"Internal error"}`)
		status = http.StatusInternalServerError
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    jsonHeaders(),
		Body:       string(b),
	}, nil
}

func errResp(status int, msg string) (events.APIGatewayV2HTTPResponse, error) {
	return jsonResp(status, map[string]any{
		"error": msg,
	})
}

// errorResp maps a classified error onto its status and client message.
func errorResp(err error) (events.APIGatewayV2HTTPResponse, error) {
	return errResp(apperrors.KindOf(err).StatusCode(), apperrors.PublicMessage(err))
}

func noContent() (events.APIGatewayV2HTTPResponse, error) {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusNoContent,
		Headers:    CORSHeaders(),
		Body:       "",
	}, nil
}

// Preflight answers an OPTIONS request with the CORS header set.
func Preflight() events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusOK,
		Headers:    jsonHeaders(),
		Body:       "",
	}
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
}

// Health is the liveness handler, shared by the server and cmd/health.
func Health(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return jsonResp(http.StatusOK, HealthResponse{
		OK:      true,
		Service: "portfolio-api",
	})
}
