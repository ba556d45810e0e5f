package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/meguminnnnnnnnn/go-openai"
	ollama "github.com/ollama/ollama/api"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/arturoeanton/scout/internal/port"
)

// classify converts a provider SDK error into a port.ProviderError. The raw error is
// logged here and kept as the cause; callers only see the classified message.
func classify(service, provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	kind := kindForStatus(statusCode(err))
	slog.Error("provider call failed", "service", service, "provider", provider, "kind", kind, "error", err)
	return port.NewProviderError(service, kind, err)
}

// statusCode extracts an HTTP-equivalent status from the SDK error shapes in use, or 0.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	var ollamaErr ollama.StatusError
	if errors.As(err, &ollamaErr) {
		return ollamaErr.StatusCode
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unauthenticated:
			return http.StatusUnauthorized
		case codes.PermissionDenied:
			return http.StatusForbidden
		case codes.ResourceExhausted:
			return http.StatusTooManyRequests
		case codes.InvalidArgument:
			return http.StatusBadRequest
		}
	}
	return 0
}

func kindForStatus(code int) port.ErrorKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return port.KindAuth
	case http.StatusTooManyRequests:
		return port.KindRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return port.KindInvalidInput
	default:
		return port.KindUnavailable
	}
}
