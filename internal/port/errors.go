package port

import (
	"errors"
	"fmt"
)

// Sentinel errors used across ports.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrJobNotFound      = errors.New("job not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrSpeechDisabled   = errors.New("speech synthesis is not configured")
)

// ValidationError reports empty or missing required input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Provider services that can fail behind a ProviderError.
const (
	ServiceEmbedding     = "embedding"
	ServiceChat          = "chat"
	ServiceTranscription = "transcription"
	ServiceSpeech        = "speech"
)

// ErrorKind classifies a provider failure independently of the provider.
type ErrorKind string

const (
	KindAuth         ErrorKind = "auth"
	KindRateLimit    ErrorKind = "rate_limit"
	KindInvalidInput ErrorKind = "invalid_input"
	KindUnavailable  ErrorKind = "unavailable"
	KindMalformed    ErrorKind = "malformed"
)

// ProviderError is a classified failure of an external model provider.
// The message never carries the provider payload; the cause is kept for logging.
type ProviderError struct {
	Service string
	Kind    ErrorKind
	cause   error
}

// NewProviderError wraps cause as a classified provider failure.
func NewProviderError(service string, kind ErrorKind, cause error) *ProviderError {
	return &ProviderError{Service: service, Kind: kind, cause: cause}
}

// NewEmbeddingError wraps cause as an embedding provider failure.
func NewEmbeddingError(kind ErrorKind, cause error) *ProviderError {
	return NewProviderError(ServiceEmbedding, kind, cause)
}

func (e *ProviderError) Error() string {
	switch e.Kind {
	case KindAuth:
		return e.Service + " provider rejected credentials"
	case KindRateLimit:
		return e.Service + " provider rate limit exceeded"
	case KindInvalidInput:
		return e.Service + " provider rejected the input"
	case KindMalformed:
		return e.Service + " provider returned a malformed response"
	default:
		return e.Service + " provider unavailable"
	}
}

func (e *ProviderError) Unwrap() error { return e.cause }

// IsEmbeddingError reports whether err is an embedding provider failure.
func IsEmbeddingError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Service == ServiceEmbedding
}

// IsRateLimited reports whether err is a rate-limited provider failure, so callers can back off.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == KindRateLimit
}

// RetrievalError is a document store search failure.
type RetrievalError struct {
	cause error
}

// NewRetrievalError wraps a store search failure.
func NewRetrievalError(cause error) *RetrievalError {
	return &RetrievalError{cause: cause}
}

func (e *RetrievalError) Error() string { return "retrieval: " + e.cause.Error() }

func (e *RetrievalError) Unwrap() error { return e.cause }

// DimensionMismatchError is returned when two vectors of different lengths are compared.
type DimensionMismatchError struct {
	Left, Right int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: %d != %d", e.Left, e.Right)
}
