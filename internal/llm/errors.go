package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// LLMError defines the interface for LLM-specific errors
type LLMError interface {
	error
	Code() string    // Error code for categorization
	Message() string // Human-readable error message
	Temporary() bool // Whether the failure may go away on its own
}

// APIError represents an error response from the Gemini API
type APIError struct {
	HTTPStatus int    `json:"http_status"`
	ErrorCode  string `json:"error_code"`
	ErrorMsg   string `json:"error_message"`
	Details    string `json:"details"`
	Retryable  bool   `json:"retryable"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s - %s", e.HTTPStatus, e.ErrorCode, e.ErrorMsg)
}

func (e APIError) Code() string {
	return e.ErrorCode
}

func (e APIError) Message() string {
	return e.ErrorMsg
}

func (e APIError) Temporary() bool {
	return e.Retryable
}

// NetworkError represents a transport failure before any API response arrived
type NetworkError struct {
	Operation string `json:"operation"`
	ErrorMsg  string `json:"error_message"`
	Wrapped   error  `json:"-"`
}

func (e NetworkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("network error during %s: %s (%v)", e.Operation, e.ErrorMsg, e.Wrapped)
	}
	return fmt.Sprintf("network error during %s: %s", e.Operation, e.ErrorMsg)
}

func (e NetworkError) Code() string {
	return ErrorCodeNetwork
}

func (e NetworkError) Message() string {
	return e.ErrorMsg
}

func (e NetworkError) Temporary() bool {
	return !errors.Is(e.Wrapped, context.Canceled)
}

func (e NetworkError) Unwrap() error {
	return e.Wrapped
}

// ConfigurationError represents a provider that cannot be used as configured
type ConfigurationError struct {
	Field    string `json:"field"`
	ErrorMsg string `json:"error_message"`
	Details  string `json:"details"`
}

func (e ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.ErrorMsg)
}

func (e ConfigurationError) Code() string {
	return ErrorCodeConfiguration
}

func (e ConfigurationError) Message() string {
	return e.ErrorMsg
}

func (e ConfigurationError) Temporary() bool {
	return false
}

// RateLimitError represents API rate limiting
type RateLimitError struct {
	ErrorMsg string `json:"error_message"`
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %s", e.ErrorMsg)
}

func (e RateLimitError) Code() string {
	return ErrorCodeRateLimited
}

func (e RateLimitError) Message() string {
	return e.ErrorMsg
}

func (e RateLimitError) Temporary() bool {
	return true
}

// EmptyResponseError is returned when the model produced no text, usually
// because the prompt or answer was blocked.
type EmptyResponseError struct {
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	BlockReason  string `json:"block_reason"`
}

func (e EmptyResponseError) Error() string {
	reason := e.BlockReason
	if reason == "" {
		reason = e.FinishReason
	}
	if reason == "" {
		reason = "no candidates"
	}
	return fmt.Sprintf("model %s returned an empty answer (%s)", e.Model, reason)
}

func (e EmptyResponseError) Code() string {
	return ErrorCodeEmptyResponse
}

func (e EmptyResponseError) Message() string {
	return e.Error()
}

func (e EmptyResponseError) Temporary() bool {
	return false
}

// Error creation helpers

// NewAPIError creates a new API error with appropriate retry logic
func NewAPIError(httpStatus int, errorCode, message, details string) APIError {
	return APIError{
		HTTPStatus: httpStatus,
		ErrorCode:  errorCode,
		ErrorMsg:   message,
		Details:    details,
		Retryable:  isRetryableHTTPStatus(httpStatus),
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(operation, message string, wrapped error) NetworkError {
	return NetworkError{
		Operation: operation,
		ErrorMsg:  message,
		Wrapped:   wrapped,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, message, details string) ConfigurationError {
	return ConfigurationError{
		Field:    field,
		ErrorMsg: message,
		Details:  details,
	}
}

// WrapGenAIError maps an error from the genai client onto the LLMError taxonomy.
func WrapGenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.Code, apiErr.Status, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fromStatus(apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message)
	}

	return NewNetworkError("generate_content", "request to the model API failed", err)
}

func fromStatus(status int, apiStatus, message string) error {
	switch status {
	case http.StatusBadRequest:
		return NewAPIError(status, ErrorCodeInvalidRequest, message, apiStatus)
	case http.StatusUnauthorized:
		return NewAPIError(status, ErrorCodeInvalidAPIKey, message, apiStatus)
	case http.StatusForbidden:
		return NewAPIError(status, ErrorCodeInsufficientQuota, message, apiStatus)
	case http.StatusNotFound:
		return NewAPIError(status, ErrorCodeModelNotFound, message, apiStatus)
	case http.StatusRequestEntityTooLarge:
		return NewAPIError(status, ErrorCodeRequestTooLarge, message, apiStatus)
	case http.StatusTooManyRequests:
		return RateLimitError{ErrorMsg: message}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return NewAPIError(status, ErrorCodeServiceUnavailable, message, apiStatus)
	default:
		return NewAPIError(status, ErrorCodeUnknown, message, apiStatus)
	}
}

// Error classification helpers

// IsTemporary reports whether err is an LLMError that may succeed later.
func IsTemporary(err error) bool {
	var llmErr LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Temporary()
	}
	return false
}

// ErrorCode returns the taxonomy code for err, or ErrorCodeUnknown.
func ErrorCode(err error) string {
	var llmErr LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Code()
	}
	return ErrorCodeUnknown
}

// isRetryableHTTPStatus determines if an HTTP status code indicates a transient error
func isRetryableHTTPStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}

// Error constants for common scenarios
const (
	ErrorCodeInvalidAPIKey      = "INVALID_API_KEY"
	ErrorCodeModelNotFound      = "MODEL_NOT_FOUND"
	ErrorCodeInsufficientQuota  = "INSUFFICIENT_QUOTA"
	ErrorCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"
	ErrorCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrorCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrorCodeEmptyResponse      = "EMPTY_RESPONSE"
	ErrorCodeNetwork            = "NETWORK_ERROR"
	ErrorCodeConfiguration      = "CONFIGURATION_ERROR"
	ErrorCodeUnknown            = "UNKNOWN_ERROR"
)
