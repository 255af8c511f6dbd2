package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestWrapGenAIError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      string
		temporary bool
	}{
		{
			name: "unauthorized",
			err:  genai.APIError{Code: http.StatusUnauthorized, Message: "bad key", Status: "UNAUTHENTICATED"},
			code: ErrorCodeInvalidAPIKey,
		},
		{
			name: "unknown model",
			err:  genai.APIError{Code: http.StatusNotFound, Message: "no such model", Status: "NOT_FOUND"},
			code: ErrorCodeModelNotFound,
		},
		{
			name:      "rate limited",
			err:       genai.APIError{Code: http.StatusTooManyRequests, Message: "slow down", Status: "RESOURCE_EXHAUSTED"},
			code:      ErrorCodeRateLimited,
			temporary: true,
		},
		{
			name:      "server error",
			err:       genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded", Status: "UNAVAILABLE"},
			code:      ErrorCodeServiceUnavailable,
			temporary: true,
		},
		{
			name:      "wrapped api error",
			err:       fmt.Errorf("call: %w", genai.APIError{Code: http.StatusBadRequest, Message: "bad", Status: "INVALID_ARGUMENT"}),
			code:      ErrorCodeInvalidRequest,
			temporary: false,
		},
		{
			name:      "transport failure",
			err:       errors.New("connection refused"),
			code:      ErrorCodeNetwork,
			temporary: true,
		},
		{
			name:      "cancelled request",
			err:       context.Canceled,
			code:      ErrorCodeNetwork,
			temporary: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapGenAIError(tt.err)

			assert.Equal(t, tt.code, ErrorCode(wrapped))
			assert.Equal(t, tt.temporary, IsTemporary(wrapped))
		})
	}
}

func TestWrapGenAIError_KeepsCancellationVisible(t *testing.T) {
	wrapped := WrapGenAIError(fmt.Errorf("do: %w", context.Canceled))

	assert.ErrorIs(t, wrapped, context.Canceled)
}

func TestWrapGenAIError_Nil(t *testing.T) {
	assert.NoError(t, WrapGenAIError(nil))
}

func TestEmptyResponseError_Message(t *testing.T) {
	assert.Contains(t, EmptyResponseError{Model: "m", BlockReason: "SAFETY"}.Error(), "SAFETY")
	assert.Contains(t, EmptyResponseError{Model: "m", FinishReason: "MAX_TOKENS"}.Error(), "MAX_TOKENS")
	assert.Contains(t, EmptyResponseError{Model: "m"}.Error(), "no candidates")
	assert.False(t, IsTemporary(EmptyResponseError{}))
}

func TestErrorCode_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCodeUnknown, ErrorCode(errors.New("boom")))
}
