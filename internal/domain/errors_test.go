package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLLMError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"invalid key", errors.New("googleapi: Error 400: API key not valid. Please pass a valid API key."), CodeLLMKeyInvalid},
		{"permission denied", errors.New("rpc error: code = PermissionDenied desc = PERMISSION_DENIED"), CodeLLMKeyInvalid},
		{"quota", errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"), CodeLLMQuotaExceeded},
		{"rate limit text", errors.New("you hit the rate limit"), CodeLLMQuotaExceeded},
		{"other", errors.New("connection reset by peer"), CodeLLMServiceError},
		{"already classified", ErrAPIKeyMissing, CodeAPIKeyMissing},
		{"wrapped domain error", fmt.Errorf("wrap: %w", NewInvalidInputError("x")), CodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyLLMError(tc.err)
			if assert.NotNil(t, got) {
				assert.Equal(t, tc.want, got.Code)
			}
		})
	}
	assert.Nil(t, ClassifyLLMError(nil))
}

func TestDomainError_UnwrapAndContext(t *testing.T) {
	cause := errors.New("boom")
	err := NewInternalError("failed", cause).WithContext("id", "42")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed: boom", err.Error())
	assert.Equal(t, "42", err.Context["id"])
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{NewMissingFieldError("email"), NewOutOfRangeError("limit", 500, 1, 100)}
	assert.Contains(t, errs.Error(), "email is required")
	assert.Contains(t, errs.Error(), "limit must be between 1 and 100")
}
