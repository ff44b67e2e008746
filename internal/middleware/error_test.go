package middleware_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"interview-prep/internal/domain"
	"interview-prep/internal/middleware"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := map[domain.ErrorCode]int{
		domain.CodeNotFound:             404,
		domain.CodeInvalidInput:         400,
		domain.CodeAPIKeyMissing:        400,
		domain.CodeQuizAlreadySubmitted: 400,
		domain.CodeUnauthorized:         401,
		domain.CodeForbidden:            403,
		domain.CodeLLMKeyInvalid:        403,
		domain.CodeConflict:             409,
		domain.CodeTooManyRequests:      429,
		domain.CodeLLMQuotaExceeded:     429,
		domain.CodeLLMServiceError:      500,
		domain.CodeLLMBadResponse:       500,
		domain.CodeInternal:             500,
	}
	for code, want := range tests {
		assert.Equal(t, want, middleware.StatusFor(code), string(code))
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/validation", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewMissingFieldError("email")}
	})
	app.Get("/blocked", func(c *fiber.Ctx) error {
		return domain.NewTooManyRequestsError("Too many failed attempts").WithContext("retryAfterMinutes", 60)
	})
	app.Get("/quota", func(c *fiber.Ctx) error {
		return domain.ClassifyLLMError(errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED"))
	})
	app.Get("/unparseable", func(c *fiber.Ctx) error {
		return domain.NewLLMBadResponseError(errors.New("invalid character '}'"))
	})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("driver exploded") })

	t.Run("validation errors list every field", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/validation", nil))
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		var body middleware.ValidationErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, string(domain.CodeValidation), body.Code)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "email", body.Errors[0].Field)
	})

	t.Run("domain error carries details", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/blocked", nil))
		require.NoError(t, err)
		assert.Equal(t, 429, resp.StatusCode)
		body := decodeError(t, resp.Body)
		assert.Equal(t, "Too many failed attempts", body.Message)
		assert.EqualValues(t, 60, body.Details["retryAfterMinutes"])
	})

	t.Run("llm quota maps to 429 with a static message", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/quota", nil))
		require.NoError(t, err)
		assert.Equal(t, 429, resp.StatusCode)
		assert.Equal(t, "Gemini API quota exceeded. Please try again later", decodeError(t, resp.Body).Message)
	})

	t.Run("unparseable llm reply is a server failure", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/unparseable", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		body := decodeError(t, resp.Body)
		assert.Equal(t, "Could not parse the AI response", body.Message)
		assert.Equal(t, string(domain.CodeLLMBadResponse), body.Code)
	})

	t.Run("unknown errors hide their cause", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
		assert.Equal(t, "Server error", decodeError(t, resp.Body).Message)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/nowhere", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}
