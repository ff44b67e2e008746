package middleware

import (
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ValidationMiddleware checks path parameters before a handler runs.
type ValidationMiddleware struct {
	validator *validation.Validator
}

func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ObjectIDParams rejects the request unless every named path parameter is a
// valid ObjectID. Parsed ids are stored in locals under "param:<name>".
func (vm *ValidationMiddleware) ObjectIDParams(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, name := range names {
			id, err := vm.validator.ObjectID(name, c.Params(name))
			if err != nil {
				return err // rendered by ErrorHandler
			}
			c.Locals(ParamKey(name), id)
		}
		return c.Next()
	}
}

// ParamKey is the locals key an ObjectIDParams result is stored under.
func ParamKey(name string) string {
	return "param:" + name
}
