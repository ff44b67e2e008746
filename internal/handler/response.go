package handler

import (
	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/middleware"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(dto.SuccessResponse{Message: message, Data: data})
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, fiber.StatusOK, message, data)
}

// binder parses request bodies and query strings and validates them with the
// shared validator.
type binder struct {
	v *validation.Validator
}

func (b binder) body(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	return b.v.Struct(dst)
}

func (b binder) query(c *fiber.Ctx, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return domain.NewInvalidInputError("Invalid query parameters")
	}
	return b.v.Struct(dst)
}

// objectID parses a body field holding an ObjectID.
func (b binder) objectID(field, raw string) (primitive.ObjectID, error) {
	return b.v.ObjectID(field, raw)
}

// pathID returns a path parameter parsed by ValidationMiddleware.ObjectIDParams.
func pathID(c *fiber.Ctx, name string) primitive.ObjectID {
	id, _ := c.Locals(middleware.ParamKey(name)).(primitive.ObjectID)
	return id
}
