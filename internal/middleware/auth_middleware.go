package middleware

import (
	"context"
	"strings"

	"interview-prep/internal/domain"
	"interview-prep/internal/dto"
	"interview-prep/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // primitive.ObjectID of the caller
	UserKey             = "user"   // *domain.User of the caller
)

// TokenAuthenticator resolves a bearer token to the account it was issued for.
// service.AuthService satisfies it.
type TokenAuthenticator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

// Protected requires a valid bearer token and stores the caller in locals.
func Protected(auth TokenAuthenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(AuthorizationHeader)
		if !strings.HasPrefix(header, BearerSchema) {
			return domain.NewUnauthorizedError("Not authorized, no token")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, BearerSchema))
		if tokenString == "" {
			return domain.NewUnauthorizedError("Not authorized, no token")
		}

		claims, err := auth.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			return domain.NewError(domain.CodeUnauthorized, "Not authorized, token failed", err)
		}
		user, err := auth.CurrentUser(c.UserContext(), claims.UserID)
		if err != nil {
			return err
		}

		c.Locals(UserIDKey, user.ID)
		c.Locals(UserKey, user)
		return c.Next()
	}
}

// AdminOnly must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || user.Role != domain.RoleAdmin {
			logger.Get().Warn("Admin route refused", zap.String("path", c.Path()), zap.String("user_id", CurrentUserID(c).Hex()))
			return domain.NewForbiddenError("Admin access required")
		}
		return c.Next()
	}
}

// CurrentUser returns the caller stored by Protected, or nil.
func CurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(UserKey).(*domain.User)
	return user
}

// CurrentUserID returns the caller's id stored by Protected, or the zero id.
func CurrentUserID(c *fiber.Ctx) primitive.ObjectID {
	id, _ := c.Locals(UserIDKey).(primitive.ObjectID)
	return id
}

// OptionalUserID is the hex id of the bearer token's subject, or "" when the
// request is anonymous or the token does not validate.
func OptionalUserID(c *fiber.Ctx, auth TokenAuthenticator) string {
	header := c.Get(AuthorizationHeader)
	if !strings.HasPrefix(header, BearerSchema) {
		return ""
	}
	claims, err := auth.ValidateJWT(c.UserContext(), strings.TrimSpace(strings.TrimPrefix(header, BearerSchema)))
	if err != nil {
		logger.Get().Debug("Optional auth: token rejected, treating as anonymous", zap.Error(err))
		return ""
	}
	return claims.UserID
}
