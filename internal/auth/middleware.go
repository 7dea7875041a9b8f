package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aldoetobex/legal-case-backend/internal/policy"
	"github.com/aldoetobex/legal-case-backend/internal/users"
	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

const bearerPrefix = "Bearer "

// TokenValidator is the slice of Authority the middleware needs.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*Claims, error)
}

// UserLoader resolves the token subject to a current user record.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// BearerToken extracts the raw token from "Authorization: Bearer <token>".
func BearerToken(c *fiber.Ctx) (string, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
	return tok, tok != ""
}

/* ============================== Middleware ============================== */

// RequireAuth validates an access token and loads the caller's roles from the
// user record, so role changes apply without re-issuing tokens.
func RequireAuth(tokens TokenValidator, loader UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := BearerToken(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
		}

		claims, err := tokens.Validate(c.UserContext(), raw)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
			}
			return err
		}

		id, _ := claims.UserID()
		u, err := loader.GetByID(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "User not found")
			}
			return err
		}

		SetUser(c, u)
		return c.Next()
	}
}

// RequireRole passes callers holding at least one of roles.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !MustCaller(c).HasAny(roles...) {
			return fiber.NewError(fiber.StatusForbidden, "Unauthorized")
		}
		return c.Next()
	}
}

/* ============================ Request locals ============================ */

// SetUser stores the authenticated user in request locals.
func SetUser(c *fiber.Ctx, u *models.User) {
	c.Locals("userID", u.ID)
	c.Locals("caller", policy.CallerOf(u))
	c.Locals("user", u)
}

// MustUserID reads the authenticated user ID from context or panics (programming error).
func MustUserID(c *fiber.Ctx) uuid.UUID {
	if v, ok := c.Locals("userID").(uuid.UUID); ok {
		return v
	}
	panic(errors.New("user not in context"))
}

// MustCaller reads the authenticated caller from context or panics (programming error).
func MustCaller(c *fiber.Ctx) policy.Caller {
	if v, ok := c.Locals("caller").(policy.Caller); ok {
		return v
	}
	panic(errors.New("caller not in context"))
}

// MustUser returns the user record loaded by RequireAuth.
func MustUser(c *fiber.Ctx) *models.User {
	if v, ok := c.Locals("user").(*models.User); ok {
		return v
	}
	panic(errors.New("user not in context"))
}
