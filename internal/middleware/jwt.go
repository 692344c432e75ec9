package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys populated by JWTAuth and read by handlers for audit
// attribution.
const (
	localsUserID = "user_id"
	localsEmail  = "user_email"
	localsRole   = "user_role"
)

// JWTAuth validates the bearer token and stores the acting user's identity
// in request locals. The email claim becomes the actor string on ledger
// audit fields.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token claims")
		}

		sub, _ := claims["sub"].(float64)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		if email == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token claims")
		}

		c.Locals(localsUserID, int64(sub))
		c.Locals(localsEmail, email)
		c.Locals(localsRole, role)
		return c.Next()
	}
}

// RequireRole rejects requests whose token does not carry the given role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if got, _ := c.Locals(localsRole).(string); got != role {
			return fiber.NewError(fiber.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// ActorFromCtx returns the authenticated user's email for audit fields,
// or "anonymous" on unauthenticated routes.
func ActorFromCtx(c *fiber.Ctx) string {
	if email, ok := c.Locals(localsEmail).(string); ok && email != "" {
		return email
	}
	return "anonymous"
}

// UserIDFromCtx returns the authenticated user's id, 0 if absent.
func UserIDFromCtx(c *fiber.Ctx) int64 {
	id, _ := c.Locals(localsUserID).(int64)
	return id
}
