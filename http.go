package accountd

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionContextKey is where the guard stores validated claims on the
// request context.
const SessionContextKey = "session"

// SetSessionCookie mirrors the token's validity window on an http-only,
// same-site cookie.
func SetSessionCookie(c *fiber.Ctx, name, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie deletes the cookie by expiring it in the past. The
// token itself stays valid until its embedded expiry; the server holds
// no session state to revoke.
func ClearSessionCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// TokenFromRequest extracts the raw session token from the cookie or,
// failing that, an Authorization: Bearer header.
func TokenFromRequest(c *fiber.Ctx, cookieName string) string {
	if raw := c.Cookies(cookieName); raw != "" {
		return raw
	}

	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	return ""
}

// RequireSession is the capability check run before session-bound
// operations: verify-and-extract-claims, composed explicitly by the
// transport layer. Requests without a valid, unexpired token get a 401
// and the handler never runs.
func RequireSession(tokens TokenService, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := TokenFromRequest(c, cookieName)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "authentication required",
			})
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "invalid or expired session",
			})
		}

		c.Locals(SessionContextKey, claims)
		c.SetUserContext(WithSessionContext(c.UserContext(), claims))
		return c.Next()
	}
}

// SessionFromContext returns the claims stored by RequireSession.
func SessionFromContext(c *fiber.Ctx) (*SessionClaims, error) {
	claims, ok := c.Locals(SessionContextKey).(*SessionClaims)
	if !ok || claims == nil {
		return nil, ErrUnableToFindSession
	}
	return claims, nil
}
