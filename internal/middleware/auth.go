package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/juhum/We-Go-Jim/internal/models"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "wgj_session"

type sessionFinder interface {
	Get(ctx context.Context, token string) (*models.Session, error)
}

// SessionRequired resolves the session cookie against the session store and
// passes the authenticated identity on through Locals. Anonymous requests are
// sent back to the login page and never reach the wrapped handler.
func SessionRequired(sessions sessionFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)
		if token == "" {
			return c.Redirect("/login", fiber.StatusFound)
		}

		session, err := sessions.Get(c.Context(), token)
		if err != nil {
			return c.Redirect("/login", fiber.StatusFound)
		}

		c.Locals("user_id", session.UserID)
		c.Locals("role", session.Role)

		return c.Next()
	}
}
