package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/bonsai/api/http/presenter"
	"github.com/artem13815/bonsai/pkg/auth"
)

const principalKey = "principal"

// RequireAuth runs the authorization gate on the Authorization header and
// stores the resolved principal for the handler.
func RequireAuth(gate *auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := gate.RequireAuth(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return presenter.FromError(c, err)
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// Principal returns the caller stored by RequireAuth, or a zero principal.
func Principal(c *fiber.Ctx) auth.Principal {
	p, _ := c.Locals(principalKey).(auth.Principal)
	return p
}
