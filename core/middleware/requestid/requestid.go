package requestid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the request id on responses (and is honored on requests,
// so a caller can propagate its own id through the system).
const Header = "X-Request-Id"

// New returns a middleware that assigns every request a unique id, stores it
// in the context locals under "request_id" and echoes it in the response
// header.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals("request_id", rid)
		c.Set(Header, rid)
		return c.Next()
	}
}
