package guard

import (
	"github.com/gofiber/fiber/v2"
	jwtv4 "github.com/golang-jwt/jwt/v4"

	"github.com/launchlift/launchlift/internal/models"
	"github.com/launchlift/launchlift/internal/session"
)

// LoginPath is where unauthenticated requests are pointed.
const LoginPath = "/login"

// HomePath is where authorization failures are pointed.
const HomePath = "/"

// RequireRoles applies Decide to a request whose bearer token was already
// validated by the jwtware layer. It must be registered after that layer.
func RequireRoles(required ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := Decide(sessionFromCtx(c), required, c.OriginalURL())
		switch decision.Outcome {
		case OutcomeAllow:
			return c.Next()
		case OutcomeLogin, OutcomeWait:
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":     "authentication required",
				"redirect":  LoginPath,
				"return_to": decision.ReturnTo,
			})
		case OutcomeHome:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"redirect": HomePath,
			})
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"redirect": HomePath,
			})
		}
	}
}

// Principal returns the identity the jwtware layer authenticated, or nil.
func Principal(c *fiber.Ctx) *models.Identity {
	token, ok := c.Locals("user").(*jwtv4.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(jwtv4.MapClaims)
	if !ok {
		return nil
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return nil
	}
	return &models.Identity{ID: sub, Role: models.Role(role)}
}

func sessionFromCtx(c *fiber.Ctx) session.Session {
	identity := Principal(c)
	if identity == nil {
		return session.Session{}
	}
	token, _ := c.Locals("user").(*jwtv4.Token)
	return session.Session{Token: token.Raw, Identity: identity}
}
