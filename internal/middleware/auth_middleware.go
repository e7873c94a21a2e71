package middleware

import (
	"strings"

	"go-inventory-core/internal/repository"
	"go-inventory-core/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the bearer token and stores the user identity in
// the request context. The user must still exist in the database.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}

		if _, err := userRepo.FindByID(claims.UserID); err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User no longer exists"})
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_name", claims.UserName)
		c.Locals("privilege", claims.Privilege)
		return c.Next()
	}
}

// RequireAdmin allows only users from the configured admin group. Must run
// after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if privilege, _ := c.Locals("privilege").(string); privilege != "admin" {
			return c.Status(403).JSON(fiber.Map{"error": "Admin privilege required"})
		}
		return c.Next()
	}
}
