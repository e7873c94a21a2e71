package handler

import (
	"go-inventory-core/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.service.GetUsers()
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(users)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	user, err := h.service.GetUser(id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	user, err := h.service.CreateUser(&req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "User created", "data": user})
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	var req struct {
		UserName string `json:"user_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	user, err := h.service.UpdateUser(id, req.UserName)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "User updated", "data": user})
}

// ChangePassword sets a new password for a user without requiring the old
// one. Admin-only; self-service resets go through /auth/reset-password.
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Password must not be empty"})
	}
	if err := h.service.ChangePassword(id, req.Password); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	if err := h.service.DeleteUser(id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
