package handler

import (
	"errors"
	"strconv"

	"go-inventory-core/internal/model"
	"go-inventory-core/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func getUserID(c *fiber.Ctx) int {
	if id, ok := c.Locals("user_id").(int); ok {
		return id
	}
	return 0
}

func getUserName(c *fiber.Ctx) string {
	if name, ok := c.Locals("user_name").(string); ok {
		return name
	}
	return "unknown"
}

func paramInt(c *fiber.Ctx, name string) (int, error) {
	return strconv.Atoi(c.Params(name))
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrDuplicateName), errors.Is(err, model.ErrRowInUse):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrNonexistentItemID),
		errors.Is(err, model.ErrInactiveItemID),
		errors.Is(err, model.ErrNonexistentSkuID),
		errors.Is(err, model.ErrInactiveSkuID),
		errors.Is(err, model.ErrInvalidTrType),
		errors.Is(err, model.ErrInvalidTrQty),
		errors.Is(err, model.ErrInsufficientQty),
		errors.Is(err, model.ErrInvalidRootSku),
		errors.Is(err, service.ErrEmrMissingColumns),
		errors.Is(err, service.ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
}
