package handler

import (
	"go-inventory-core/internal/model"
	"go-inventory-core/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SkuHandler struct {
	service service.SkuService
}

func NewSkuHandler(s service.SkuService) *SkuHandler {
	return &SkuHandler{service: s}
}

func (h *SkuHandler) GetSkus(c *fiber.Ctx) error {
	itemID := c.QueryInt("item_id", 0)
	includeInactive := c.QueryBool("include_inactive", false)
	skus, err := h.service.GetSkus(itemID, includeInactive)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(skus)
}

func (h *SkuHandler) GetSku(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid SKU ID"})
	}
	sku, err := h.service.GetSku(id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(sku)
}

func (h *SkuHandler) CreateSku(c *fiber.Ctx) error {
	var sku model.SKU
	if err := c.BodyParser(&sku); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.CreateSku(&sku); err != nil {
		return errorJSON(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "SKU created", "data": sku})
}

func (h *SkuHandler) UpdateSku(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid SKU ID"})
	}
	var sku model.SKU
	if err := c.BodyParser(&sku); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.service.UpdateSku(id, &sku)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "SKU updated", "data": updated})
}

func (h *SkuHandler) DeleteSku(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid SKU ID"})
	}
	if err := h.service.DeleteSku(id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "SKU deleted"})
}

// CheckQty reports whether a root SKU's qty equals the sum of its children.
func (h *SkuHandler) CheckQty(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid SKU ID"})
	}
	check, err := h.service.CheckQty(id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(check)
}

func (h *SkuHandler) GetLowStock(c *fiber.Ctx) error {
	skus, err := h.service.LowStock()
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(skus)
}

func (h *SkuHandler) SaveSkus(c *fiber.Ctx) error {
	var staged []service.StagedSku
	if err := c.BodyParser(&staged); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.SaveSkus(c.Context(), staged); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "SKUs saved"})
}
