package handler

import (
	"bytes"
	"io"
	"time"

	"go-inventory-core/internal/model"
	"go-inventory-core/internal/repository"
	"go-inventory-core/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// GetTransactions lists transactions newest-first. Query parameters:
// sku_id, offset, begin, end (RFC3339). The page size is the configured
// max transaction fetch count; clients page by increasing offset until
// total is reached.
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	filter := repository.TransactionFilter{
		SkuID:           c.QueryInt("sku_id", 0),
		Offset:          c.QueryInt("offset", 0),
		IncludeInactive: c.QueryBool("include_inactive", false),
	}
	if begin := c.Query("begin"); begin != "" {
		t, err := time.Parse(time.RFC3339, begin)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid begin timestamp"})
		}
		filter.Begin = t
	}
	if end := c.Query("end"); end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid end timestamp"})
		}
		filter.End = t
	}

	page, err := h.service.GetTransactions(filter)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(page)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	tr, err := h.service.GetTransaction(id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(tr)
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var tr model.Transaction
	if err := c.BodyParser(&tr); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	// the recording user comes from the session, not the payload
	tr.UserID = getUserID(c)

	if err := h.service.RecordTransaction(&tr, getUserName(c)); err != nil {
		return errorJSON(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Transaction recorded", "data": tr})
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	var tr model.Transaction
	if err := c.BodyParser(&tr); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	updated, err := h.service.UpdateTransaction(id, &tr)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": updated})
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := paramInt(c, "id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	if err := h.service.DeleteTransaction(id); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}

// ImportEmrTransactions records Sell transactions from an uploaded EMR
// consumption export. Accepts a multipart "file" field or the raw export as
// the request body.
func (h *TransactionHandler) ImportEmrTransactions(c *fiber.Ctx) error {
	var src io.Reader
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Failed to open uploaded file"})
		}
		defer f.Close()
		src = f
	} else {
		src = bytes.NewReader(c.Body())
	}

	result, err := h.service.ImportEmrConsumption(c.Context(), src, getUserID(c), getUserName(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(201).JSON(result)
}

func (h *TransactionHandler) SaveTransactions(c *fiber.Ctx) error {
	var staged []service.StagedTransaction
	if err := c.BodyParser(&staged); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := h.service.SaveTransactions(c.Context(), staged); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transactions saved"})
}
