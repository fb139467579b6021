package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/shopspring/decimal"

	"gudang/internal/export"
	"gudang/internal/models"
	"gudang/internal/notify"
	"gudang/internal/report"
	"gudang/internal/services"
	"gudang/internal/views"
)

// TransactionHandler serves the financial report module: the live ledger,
// entry forms, period-filtered summaries and CSV export.
type TransactionHandler struct {
	service  *services.TransactionService
	views    *views.Manager
	surface  *notify.Surface
	exporter *export.Exporter
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(service *services.TransactionService, vm *views.Manager, surface *notify.Surface, exporter *export.Exporter) *TransactionHandler {
	return &TransactionHandler{
		service:  service,
		views:    vm,
		surface:  surface,
		exporter: exporter,
	}
}

// RegisterRoutes registers the financial report routes.
func (h *TransactionHandler) RegisterRoutes(router fiber.Router) {
	txRoutes := router.Group("/transactions")
	txRoutes.Get("/", h.HandleList)
	txRoutes.Get("/summary", h.HandleSummary)
	txRoutes.Post("/", h.HandleCreate)
	txRoutes.Put("/:id", h.HandleUpdate)
	txRoutes.Delete("/:id", h.HandleRequestDelete)
	txRoutes.Post("/export", h.HandleExport)
}

// transactionRequest is the ledger entry form. The date is a plain calendar
// date.
type transactionRequest struct {
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (r transactionRequest) toInput() (services.TransactionInput, error) {
	var date time.Time
	if r.Date != "" {
		var err error
		date, err = time.Parse(time.DateOnly, r.Date)
		if err != nil {
			return services.TransactionInput{}, fmt.Errorf("date must be formatted YYYY-MM-DD: %w", err)
		}
	}
	return services.TransactionInput{
		Date:        date,
		Type:        models.TransactionType(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
	}, nil
}

func (h *TransactionHandler) period(c *fiber.Ctx) (report.Period, error) {
	p, err := report.ParsePeriod(c.Query("period"))
	if err != nil {
		return p, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown period",
			"error":   err.Error(),
		})
	}
	return p, nil
}

// HandleList returns the ledger entries in the requested period, most recent
// first. Period defaults to monthly.
func (h *TransactionHandler) HandleList(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	p, err := h.period(c)
	if err != nil {
		return err
	}
	view, err := h.views.Finance(scope)
	if err != nil {
		return respondError(c, h.surface.Notices(scope), err, "Could not open ledger view")
	}
	return c.JSON(fiber.Map{
		"loaded":       view.Loaded(),
		"period":       p.String(),
		"transactions": view.Transactions(p, time.Now()),
	})
}

// HandleSummary returns income, expense and profit for the requested period.
func (h *TransactionHandler) HandleSummary(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	p, err := h.period(c)
	if err != nil {
		return err
	}
	view, err := h.views.Finance(scope)
	if err != nil {
		return respondError(c, h.surface.Notices(scope), err, "Could not open ledger view")
	}
	return c.JSON(fiber.Map{
		"loaded":  view.Loaded(),
		"period":  p.String(),
		"summary": view.Summary(p, time.Now()),
	})
}

// HandleCreate validates the submitted form and stores a new ledger entry.
func (h *TransactionHandler) HandleCreate(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing transaction body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid transaction",
			"error":   err.Error(),
		})
	}

	notices := h.surface.Notices(scope)
	id, err := h.service.Create(scope, input)
	if err != nil {
		return respondError(c, notices, err, "Could not save transaction")
	}
	notices.Post(notify.Success, "Transaction Saved", "Transaction added successfully.")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Transaction added successfully",
		"id":      id,
	})
}

// HandleUpdate replaces the mutable fields of an existing ledger entry.
func (h *TransactionHandler) HandleUpdate(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req transactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	input, err := req.toInput()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid transaction",
			"error":   err.Error(),
		})
	}

	notices := h.surface.Notices(scope)
	if err := h.service.Update(scope, c.Params("id"), input); err != nil {
		return respondError(c, notices, err, "Could not update transaction")
	}
	notices.Post(notify.Success, "Transaction Saved", "Transaction updated successfully.")
	return c.JSON(fiber.Map{
		"message": "Transaction updated successfully",
	})
}

// HandleRequestDelete opens the two-step delete flow for a ledger entry.
func (h *TransactionHandler) HandleRequestDelete(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	// The param string aliases fiber's request buffer, which is recycled
	// once this handler returns; copy it before the closure captures it.
	id := utils.CopyString(c.Params("id"))

	notices := h.surface.Notices(scope)
	confirmation, err := h.surface.Confirmer(scope).Request(
		"Confirm Deletion",
		"Are you sure you want to delete this transaction? This action cannot be undone.",
		func() error {
			if err := h.service.Delete(scope, id); err != nil {
				notices.Post(notify.Error, "Delete Failed", err.Error())
				return err
			}
			notices.Post(notify.Success, "Transaction Deleted", "Transaction deleted successfully.")
			return nil
		},
	)
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Another confirmation is already pending",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":      "Deletion requires confirmation",
		"confirmation": confirmation,
	})
}

// HandleExport writes the period's ledger as a CSV file. An empty period is
// not an error; it posts a "no data" notice and saves nothing.
func (h *TransactionHandler) HandleExport(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	p, err := h.period(c)
	if err != nil {
		return err
	}
	notices := h.surface.Notices(scope)
	view, err := h.views.Finance(scope)
	if err != nil {
		return respondError(c, notices, err, "Could not open ledger view")
	}

	rows := views.FinanceReportRows(view.Transactions(p, time.Now()))
	filename := fmt.Sprintf("financial_report_%s_%s.csv", p, time.Now().Format(time.DateOnly))
	saved, err := h.exporter.ExportTable(rows, filename, notices)
	if err != nil {
		return respondError(c, notices, err, "Could not export report")
	}
	if !saved {
		return c.JSON(fiber.Map{
			"message": "There is no data to export",
			"saved":   false,
		})
	}
	return c.JSON(fiber.Map{
		"message":  "Report exported",
		"saved":    true,
		"filename": filename,
	})
}
