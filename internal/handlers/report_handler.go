package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"gudang/internal/export"
	"gudang/internal/notify"
	"gudang/internal/views"
)

// ReportHandler serves the dashboard and the warehouse report.
type ReportHandler struct {
	views    *views.Manager
	surface  *notify.Surface
	exporter *export.Exporter
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(vm *views.Manager, surface *notify.Surface, exporter *export.Exporter) *ReportHandler {
	return &ReportHandler{
		views:    vm,
		surface:  surface,
		exporter: exporter,
	}
}

// RegisterRoutes registers the dashboard and report routes.
func (h *ReportHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard", h.HandleDashboard)
	reportRoutes := router.Group("/reports")
	reportRoutes.Get("/products", h.HandleProductReport)
	reportRoutes.Post("/products/export", h.HandleProductExport)
}

// HandleDashboard returns the summary cards. Metrics appear only once both
// underlying subscriptions have delivered a snapshot.
func (h *ReportHandler) HandleDashboard(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	view, err := h.views.Dashboard(scope)
	if err != nil {
		return respondError(c, h.surface.Notices(scope), err, "Could not open dashboard view")
	}

	metrics, loaded := view.Metrics()
	if !loaded {
		return c.JSON(fiber.Map{
			"loaded": false,
		})
	}
	return c.JSON(fiber.Map{
		"loaded":  true,
		"metrics": metrics,
	})
}

// HandleProductReport returns the warehouse table plus the stock chart data.
func (h *ReportHandler) HandleProductReport(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	view, err := h.views.Products(scope)
	if err != nil {
		return respondError(c, h.surface.Notices(scope), err, "Could not open product view")
	}
	return c.JSON(fiber.Map{
		"loaded":   view.Loaded(),
		"products": view.Products(),
		"chart":    view.StockChart(),
	})
}

// HandleProductExport writes the catalog as a CSV file.
func (h *ReportHandler) HandleProductExport(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	notices := h.surface.Notices(scope)
	view, err := h.views.Products(scope)
	if err != nil {
		return respondError(c, notices, err, "Could not open product view")
	}

	rows := views.ProductReportRows(view.Products())
	filename := fmt.Sprintf("product_report_%s.csv", time.Now().Format(time.DateOnly))
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
