package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"gudang/internal/notify"
)

// SurfaceHandler exposes the notification surface: pending confirmations and
// dismissible notices. Every route resolves the requester's own slot and
// notice center; nothing here can read or act on another session's state.
type SurfaceHandler struct {
	surface *notify.Surface
}

// NewSurfaceHandler creates a new SurfaceHandler.
func NewSurfaceHandler(surface *notify.Surface) *SurfaceHandler {
	return &SurfaceHandler{surface: surface}
}

// RegisterRoutes registers the notification surface routes.
func (h *SurfaceHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/notices", h.HandleNotices)
	confirmRoutes := router.Group("/confirmations")
	confirmRoutes.Get("/", h.HandlePending)
	confirmRoutes.Post("/:token", h.HandleConfirm)
	confirmRoutes.Delete("/:token", h.HandleCancel)
}

// HandleNotices drains and returns the requester's pending toast notices.
func (h *SurfaceHandler) HandleNotices(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"notices": h.surface.Notices(scope).Drain(),
	})
}

// HandlePending returns the requester's confirmation awaiting a decision.
func (h *SurfaceHandler) HandlePending(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	confirmation, ok := h.surface.Confirmer(scope).Pending()
	if !ok {
		return c.JSON(fiber.Map{
			"pending": false,
		})
	}
	return c.JSON(fiber.Map{
		"pending":      true,
		"confirmation": confirmation,
	})
}

// HandleConfirm resolves the requester's pending confirmation and runs its
// action. The slot is consumed first, so the action runs at most once per
// request even if two confirms race. A token issued to another session never
// matches: each scope has its own slot.
func (h *SurfaceHandler) HandleConfirm(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	if err := h.surface.Confirmer(scope).Confirm(c.Params("token")); err != nil {
		if errors.Is(err, notify.ErrNoSuchConfirmation) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "No matching pending confirmation",
			})
		}
		return respondError(c, h.surface.Notices(scope), err, "Confirmed action failed")
	}
	return c.JSON(fiber.Map{
		"message": "Action confirmed",
	})
}

// HandleCancel drops the requester's pending confirmation without side
// effects.
func (h *SurfaceHandler) HandleCancel(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	if err := h.surface.Confirmer(scope).Cancel(c.Params("token")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No matching pending confirmation",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Action cancelled",
	})
}
