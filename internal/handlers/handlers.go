// Package handlers exposes the feature modules over HTTP. Every failure path
// ends in a JSON message and a consistent status; nothing propagates past
// here.
package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"gudang/internal/apperr"
	"gudang/internal/middleware"
	"gudang/internal/notify"
	"gudang/internal/session"
)

// requireScope fetches the scope resolved by the auth middleware.
func requireScope(c *fiber.Ctx) (session.Scope, error) {
	scope, ok := middleware.ScopeFromCtx(c)
	if !ok {
		return session.Scope{}, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "No session scope resolved",
		})
	}
	return scope, nil
}

// respondError maps application errors onto HTTP statuses. Validation
// failures are the caller's to fix; write rejections are surfaced as
// transient notices since the next snapshot is authoritative either way.
func respondError(c *fiber.Ctx, notices *notify.Center, err error, message string) error {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   verr.Error(),
			"field":   verr.Field,
		})
	}

	var werr *apperr.WriteError
	if errors.As(err, &werr) {
		if notices != nil {
			notices.Post(notify.Error, message, werr.Error())
		}
		status := fiber.StatusInternalServerError
		if strings.Contains(werr.Error(), "not found") {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"message": message,
			"error":   werr.Error(),
		})
	}

	var aerr *apperr.AuthError
	if errors.As(err, &aerr) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": message,
			"error":   aerr.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
