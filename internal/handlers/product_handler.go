package handlers

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"gudang/internal/notify"
	"gudang/internal/services"
	"gudang/internal/views"
	"gudang/pkg/blobstore"
)

// ProductHandler serves the product management module: the live catalog,
// create/edit forms, inline stock adjustment, image upload and the
// confirmation-guarded delete.
type ProductHandler struct {
	service *services.ProductService
	views   *views.Manager
	surface *notify.Surface
	blobs   *blobstore.Store
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, vm *views.Manager, surface *notify.Surface, blobs *blobstore.Store) *ProductHandler {
	return &ProductHandler{
		service: service,
		views:   vm,
		surface: surface,
		blobs:   blobs,
	}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Post("/", h.HandleCreate)
	productRoutes.Put("/:id", h.HandleUpdate)
	productRoutes.Post("/:id/stock", h.HandleAdjustStock)
	productRoutes.Delete("/:id", h.HandleRequestDelete)
	router.Post("/uploads", h.HandleUpload)
}

// HandleList returns the catalog ordered by name.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
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
	})
}

// HandleCreate validates the submitted form and stores a new product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	notices := h.surface.Notices(scope)
	id, err := h.service.Create(scope, input)
	if err != nil {
		return respondError(c, notices, err, "Could not save product")
	}
	notices.Post(notify.Success, "Product Saved", "Product added successfully.")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product added successfully",
		"id":      id,
	})
}

// HandleUpdate replaces the mutable fields of an existing product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	notices := h.surface.Notices(scope)
	if err := h.service.Update(scope, c.Params("id"), input); err != nil {
		return respondError(c, notices, err, "Could not update product")
	}
	notices.Post(notify.Success, "Product Saved", "Product updated successfully.")
	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
	})
}

// HandleAdjustStock applies a signed delta to a product's stock. A delta
// that would take stock below zero is rejected before any store call.
func (h *ProductHandler) HandleAdjustStock(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	view, err := h.views.Products(scope)
	if err != nil {
		return respondError(c, h.surface.Notices(scope), err, "Could not open product view")
	}
	product, ok := view.Find(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with ID %s not found", c.Params("id")),
		})
	}

	if err := h.service.AdjustStock(scope, product, req.Delta); err != nil {
		return respondError(c, h.surface.Notices(scope), err, "Could not update stock")
	}
	return c.JSON(fiber.Map{
		"message": "Stock updated successfully",
		"stock":   product.Stock + req.Delta,
	})
}

// HandleRequestDelete opens the two-step delete flow: the product is removed
// only after the returned confirmation token is confirmed.
func (h *ProductHandler) HandleRequestDelete(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	// The param string aliases fiber's request buffer, which is recycled
	// once this handler returns; copy it before the closure captures it.
	id := utils.CopyString(c.Params("id"))

	// The slot and the captured scope both belong to the requesting session;
	// no other session can see or confirm this request.
	notices := h.surface.Notices(scope)
	confirmation, err := h.surface.Confirmer(scope).Request(
		"Confirm Deletion",
		"Are you sure you want to delete this product? This action cannot be undone.",
		func() error {
			if err := h.service.Delete(scope, id); err != nil {
				notices.Post(notify.Error, "Delete Failed", err.Error())
				return err
			}
			notices.Post(notify.Success, "Product Deleted", "Product deleted successfully.")
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

// HandleUpload stores a product image and returns its download URL, to be
// referenced by a subsequent product submit.
func (h *ProductHandler) HandleUpload(c *fiber.Ctx) error {
	scope, err := requireScope(c)
	if err != nil {
		return err
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "An image file is required",
			"error":   err.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not read uploaded file",
			"error":   err.Error(),
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not read uploaded file",
			"error":   err.Error(),
		})
	}

	path := fmt.Sprintf("product_images/%s/%d_%s", scope.UserID, time.Now().UnixNano(), fileHeader.Filename)
	url, err := h.blobs.Upload(path, data)
	if err != nil {
		log.Printf("Error uploading image: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not upload image",
			"error":   err.Error(),
		})
	}
	h.surface.Notices(scope).Post(notify.Success, "Image Uploaded", "Image uploaded successfully.")
	return c.JSON(fiber.Map{
		"url": url,
	})
}
