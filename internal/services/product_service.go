package services

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"gudang/internal/apperr"
	"gudang/internal/models"
	"gudang/internal/session"
	"gudang/internal/store"
)

// ProductInput carries the editable fields of a product form. Validation
// runs before any store call; invalid input never reaches the backend.
type ProductInput struct {
	Name        string          `json:"name" validate:"required,min=1,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	PriceBuy    decimal.Decimal `json:"priceBuy"`
	PriceSell   decimal.Decimal `json:"priceSell"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
}

// ProductService handles the write path for the product catalog.
type ProductService struct {
	store    store.Store
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(st store.Store) *ProductService {
	return &ProductService{
		store:    st,
		validate: newValidator(),
	}
}

func (s *ProductService) validateInput(input ProductInput) error {
	if err := s.validate.Struct(input); err != nil {
		return validationError(err)
	}
	if input.PriceBuy.IsNegative() {
		return apperr.Validation("priceBuy", "buy price cannot be negative")
	}
	if input.PriceSell.IsNegative() {
		return apperr.Validation("priceSell", "sell price cannot be negative")
	}
	if input.Stock < 0 {
		return apperr.Validation("stock", "stock cannot be negative")
	}
	return nil
}

func (s *ProductService) fields(input ProductInput) store.Fields {
	if input.ImageURL == "" {
		input.ImageURL = models.PlaceholderImageURL
	}
	return models.Product{
		Name:        input.Name,
		Description: input.Description,
		PriceBuy:    input.PriceBuy,
		PriceSell:   input.PriceSell,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
	}.Fields()
}

// Create validates the form and stores a new product, returning its id.
func (s *ProductService) Create(scope session.Scope, input ProductInput) (string, error) {
	if err := s.validateInput(input); err != nil {
		return "", err
	}
	return s.store.Create(store.KindProducts, scope, s.fields(input))
}

// Update validates the form and replaces the mutable fields of an existing
// product.
func (s *ProductService) Update(scope session.Scope, id string, input ProductInput) error {
	if err := s.validateInput(input); err != nil {
		return err
	}
	return s.store.Update(store.KindProducts, scope, id, s.fields(input))
}

// AdjustStock applies a signed delta to a product's stock level. A delta
// that would take the stock below zero is a validation failure: it is
// reported to the user and no store call is issued.
func (s *ProductService) AdjustStock(scope session.Scope, product models.Product, delta int) error {
	newStock := product.Stock + delta
	if newStock < 0 {
		return apperr.Validation("stock", "stock cannot go below 0")
	}
	return s.store.Update(store.KindProducts, scope, product.ID, store.Fields{"stock": newStock})
}

// Delete removes a product. Callers are expected to have routed the request
// through the confirmation surface first.
func (s *ProductService) Delete(scope session.Scope, id string) error {
	return s.store.Delete(store.KindProducts, scope, id)
}
