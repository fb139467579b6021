package models

import (
	"time"

	"github.com/shopspring/decimal"

	"gudang/internal/store"
)

// PlaceholderImageURL is used whenever a product has no uploaded image.
const PlaceholderImageURL = "https://placehold.co/100x100/374151/D1D5DB?text=Produk"

// Product represents a catalog item with its stock level and buy/sell prices.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required,min=1,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	PriceBuy    decimal.Decimal `json:"priceBuy"`
	PriceSell   decimal.Decimal `json:"priceSell"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Fields returns the mutable fields of the product as written to a record.
// Identity and timestamps belong to the store.
func (p Product) Fields() store.Fields {
	return store.Fields{
		"name":        p.Name,
		"description": p.Description,
		"priceBuy":    p.PriceBuy.String(),
		"priceSell":   p.PriceSell.String(),
		"stock":       p.Stock,
		"imageUrl":    p.ImageURL,
	}
}

// ProductFromRecord decodes a store record into a Product.
func ProductFromRecord(r store.Record) (Product, error) {
	priceBuy, err := fieldDecimal(r.Fields, "priceBuy")
	if err != nil {
		return Product{}, err
	}
	priceSell, err := fieldDecimal(r.Fields, "priceSell")
	if err != nil {
		return Product{}, err
	}
	stock, err := fieldInt(r.Fields, "stock")
	if err != nil {
		return Product{}, err
	}
	return Product{
		ID:          r.ID,
		Name:        fieldString(r.Fields, "name"),
		Description: fieldString(r.Fields, "description"),
		PriceBuy:    priceBuy,
		PriceSell:   priceSell,
		Stock:       stock,
		ImageURL:    fieldString(r.Fields, "imageUrl"),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// ProductsFromRecords decodes a full snapshot. A record that fails to decode
// aborts the conversion so the caller can surface a subscription error.
func ProductsFromRecords(records []store.Record) ([]Product, error) {
	products := make([]Product, 0, len(records))
	for _, r := range records {
		p, err := ProductFromRecord(r)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
