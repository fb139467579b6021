package views

import (
	"time"

	"gudang/internal/export"
	"gudang/internal/models"
)

// FinanceReportRows shapes ledger entries for CSV export.
func FinanceReportRows(transactions []models.Transaction) []export.Row {
	rows := make([]export.Row, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, export.Row{
			{Key: "Date", Value: t.Date.Format(time.DateOnly)},
			{Key: "Type", Value: string(t.Type)},
			{Key: "Description", Value: t.Description},
			{Key: "Amount", Value: t.Amount},
		})
	}
	return rows
}

// ProductReportRows shapes the catalog for CSV export.
func ProductReportRows(products []models.Product) []export.Row {
	rows := make([]export.Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, export.Row{
			{Key: "Name", Value: p.Name},
			{Key: "Description", Value: p.Description},
			{Key: "Buy Price", Value: p.PriceBuy},
			{Key: "Sell Price", Value: p.PriceSell},
			{Key: "Stock", Value: p.Stock},
			{Key: "Image URL", Value: p.ImageURL},
			{Key: "Created At", Value: p.CreatedAt.Format(time.RFC3339)},
			{Key: "Updated At", Value: p.UpdatedAt.Format(time.RFC3339)},
		})
	}
	return rows
}
