package models_test

import (
	"testing"
	"time"

	"gudang/internal/models"
	"gudang/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductFromRecord_WrittenTypes(t *testing.T) {
	// Fields exactly as the service writes them.
	rec := store.Record{
		ID: "prod-1",
		Fields: store.Fields{
			"name":        "Kopi",
			"description": "robusta",
			"priceBuy":    "15000",
			"priceSell":   "20000",
			"stock":       3,
			"imageUrl":    models.PlaceholderImageURL,
		},
	}

	p, err := models.ProductFromRecord(rec)

	require.NoError(t, err)
	assert.Equal(t, "prod-1", p.ID)
	assert.Equal(t, "Kopi", p.Name)
	assert.True(t, decimal.NewFromInt(15000).Equal(p.PriceBuy))
	assert.Equal(t, 3, p.Stock)
}

func TestProductFromRecord_JSONRoundTripTypes(t *testing.T) {
	// Fields as they come back from the database: numbers decode to float64.
	rec := store.Record{
		ID: "prod-1",
		Fields: store.Fields{
			"name":      "Kopi",
			"priceBuy":  "15000",
			"priceSell": "20000",
			"stock":     float64(3),
		},
	}

	p, err := models.ProductFromRecord(rec)

	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
	assert.Empty(t, p.Description)
}

func TestProductFromRecord_BadStock(t *testing.T) {
	rec := store.Record{Fields: store.Fields{"name": "Kopi", "stock": "many"}}

	_, err := models.ProductFromRecord(rec)

	assert.Error(t, err)
}

func TestTransactionFromRecord(t *testing.T) {
	rec := store.Record{
		ID: "tx-1",
		Fields: store.Fields{
			"date":        "2024-03-15",
			"type":        "income",
			"amount":      "50000",
			"description": "Penjualan",
		},
	}

	tx, err := models.TransactionFromRecord(rec)

	require.NoError(t, err)
	assert.Equal(t, models.Income, tx.Type)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.True(t, decimal.NewFromInt(50000).Equal(tx.Amount))
}

func TestTransactionFromRecord_BadDate(t *testing.T) {
	rec := store.Record{Fields: store.Fields{"date": "15/03/2024", "type": "income", "amount": "1"}}

	_, err := models.TransactionFromRecord(rec)

	assert.Error(t, err)
}

func TestTransactionFieldsRoundTrip(t *testing.T) {
	in := models.Transaction{
		Date:        time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Type:        models.Expense,
		Amount:      decimal.RequireFromString("12500.50"),
		Description: "Kulakan",
	}

	out, err := models.TransactionFromRecord(store.Record{Fields: in.Fields()})

	require.NoError(t, err)
	assert.Equal(t, in.Date, out.Date)
	assert.Equal(t, in.Type, out.Type)
	assert.True(t, in.Amount.Equal(out.Amount))
	assert.Equal(t, in.Description, out.Description)
}

func TestTransactionTypeValid(t *testing.T) {
	assert.True(t, models.Income.Valid())
	assert.True(t, models.Expense.Valid())
	assert.False(t, models.TransactionType("transfer").Valid())
	assert.False(t, models.TransactionType("").Valid())
}
