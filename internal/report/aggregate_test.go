package report_test

import (
	"testing"
	"time"

	"gudang/internal/models"
	"gudang/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTotalStockValue(t *testing.T) {
	products := []models.Product{
		{Name: "Kopi", PriceBuy: dec("15000"), Stock: 3},
		{Name: "Gula", PriceBuy: dec("12500.50"), Stock: 2},
		{Name: "Teh", PriceBuy: dec("9000"), Stock: 0},
	}

	total := report.TotalStockValue(products)

	// 3*15000 + 2*12500.50 + 0*9000 = 70001
	assert.True(t, dec("70001").Equal(total), "got %s", total)
}

func TestTotalStockValue_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(report.TotalStockValue(nil)))
}

func TestSummarize(t *testing.T) {
	transactions := []models.Transaction{
		{Type: models.Income, Amount: dec("100000")},
		{Type: models.Expense, Amount: dec("25000")},
		{Type: models.Income, Amount: dec("0.50")},
		{Type: models.Expense, Amount: dec("0.25")},
	}

	s := report.Summarize(transactions)

	assert.True(t, dec("100000.50").Equal(s.Income), "income %s", s.Income)
	assert.True(t, dec("25000.25").Equal(s.Expense), "expense %s", s.Expense)
	assert.True(t, dec("75000.25").Equal(s.Profit), "profit %s", s.Profit)
}

func TestSummarize_IgnoresUnknownType(t *testing.T) {
	transactions := []models.Transaction{
		{Type: models.Income, Amount: dec("100")},
		{Type: models.TransactionType("transfer"), Amount: dec("999")},
	}

	s := report.Summarize(transactions)

	assert.True(t, dec("100").Equal(s.Income))
	assert.True(t, decimal.Zero.Equal(s.Expense))
	assert.True(t, dec("100").Equal(s.Profit))
}

func TestSummarize_NoDrift(t *testing.T) {
	// Decimal amounts must not accumulate binary rounding error.
	transactions := make([]models.Transaction, 0, 10)
	for i := 0; i < 10; i++ {
		transactions = append(transactions, models.Transaction{Type: models.Income, Amount: dec("0.1")})
	}

	s := report.Summarize(transactions)

	assert.Equal(t, "1", s.Income.String())
}

func TestFilterByPeriod(t *testing.T) {
	ref := day(2024, time.March, 15)
	transactions := []models.Transaction{
		{ID: "same-day", Date: day(2024, time.March, 15)},
		{ID: "same-month", Date: day(2024, time.March, 1)},
		{ID: "same-year", Date: day(2024, time.July, 4)},
		{ID: "last-year", Date: day(2023, time.March, 15)},
	}

	ids := func(ts []models.Transaction) []string {
		out := make([]string, 0, len(ts))
		for _, tx := range ts {
			out = append(out, tx.ID)
		}
		return out
	}

	assert.Equal(t, []string{"same-day"}, ids(report.FilterByPeriod(transactions, report.Daily, ref)))
	assert.Equal(t, []string{"same-day", "same-month"}, ids(report.FilterByPeriod(transactions, report.Monthly, ref)))
	assert.Equal(t, []string{"same-day", "same-month", "same-year"}, ids(report.FilterByPeriod(transactions, report.Yearly, ref)))
	assert.Equal(t, []string{"same-day", "same-month", "same-year", "last-year"}, ids(report.FilterByPeriod(transactions, report.All, ref)))
}

func TestFilterByPeriod_AllIsIdentity(t *testing.T) {
	transactions := []models.Transaction{
		{ID: "b", Date: day(2024, time.January, 2)},
		{ID: "a", Date: day(2024, time.January, 1)},
	}

	kept := report.FilterByPeriod(transactions, report.All, time.Now())

	assert.Equal(t, transactions, kept)
}

func TestSortByDateDesc_Stable(t *testing.T) {
	transactions := []models.Transaction{
		{ID: "old", Date: day(2024, time.January, 1)},
		{ID: "tie-1", Date: day(2024, time.June, 1)},
		{ID: "tie-2", Date: day(2024, time.June, 1)},
		{ID: "new", Date: day(2024, time.December, 31)},
	}

	sorted := report.SortByDateDesc(transactions)

	assert.Equal(t, "new", sorted[0].ID)
	// Equal dates keep their input order.
	assert.Equal(t, "tie-1", sorted[1].ID)
	assert.Equal(t, "tie-2", sorted[2].ID)
	assert.Equal(t, "old", sorted[3].ID)

	// The input slice is untouched.
	assert.Equal(t, "old", transactions[0].ID)
}

func TestSortByNameAsc(t *testing.T) {
	products := []models.Product{
		{ID: "3", Name: "gula"},
		{ID: "1", Name: "Beras"},
		{ID: "2", Name: "kopi"},
	}

	sorted := report.SortByNameAsc(products)

	// Loose collation ignores case, so "gula" sorts between "Beras" and "kopi".
	assert.Equal(t, []string{"1", "3", "2"}, []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, "gula", products[0].Name, "input must not be mutated")
}

func TestRecentN(t *testing.T) {
	transactions := []models.Transaction{
		{ID: "a", Date: day(2024, time.January, 1)},
		{ID: "b", Date: day(2024, time.March, 1)},
		{ID: "c", Date: day(2024, time.February, 1)},
	}

	recent := report.RecentN(transactions, 2)
	assert.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].ID)
	assert.Equal(t, "c", recent[1].ID)

	// Asking for more than exists returns everything.
	assert.Len(t, report.RecentN(transactions, 10), 3)
	assert.Empty(t, report.RecentN(nil, 5))

	// Non-positive counts return nothing rather than panicking.
	assert.Empty(t, report.RecentN(transactions, 0))
	assert.Empty(t, report.RecentN(transactions, -1))
}
