// Package report computes derived metrics from in-memory record collections.
// Every function is pure: inputs are never mutated and output does not depend
// on input order unless ordering is the point of the function.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"gudang/internal/models"
)

// Summary is the income/expense/profit breakdown of a set of transactions.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Profit  decimal.Decimal `json:"profit"`
}

// TotalStockValue is the sum over all products of stock times buy price.
func TotalStockValue(products []models.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.PriceBuy.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return total
}

// Summarize totals income and expense amounts; profit is income minus
// expense. Entries with an unknown type are ignored.
func Summarize(transactions []models.Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range transactions {
		switch t.Type {
		case models.Income:
			s.Income = s.Income.Add(t.Amount)
		case models.Expense:
			s.Expense = s.Expense.Add(t.Amount)
		}
	}
	s.Profit = s.Income.Sub(s.Expense)
	return s
}

// FilterByPeriod keeps the transactions whose date falls inside the period
// anchored at ref. All is the identity filter.
func FilterByPeriod(transactions []models.Transaction, p Period, ref time.Time) []models.Transaction {
	if p == All {
		return transactions
	}
	kept := make([]models.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if p.Contains(t.Date, ref) {
			kept = append(kept, t)
		}
	}
	return kept
}

// SortByDateDesc returns a copy sorted most recent first. The sort is stable:
// transactions sharing a date keep their relative input order.
func SortByDateDesc(transactions []models.Transaction) []models.Transaction {
	sorted := make([]models.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

// SortByNameAsc returns a copy sorted by product name using locale-aware
// collation rather than byte order. A Collator is not safe for concurrent
// use, so each call gets its own.
func SortByNameAsc(products []models.Product) []models.Product {
	c := collate.New(language.Und, collate.Loose)
	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})
	return sorted
}

// RecentN returns the first n transactions after a descending date sort, or
// all of them when fewer exist. Non-positive n returns none.
func RecentN(transactions []models.Transaction, n int) []models.Transaction {
	if n <= 0 {
		return nil
	}
	sorted := SortByDateDesc(transactions)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
