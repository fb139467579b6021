package models

import (
	"time"

	"github.com/shopspring/decimal"

	"gudang/internal/store"
)

// TransactionType is the income/expense variant of a ledger entry.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is one of the two known variants.
func (t TransactionType) Valid() bool { return t == Income || t == Expense }

// Transaction is one income or expense entry in the cash ledger.
type Transaction struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required,min=1,max=500"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Fields returns the mutable fields of the transaction as written to a
// record. The date is stored as a plain calendar date.
func (t Transaction) Fields() store.Fields {
	return store.Fields{
		"date":        t.Date.Format(time.DateOnly),
		"type":        string(t.Type),
		"amount":      t.Amount.String(),
		"description": t.Description,
	}
}

// TransactionFromRecord decodes a store record into a Transaction.
func TransactionFromRecord(r store.Record) (Transaction, error) {
	date, err := fieldDate(r.Fields, "date")
	if err != nil {
		return Transaction{}, err
	}
	amount, err := fieldDecimal(r.Fields, "amount")
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ID:          r.ID,
		Date:        date,
		Type:        TransactionType(fieldString(r.Fields, "type")),
		Amount:      amount,
		Description: fieldString(r.Fields, "description"),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// TransactionsFromRecords decodes a full snapshot.
func TransactionsFromRecords(records []store.Record) ([]Transaction, error) {
	transactions := make([]Transaction, 0, len(records))
	for _, r := range records {
		t, err := TransactionFromRecord(r)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}
