package services

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"gudang/internal/apperr"
	"gudang/internal/models"
	"gudang/internal/session"
	"gudang/internal/store"
)

// TransactionInput carries the editable fields of a ledger entry form.
type TransactionInput struct {
	Date        time.Time              `json:"date"`
	Type        models.TransactionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	Description string                 `json:"description" validate:"required,min=1,max=500"`
}

// TransactionService handles the write path for the cash ledger.
type TransactionService struct {
	store    store.Store
	validate *validator.Validate
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(st store.Store) *TransactionService {
	return &TransactionService{
		store:    st,
		validate: newValidator(),
	}
}

func (s *TransactionService) validateInput(input TransactionInput) error {
	if input.Date.IsZero() {
		return apperr.Validation("date", "date is required")
	}
	if !input.Type.Valid() {
		return apperr.Validation("type", "type must be income or expense")
	}
	if !input.Amount.IsPositive() {
		return apperr.Validation("amount", "amount must be positive")
	}
	if err := s.validate.Struct(input); err != nil {
		return validationError(err)
	}
	return nil
}

func (s *TransactionService) fields(input TransactionInput) store.Fields {
	return models.Transaction{
		Date:        input.Date,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
	}.Fields()
}

// Create validates the form and stores a new transaction, returning its id.
func (s *TransactionService) Create(scope session.Scope, input TransactionInput) (string, error) {
	if err := s.validateInput(input); err != nil {
		return "", err
	}
	return s.store.Create(store.KindTransactions, scope, s.fields(input))
}

// Update validates the form and replaces the mutable fields of an existing
// transaction.
func (s *TransactionService) Update(scope session.Scope, id string, input TransactionInput) error {
	if err := s.validateInput(input); err != nil {
		return err
	}
	return s.store.Update(store.KindTransactions, scope, id, s.fields(input))
}

// Delete removes a transaction after the confirmation flow has resolved.
func (s *TransactionService) Delete(scope session.Scope, id string) error {
	return s.store.Delete(store.KindTransactions, scope, id)
}
