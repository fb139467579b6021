package views

import (
	"log"
	"sync"
	"time"

	"gudang/internal/apperr"
	"gudang/internal/models"
	"gudang/internal/notify"
	"gudang/internal/report"
	"gudang/internal/session"
	"gudang/internal/store"
)

// FinanceView is the live cash ledger behind the financial report.
type FinanceView struct {
	mu           sync.Mutex
	closed       bool
	cancel       store.CancelFunc
	transactions []models.Transaction
	loaded       bool
	notices      *notify.Center
}

// OpenFinance subscribes to the scope's transaction collection.
func OpenFinance(st store.Store, scope session.Scope, notices *notify.Center) (*FinanceView, error) {
	v := &FinanceView{notices: notices}
	cancel, err := st.Subscribe(store.KindTransactions, scope, v.onSnapshot, v.onError)
	if err != nil {
		return nil, err
	}
	v.cancel = cancel
	return v, nil
}

func (v *FinanceView) onSnapshot(records []store.Record) {
	transactions, err := models.TransactionsFromRecords(records)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		v.reportError(err)
		return
	}
	v.transactions = transactions
	v.loaded = true
}

func (v *FinanceView) onError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.reportError(err)
}

func (v *FinanceView) reportError(err error) {
	serr := &apperr.SubscriptionError{Kind: string(store.KindTransactions), Err: err}
	log.Printf("finance: %v", serr)
	if v.notices != nil {
		v.notices.Post(notify.Error, "Load Failed", serr.Error())
	}
}

// Loaded reports whether the first snapshot has arrived.
func (v *FinanceView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Transactions returns the entries inside the period anchored at ref, most
// recent first.
func (v *FinanceView) Transactions(p report.Period, ref time.Time) []models.Transaction {
	v.mu.Lock()
	transactions := v.transactions
	v.mu.Unlock()
	return report.FilterByPeriod(report.SortByDateDesc(transactions), p, ref)
}

// Summary totals income, expense and profit over the period anchored at ref.
func (v *FinanceView) Summary(p report.Period, ref time.Time) report.Summary {
	return report.Summarize(v.Transactions(p, ref))
}

// Find looks a transaction up by id in the current snapshot.
func (v *FinanceView) Find(id string) (models.Transaction, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, t := range v.transactions {
		if t.ID == id {
			return t, true
		}
	}
	return models.Transaction{}, false
}

// Close synchronously unsubscribes the listener.
func (v *FinanceView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	cancel := v.cancel
	v.cancel = nil
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
