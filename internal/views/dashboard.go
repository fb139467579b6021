// Package views holds the live read side of each feature module: one or two
// record subscriptions feeding local state, aggregated on demand. A view
// renders derived metrics only once every subscription it depends on has
// delivered at least one snapshot, and discards anything arriving after
// Close.
package views

import (
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"gudang/internal/apperr"
	"gudang/internal/models"
	"gudang/internal/notify"
	"gudang/internal/report"
	"gudang/internal/session"
	"gudang/internal/store"
)

// DashboardMetrics are the summary cards of the dashboard.
type DashboardMetrics struct {
	TotalProducts      int                  `json:"totalProducts"`
	TotalStockValue    decimal.Decimal      `json:"totalStockValue"`
	Balance            decimal.Decimal      `json:"balance"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
}

// recentTransactionCount is how many ledger entries the dashboard shows.
const recentTransactionCount = 5

// DashboardView tracks products and transactions together. The two
// subscriptions deliver independently, in no guaranteed relative order, so
// each keeps its own loaded flag.
type DashboardView struct {
	mu                 sync.Mutex
	closed             bool
	cancels            []store.CancelFunc
	products           []models.Product
	transactions       []models.Transaction
	productsLoaded     bool
	transactionsLoaded bool
	notices            *notify.Center
}

// OpenDashboard subscribes to both collections of the scope.
func OpenDashboard(st store.Store, scope session.Scope, notices *notify.Center) (*DashboardView, error) {
	v := &DashboardView{notices: notices}

	cancelProducts, err := st.Subscribe(store.KindProducts, scope,
		v.onProducts, v.onSubscriptionError(store.KindProducts))
	if err != nil {
		return nil, err
	}
	cancelTransactions, err := st.Subscribe(store.KindTransactions, scope,
		v.onTransactions, v.onSubscriptionError(store.KindTransactions))
	if err != nil {
		cancelProducts()
		return nil, err
	}
	v.cancels = []store.CancelFunc{cancelProducts, cancelTransactions}
	return v, nil
}

func (v *DashboardView) onProducts(records []store.Record) {
	products, err := models.ProductsFromRecords(records)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		v.reportError(store.KindProducts, err)
		return
	}
	v.products = products
	v.productsLoaded = true
}

func (v *DashboardView) onTransactions(records []store.Record) {
	transactions, err := models.TransactionsFromRecords(records)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		v.reportError(store.KindTransactions, err)
		return
	}
	v.transactions = transactions
	v.transactionsLoaded = true
}

func (v *DashboardView) onSubscriptionError(kind store.Kind) store.ErrorFunc {
	return func(err error) {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.closed {
			return
		}
		v.reportError(kind, err)
	}
}

// reportError logs and surfaces a listener failure without tearing the
// subscription down. Callers hold v.mu.
func (v *DashboardView) reportError(kind store.Kind, err error) {
	serr := &apperr.SubscriptionError{Kind: string(kind), Err: err}
	log.Printf("dashboard: %v", serr)
	if v.notices != nil {
		v.notices.Post(notify.Error, "Load Failed", serr.Error())
	}
}

// Loaded reports whether both subscriptions have delivered at least once.
func (v *DashboardView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.productsLoaded && v.transactionsLoaded
}

// Metrics computes the dashboard summary. The second return is false until
// both collections have loaded.
func (v *DashboardView) Metrics() (DashboardMetrics, bool) {
	v.mu.Lock()
	products := v.products
	transactions := v.transactions
	loaded := v.productsLoaded && v.transactionsLoaded
	v.mu.Unlock()

	if !loaded {
		return DashboardMetrics{}, false
	}
	summary := report.Summarize(transactions)
	return DashboardMetrics{
		TotalProducts:      len(products),
		TotalStockValue:    report.TotalStockValue(products),
		Balance:            summary.Profit,
		RecentTransactions: report.RecentN(transactions, recentTransactionCount),
	}, true
}

// Close synchronously unsubscribes both listeners. No snapshot is delivered
// to this view afterwards; a write completing later mutates nothing here.
func (v *DashboardView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	cancels := v.cancels
	v.cancels = nil
	v.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
