package views

import (
	"log"
	"sync"

	"gudang/internal/apperr"
	"gudang/internal/models"
	"gudang/internal/notify"
	"gudang/internal/report"
	"gudang/internal/session"
	"gudang/internal/store"
)

// StockPoint is one bar of the product stock chart.
type StockPoint struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// ProductsView is the live product catalog, serving both the management
// table and the warehouse report.
type ProductsView struct {
	mu       sync.Mutex
	closed   bool
	cancel   store.CancelFunc
	products []models.Product
	loaded   bool
	notices  *notify.Center
}

// OpenProducts subscribes to the scope's product collection.
func OpenProducts(st store.Store, scope session.Scope, notices *notify.Center) (*ProductsView, error) {
	v := &ProductsView{notices: notices}
	cancel, err := st.Subscribe(store.KindProducts, scope, v.onSnapshot, v.onError)
	if err != nil {
		return nil, err
	}
	v.cancel = cancel
	return v, nil
}

func (v *ProductsView) onSnapshot(records []store.Record) {
	products, err := models.ProductsFromRecords(records)
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if err != nil {
		v.reportError(err)
		return
	}
	v.products = products
	v.loaded = true
}

func (v *ProductsView) onError(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.reportError(err)
}

func (v *ProductsView) reportError(err error) {
	serr := &apperr.SubscriptionError{Kind: string(store.KindProducts), Err: err}
	log.Printf("products: %v", serr)
	if v.notices != nil {
		v.notices.Post(notify.Error, "Load Failed", serr.Error())
	}
}

// Loaded reports whether the first snapshot has arrived.
func (v *ProductsView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Products returns the catalog ordered by name.
func (v *ProductsView) Products() []models.Product {
	v.mu.Lock()
	products := v.products
	v.mu.Unlock()
	return report.SortByNameAsc(products)
}

// Find looks a product up by id in the current snapshot.
func (v *ProductsView) Find(id string) (models.Product, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range v.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// StockChart returns name/stock pairs for the warehouse report chart,
// ordered by name.
func (v *ProductsView) StockChart() []StockPoint {
	products := v.Products()
	points := make([]StockPoint, 0, len(products))
	for _, p := range products {
		points = append(points, StockPoint{Name: p.Name, Stock: p.Stock})
	}
	return points
}

// Close synchronously unsubscribes the listener.
func (v *ProductsView) Close() {
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
