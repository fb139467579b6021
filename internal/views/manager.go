package views

import (
	"fmt"
	"sync"

	"gudang/internal/notify"
	"gudang/internal/session"
	"gudang/internal/store"
)

// Manager opens one view of each kind per scope, lazily, and tears all of
// them down together on shutdown.
type Manager struct {
	store   store.Store
	surface *notify.Surface

	mu         sync.Mutex
	closed     bool
	dashboards map[session.Scope]*DashboardView
	products   map[session.Scope]*ProductsView
	finances   map[session.Scope]*FinanceView
}

func NewManager(st store.Store, surface *notify.Surface) *Manager {
	return &Manager{
		store:      st,
		surface:    surface,
		dashboards: make(map[session.Scope]*DashboardView),
		products:   make(map[session.Scope]*ProductsView),
		finances:   make(map[session.Scope]*FinanceView),
	}
}

// Dashboard returns the scope's dashboard view, opening it on first use.
func (m *Manager) Dashboard(scope session.Scope) (*DashboardView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("view manager is shut down")
	}
	if v, ok := m.dashboards[scope]; ok {
		return v, nil
	}
	v, err := OpenDashboard(m.store, scope, m.surface.Notices(scope))
	if err != nil {
		return nil, err
	}
	m.dashboards[scope] = v
	return v, nil
}

// Products returns the scope's product view, opening it on first use.
func (m *Manager) Products(scope session.Scope) (*ProductsView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("view manager is shut down")
	}
	if v, ok := m.products[scope]; ok {
		return v, nil
	}
	v, err := OpenProducts(m.store, scope, m.surface.Notices(scope))
	if err != nil {
		return nil, err
	}
	m.products[scope] = v
	return v, nil
}

// Finance returns the scope's ledger view, opening it on first use.
func (m *Manager) Finance(scope session.Scope) (*FinanceView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("view manager is shut down")
	}
	if v, ok := m.finances[scope]; ok {
		return v, nil
	}
	v, err := OpenFinance(m.store, scope, m.surface.Notices(scope))
	if err != nil {
		return nil, err
	}
	m.finances[scope] = v
	return v, nil
}

// Close tears down every open view. Further opens fail.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	dashboards := m.dashboards
	products := m.products
	finances := m.finances
	m.dashboards = nil
	m.products = nil
	m.finances = nil
	m.mu.Unlock()

	for _, v := range dashboards {
		v.Close()
	}
	for _, v := range products {
		v.Close()
	}
	for _, v := range finances {
		v.Close()
	}
}
