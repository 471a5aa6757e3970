package orders

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/menuflow/dashboard-gateway/internal/backend"
)

// typeCache is the lazily populated, branch-scoped order-type lookup.
// Invariant: never served across a branch switch — SelectBranch invalidates it
// before anything can read under the new branch, and a load racing a branch
// switch is discarded by the epoch check.
type typeCache struct {
	loaded  bool
	entries []backend.OrderType
	byID    map[int]backend.OrderType
}

func (c *typeCache) store(entries []backend.OrderType) {
	c.loaded = true
	c.entries = entries
	c.byID = make(map[int]backend.OrderType, len(entries))
	for _, t := range entries {
		c.byID[t.ID] = t
	}
}

func (c *typeCache) invalidate() {
	*c = typeCache{}
}

// ensureOrderTypes loads the cache for the current branch if it is cold.
// Returns the cached entries, or nil when the load failed.
func (m *Manager) ensureOrderTypes(ctx context.Context) []backend.OrderType {
	m.mu.Lock()
	if m.types.loaded {
		entries := m.types.entries
		m.mu.Unlock()
		return entries
	}
	branchID := m.branchIDLocked()
	epoch := m.epoch
	m.mu.Unlock()

	entries, err := m.be.FetchOrderTypes(ctx, branchID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		// Branch changed while loading; these entries belong to the old
		// branch and must not be cached.
		return nil
	}
	if err != nil {
		m.errMsg = messageFor(err)
		return nil
	}
	m.types.store(entries)
	return entries
}

// RefreshOrderTypes forces invalidation and reload without changing branch.
func (m *Manager) RefreshOrderTypes(ctx context.Context) {
	m.mu.Lock()
	m.types.invalidate()
	m.mu.Unlock()
	m.ensureOrderTypes(ctx)
}

// AllOrderTypes returns every order type for the current branch.
func (m *Manager) AllOrderTypes(ctx context.Context) []backend.OrderType {
	return m.ensureOrderTypes(ctx)
}

// ActiveOrderTypes returns only the order types currently enabled.
func (m *Manager) ActiveOrderTypes(ctx context.Context) []backend.OrderType {
	all := m.ensureOrderTypes(ctx)
	active := make([]backend.OrderType, 0, len(all))
	for _, t := range all {
		if t.Active {
			active = append(active, t)
		}
	}
	return active
}

// OrderTypeByCode looks an order type up by its code.
func (m *Manager) OrderTypeByCode(ctx context.Context, code string) (backend.OrderType, bool) {
	for _, t := range m.ensureOrderTypes(ctx) {
		if t.Code == code {
			return t, true
		}
	}
	return backend.OrderType{}, false
}

// OrderTypeByID looks an order type up by id.
func (m *Manager) OrderTypeByID(ctx context.Context, id int) (backend.OrderType, bool) {
	m.ensureOrderTypes(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.types.byID[id]
	return t, ok
}

// OrderTypeText returns the display name for an order type id, or "".
func (m *Manager) OrderTypeText(ctx context.Context, id int) string {
	t, ok := m.OrderTypeByID(ctx, id)
	if !ok {
		return ""
	}
	return t.Name
}

// EstimatedTime returns the estimated preparation minutes for an order type,
// or 0 when unknown.
func (m *Manager) EstimatedTime(ctx context.Context, id int) int {
	t, ok := m.OrderTypeByID(ctx, id)
	if !ok {
		return 0
	}
	return t.EstimatedMinutes
}

// OrderTotal applies the order type's fee rule to a base amount. Percent fees
// add FeeValue% of the base; flat fees add FeeValue. Unknown types leave the
// base untouched.
func (m *Manager) OrderTotal(ctx context.Context, base decimal.Decimal, typeID int) decimal.Decimal {
	t, ok := m.OrderTypeByID(ctx, typeID)
	if !ok {
		return base
	}
	switch t.FeeKind {
	case backend.FeePercent:
		fee := base.Mul(t.FeeValue).Div(decimal.NewFromInt(100))
		return base.Add(fee)
	case backend.FeeFlat:
		return base.Add(t.FeeValue)
	default:
		return base
	}
}

// typeMetaLocked resolves display metadata without touching the network.
// Only fills the view when the cache is already warm.
func (m *Manager) typeMetaLocked(v *OrderView) {
	if !m.types.loaded {
		return
	}
	if t, ok := m.types.byID[v.OrderTypeID]; ok {
		v.OrderTypeName = t.Name
		v.OrderTypeCode = t.Code
		v.OrderTypeIcon = t.Icon
	}
}
