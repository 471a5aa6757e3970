package orders_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuflow/dashboard-gateway/internal/backend"
)

func typesBackend() *mockBackend {
	return &mockBackend{
		fetchTypesFn: func(context.Context, *int) ([]backend.OrderType, error) {
			return []backend.OrderType{
				{ID: 1, Code: "dine-in", Name: "Dine in", Active: true, EstimatedMinutes: 15, FeeKind: backend.FeePercent, FeeValue: decimal.NewFromInt(10)},
				{ID: 2, Code: "delivery", Name: "Delivery", Active: true, EstimatedMinutes: 40, FeeKind: backend.FeeFlat, FeeValue: decimal.NewFromInt(5)},
				{ID: 3, Code: "legacy", Name: "Legacy", Active: false},
			}, nil
		},
	}
}

func TestOrderTotal_FeeRules(t *testing.T) {
	mgr := newManager(typesBackend())
	ctx := context.Background()
	base := decimal.NewFromInt(100)

	// 10% on top.
	assert.True(t, decimal.NewFromInt(110).Equal(mgr.OrderTotal(ctx, base, 1)))
	// Flat 5 on top.
	assert.True(t, decimal.NewFromInt(105).Equal(mgr.OrderTotal(ctx, base, 2)))
	// Unknown type leaves the base untouched.
	assert.True(t, base.Equal(mgr.OrderTotal(ctx, base, 42)))
}

func TestOrderTypeHelpers(t *testing.T) {
	mgr := newManager(typesBackend())
	ctx := context.Background()

	assert.Equal(t, "Dine in", mgr.OrderTypeText(ctx, 1))
	assert.Equal(t, "", mgr.OrderTypeText(ctx, 42))
	assert.Equal(t, 40, mgr.EstimatedTime(ctx, 2))

	typ, ok := mgr.OrderTypeByCode(ctx, "delivery")
	require.True(t, ok)
	assert.Equal(t, 2, typ.ID)

	_, ok = mgr.OrderTypeByCode(ctx, "drive-through")
	assert.False(t, ok)

	assert.Len(t, mgr.AllOrderTypes(ctx), 3)
	assert.Len(t, mgr.ActiveOrderTypes(ctx), 2)
}

func TestRefreshOrderTypes_ForcesReload(t *testing.T) {
	be := typesBackend()
	mgr := newManager(be)
	ctx := context.Background()

	mgr.AllOrderTypes(ctx)
	mgr.AllOrderTypes(ctx)
	require.Equal(t, 1, be.calls(&be.typeCalls))

	mgr.RefreshOrderTypes(ctx)
	assert.Equal(t, 2, be.calls(&be.typeCalls))
}
