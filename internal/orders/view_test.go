package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuflow/dashboard-gateway/internal/backend"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleViews() []OrderView {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []OrderView{
		{OrderID: "o1", OrderTag: "A-101", CustomerName: "Mara", Status: backend.StatusPending, TotalPrice: dec("12.50"), CreatedAt: base, OrderTypeID: 1},
		{OrderID: "o2", OrderTag: "A-102", CustomerName: "Jonas", Status: backend.StatusConfirmed, TotalPrice: dec("40.00"), CreatedAt: base.Add(time.Hour), OrderTypeID: 2},
		{OrderID: "o3", OrderTag: "B-201", CustomerName: "Maria", Status: backend.StatusDelivered, TotalPrice: dec("7.25"), CreatedAt: base.Add(2 * time.Hour), OrderTypeID: 1},
	}
}

func TestApplyFilter_Search(t *testing.T) {
	got := applyFilter(sampleViews(), Filter{Search: "mar"})
	require.Len(t, got, 2)
	assert.Equal(t, "o1", got[0].OrderID)
	assert.Equal(t, "o3", got[1].OrderID)

	got = applyFilter(sampleViews(), Filter{Search: "b-2"})
	require.Len(t, got, 1)
	assert.Equal(t, "o3", got[0].OrderID)
}

func TestApplyFilter_StatusAndType(t *testing.T) {
	got := applyFilter(sampleViews(), Filter{Status: backend.StatusConfirmed})
	require.Len(t, got, 1)
	assert.Equal(t, "o2", got[0].OrderID)

	got = applyFilter(sampleViews(), Filter{OrderTypeID: 1})
	assert.Len(t, got, 2)
}

func TestApplyFilter_PriceRange(t *testing.T) {
	min := dec("10")
	max := dec("20")
	got := applyFilter(sampleViews(), Filter{MinPrice: &min, MaxPrice: &max})
	require.Len(t, got, 1)
	assert.Equal(t, "o1", got[0].OrderID)
}

func TestApplyFilter_DateRange(t *testing.T) {
	from := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	got := applyFilter(sampleViews(), Filter{From: &from})
	assert.Len(t, got, 2)
}

func TestPaginate(t *testing.T) {
	views := sampleViews()

	assert.Len(t, paginate(views, 1, 2), 2)
	assert.Len(t, paginate(views, 2, 2), 1)
	assert.Empty(t, paginate(views, 3, 2))
	// Degenerate inputs fall back to sane defaults.
	assert.Len(t, paginate(views, 0, 0), 3)
}

func TestPendingView_ImplicitlyAwaitingConfirmation(t *testing.T) {
	v := pendingView(backend.PendingOrder{
		OrderID: "o1",
		Items:   []backend.OrderItem{{Name: "soup", Quantity: 2}},
	})
	assert.Equal(t, backend.StatusPending, v.Status)
	assert.Equal(t, 1, v.ItemCount)
}
