package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/menuflow/dashboard-gateway/internal/backend"
)

// ViewMode selects which order collection the dashboard is looking at.
type ViewMode string

const (
	ViewPending ViewMode = "pending"
	ViewBranch  ViewMode = "branch"
)

// OrderView is the common projection of the pending and historical order
// shapes. Detail views and list rows consume only this, so neither variant is
// ever cast to the other.
type OrderView struct {
	OrderID      string                  `json:"orderId"`
	OrderTag     string                  `json:"orderTag"`
	TotalPrice   decimal.Decimal         `json:"totalPrice"`
	ItemCount    int                     `json:"itemCount"`
	Status       backend.OrderStatus     `json:"status"`
	CreatedAt    time.Time               `json:"createdAt"`
	ConfirmedAt  *time.Time              `json:"confirmedAt,omitempty"`
	CompletedAt  *time.Time              `json:"completedAt,omitempty"`
	CustomerName string                  `json:"customerName"`
	TableID      *int                    `json:"tableId,omitempty"`
	TableName    string                  `json:"tableName,omitempty"`
	SessionID    string                  `json:"sessionId,omitempty"`
	OrderTypeID  int                     `json:"orderTypeId"`
	RowVersion   string                  `json:"rowVersion"`

	// Display metadata resolved from the order-type cache when it is warm.
	OrderTypeName string `json:"orderTypeName,omitempty"`
	OrderTypeCode string `json:"orderTypeCode,omitempty"`
	OrderTypeIcon string `json:"orderTypeIcon,omitempty"`
}

// pendingView projects a pending order. Pending orders are implicitly
// awaiting confirmation.
func pendingView(p backend.PendingOrder) OrderView {
	return OrderView{
		OrderID:      p.OrderID,
		OrderTag:     p.OrderTag,
		TotalPrice:   p.TotalPrice,
		ItemCount:    len(p.Items),
		Status:       backend.StatusPending,
		CreatedAt:    p.CreatedAt,
		CustomerName: p.CustomerName,
		TableID:      p.TableID,
		TableName:    p.TableName,
		SessionID:    p.SessionID,
		OrderTypeID:  p.OrderTypeID,
		RowVersion:   p.RowVersion,
	}
}

func branchView(b backend.BranchOrder) OrderView {
	return OrderView{
		OrderID:      b.OrderID,
		OrderTag:     b.OrderTag,
		TotalPrice:   b.TotalPrice,
		ItemCount:    len(b.Items),
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
		ConfirmedAt:  b.ConfirmedAt,
		CompletedAt:  b.CompletedAt,
		CustomerName: b.CustomerName,
		TableID:      b.TableID,
		TableName:    b.TableName,
		SessionID:    b.SessionID,
		OrderTypeID:  b.OrderTypeID,
		RowVersion:   b.RowVersion,
	}
}

// Filter holds the client-side view parameters. Zero values mean "no
// constraint". Recomputed locally against the fetched collection; the server
// is never asked to filter.
type Filter struct {
	Search      string
	Status      backend.OrderStatus
	From        *time.Time
	To          *time.Time
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	OrderTypeID int
}

func (f Filter) matches(v OrderView) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(v.OrderTag), needle) &&
			!strings.Contains(strings.ToLower(v.CustomerName), needle) &&
			!strings.Contains(strings.ToLower(v.TableName), needle) {
			return false
		}
	}
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.From != nil && v.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && v.CreatedAt.After(*f.To) {
		return false
	}
	if f.MinPrice != nil && v.TotalPrice.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && v.TotalPrice.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.OrderTypeID != 0 && v.OrderTypeID != f.OrderTypeID {
		return false
	}
	return true
}

func applyFilter(views []OrderView, f Filter) []OrderView {
	out := make([]OrderView, 0, len(views))
	for _, v := range views {
		if f.matches(v) {
			out = append(out, v)
		}
	}
	return out
}

// paginate returns the 1-based page of size perPage. Out-of-range pages
// return an empty slice.
func paginate(views []OrderView, page, perPage int) []OrderView {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	start := (page - 1) * perPage
	if start >= len(views) {
		return []OrderView{}
	}
	end := start + perPage
	if end > len(views) {
		end = len(views)
	}
	return views[start:end]
}
