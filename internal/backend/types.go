package backend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Branch is one restaurant location, the tenancy unit for every order
// operation. Selected once from the dropdown and carried as scope after that.
type Branch struct {
	ID   int    `json:"branchId"`
	Name string `json:"branchName"`
}

// OrderStatus values as the backend reports them. Pending orders live in a
// separate queue and carry no status field; everything else does.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusReady     OrderStatus = "Ready"
	StatusDelivered OrderStatus = "Delivered"
	StatusRejected  OrderStatus = "Rejected"
	StatusCancelled OrderStatus = "Cancelled"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusRejected || s == StatusCancelled
}

// NextStatuses lists the transitions the backend accepts from s. The backend
// remains the sole arbiter; this only drives which actions the dashboard
// offers.
func (s OrderStatus) NextStatuses() []OrderStatus {
	switch s {
	case StatusPending:
		return []OrderStatus{StatusConfirmed, StatusRejected, StatusCancelled}
	case StatusConfirmed:
		return []OrderStatus{StatusReady, StatusCancelled}
	case StatusReady:
		return []OrderStatus{StatusDelivered, StatusCancelled}
	default:
		return nil
	}
}

// OrderItem is a single line of an order.
type OrderItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// PendingOrder is an order awaiting operator confirmation. It carries no
// status; membership in the pending queue is the status.
type PendingOrder struct {
	OrderID      string          `json:"orderId"`
	OrderTag     string          `json:"orderTag"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Items        []OrderItem     `json:"items"`
	CreatedAt    time.Time       `json:"createdAt"`
	CustomerName string          `json:"customerName"`
	TableID      *int            `json:"tableId,omitempty"`
	TableName    string          `json:"tableName,omitempty"`
	SessionID    string          `json:"sessionId,omitempty"`
	OrderTypeID  int             `json:"orderTypeId"`
	RowVersion   string          `json:"rowVersion"`
}

// BranchOrder is an order in the historical/branch view.
type BranchOrder struct {
	OrderID      string          `json:"orderId"`
	OrderTag     string          `json:"orderTag"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	Items        []OrderItem     `json:"items"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	ConfirmedAt  *time.Time      `json:"confirmedAt,omitempty"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	CustomerName string          `json:"customerName"`
	TableID      *int            `json:"tableId,omitempty"`
	TableName    string          `json:"tableName,omitempty"`
	SessionID    string          `json:"sessionId,omitempty"`
	OrderTypeID  int             `json:"orderTypeId"`
	RowVersion   string          `json:"rowVersion"`
}

// Order is the updated order shape every mutation endpoint returns. The
// returned RowVersion supersedes the one the mutation was sent with.
type Order = BranchOrder

// OrderDetails is the on-demand detail shape for a single order.
type OrderDetails struct {
	Order
	Notes string `json:"notes,omitempty"`
}

// TableBasketSummary aggregates pending totals per table.
type TableBasketSummary struct {
	TableID      int             `json:"tableId"`
	TableName    string          `json:"tableName"`
	PendingCount int             `json:"pendingCount"`
	BasketTotal  decimal.Decimal `json:"basketTotal"`
}

// FeeKind discriminates how an order type's fee applies to the base total.
type FeeKind string

const (
	FeePercent FeeKind = "percent"
	FeeFlat    FeeKind = "flat"
)

// OrderType classifies an order (dine-in, takeaway, delivery, ...) and drives
// fee and estimated-time calculation. Branch-scoped.
type OrderType struct {
	ID               int             `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Icon             string          `json:"icon,omitempty"`
	Active           bool            `json:"isActive"`
	EstimatedMinutes int             `json:"estimatedMinutes"`
	FeeKind          FeeKind         `json:"feeKind"`
	FeeValue         decimal.Decimal `json:"feeValue"`
}

// SessionOrderRequest creates an order from a table session's basket.
type SessionOrderRequest struct {
	SessionID   string `json:"sessionId"`
	TableID     int    `json:"tableId"`
	OrderTypeID int    `json:"orderTypeId"`
	Notes       string `json:"notes,omitempty"`
}

// SmartOrderItem is one requested line in a smart order.
type SmartOrderItem struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// SmartOrderRequest creates an order directly from a product list.
type SmartOrderRequest struct {
	CustomerName string           `json:"customerName"`
	OrderTypeID  int              `json:"orderTypeId"`
	TableID      *int             `json:"tableId,omitempty"`
	Items        []SmartOrderItem `json:"items"`
	Notes        string           `json:"notes,omitempty"`
}

// Category is a menu category, used by the read-only menu passthrough.
type Category struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"isActive"`
	Order  int    `json:"displayOrder"`
}

// Product is a menu product, used by the read-only menu passthrough.
type Product struct {
	ID          int             `json:"id"`
	CategoryID  int             `json:"categoryId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"isActive"`
}
