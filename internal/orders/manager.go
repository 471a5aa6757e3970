// Package orders implements the order lifecycle orchestrator: a state
// container that mediates between a branch-scoped dashboard and the remote
// order API. It tracks the current branch, keeps the pending and historical
// order views in sync after every mutation, and runs state-changing operations
// under optimistic-concurrency control with a two-phase (open intent, commit)
// pattern.
package orders

import (
	"context"
	"sync"

	"github.com/menuflow/dashboard-gateway/internal/backend"
	"github.com/menuflow/dashboard-gateway/pkg/logger"
)

// Backend is the slice of the backend client the orchestrator needs.
// Satisfied by *backend.Client; narrow interface for testability.
type Backend interface {
	FetchBranches(ctx context.Context) ([]backend.Branch, error)
	FetchPendingOrders(ctx context.Context, branchID *int) ([]backend.PendingOrder, error)
	FetchBranchOrders(ctx context.Context, branchID *int) ([]backend.BranchOrder, error)
	FetchTableSummary(ctx context.Context, branchID *int) ([]backend.TableBasketSummary, error)
	ConfirmOrder(ctx context.Context, orderID string, branchID *int, rowVersion string) (*backend.Order, error)
	RejectOrder(ctx context.Context, orderID string, branchID *int, reason, rowVersion string) (*backend.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, branchID *int, newStatus backend.OrderStatus, reason, rowVersion string) (*backend.Order, error)
	FetchOrderDetails(ctx context.Context, orderID string, branchID *int) (*backend.OrderDetails, error)
	FetchTableOrders(ctx context.Context, tableID int, branchID *int) ([]backend.BranchOrder, error)
	CreateSessionOrder(ctx context.Context, branchID *int, req backend.SessionOrderRequest) (*backend.Order, error)
	CreateSmartOrder(ctx context.Context, branchID *int, req backend.SmartOrderRequest) (*backend.Order, error)
	FetchOrderTypes(ctx context.Context, branchID *int) ([]backend.OrderType, error)
}

const defaultPerPage = 20

// Manager is one operator session's orchestrator instance. All methods are
// safe for concurrent use; network calls happen outside the state lock.
type Manager struct {
	be  Backend
	log logger.Logger
	hub *hub

	mu sync.Mutex

	branches []backend.Branch
	current  *backend.Branch
	// epoch fences in-flight requests: it is bumped on every branch switch,
	// and a response tagged with a stale epoch is discarded instead of
	// overwriting state with data for the wrong branch.
	epoch uint64

	viewMode ViewMode
	pending  []backend.PendingOrder
	history  []backend.BranchOrder

	// Shared across all operations: loading under-reports overlapping
	// fetches (first completion clears it) and errMsg is last-write-wins.
	loading bool
	errMsg  string

	selectedOrder *backend.Order

	intent mutationIntent
	modals modalState

	filter  Filter
	page    int
	perPage int

	types typeCache
}

// NewManager creates an orchestrator bound to a backend.
func NewManager(be Backend, log logger.Logger) *Manager {
	return &Manager{
		be:       be,
		log:      log,
		hub:      newHub(),
		viewMode: ViewPending,
		page:     1,
		perPage:  defaultPerPage,
	}
}

// Subscribe returns a channel of state-transition events and a cancel
// function. Slow subscribers lose events rather than blocking the manager.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	return m.hub.subscribe()
}

// --- branch context ---

// FetchBranches loads the operator's accessible branches. When no branch is
// selected yet, the first one is auto-selected (without triggering a view
// fetch). Failures surface in the shared error field, never to the caller.
func (m *Manager) FetchBranches(ctx context.Context) {
	branches, err := m.be.FetchBranches(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.errMsg = messageFor(err)
		m.log.Warn("branch fetch failed", "error", err)
		return
	}
	m.branches = branches
	if m.current == nil && len(branches) > 0 {
		first := branches[0]
		m.current = &first
		m.epoch++
		m.types.invalidate()
	}
}

// SelectBranch sets the current branch, resets pagination, drops the previous
// branch's order-type cache, fences out in-flight fetches, and re-fetches
// whichever view is active.
func (m *Manager) SelectBranch(ctx context.Context, b backend.Branch) {
	m.mu.Lock()
	branch := b
	m.current = &branch
	m.epoch++
	m.page = 1
	m.types.invalidate()
	mode := m.viewMode
	m.mu.Unlock()

	m.hub.publish(Event{Type: EventBranchSelected, BranchID: &branch.ID})
	m.fetchView(ctx, mode)
}

// CurrentBranchID returns the selected branch id, or nil before any branch is
// selected. Callers treat nil as "use the server's default scope".
func (m *Manager) CurrentBranchID() *int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.branchIDLocked()
}

func (m *Manager) branchIDLocked() *int {
	if m.current == nil {
		return nil
	}
	id := m.current.ID
	return &id
}

// Branches returns the loaded branch list.
func (m *Manager) Branches() []backend.Branch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.branches
}

// --- collection fetching ---

// SwitchViewMode changes the active view, resets pagination and immediately
// fetches that view. The inactive view is never fetched speculatively.
func (m *Manager) SwitchViewMode(ctx context.Context, mode ViewMode) {
	m.mu.Lock()
	m.viewMode = mode
	m.page = 1
	m.mu.Unlock()

	m.fetchView(ctx, mode)
}

func (m *Manager) fetchView(ctx context.Context, mode ViewMode) {
	switch mode {
	case ViewBranch:
		m.FetchHistorical(ctx)
	default:
		m.FetchPending(ctx)
	}
}

// FetchPending replaces the pending-order collection wholesale from the
// backend, scoped to the current branch.
func (m *Manager) FetchPending(ctx context.Context) {
	m.mu.Lock()
	branchID := m.branchIDLocked()
	epoch := m.epoch
	m.loading = true
	m.errMsg = ""
	m.mu.Unlock()

	list, err := m.be.FetchPendingOrders(ctx, branchID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if epoch != m.epoch {
		// Branch switched mid-flight; this data belongs to the old branch.
		return
	}
	if err != nil {
		m.errMsg = messageFor(err)
		m.hub.publish(Event{Type: EventOperationFailed, Error: m.errMsg})
		return
	}
	m.pending = list
	m.hub.publish(Event{Type: EventViewRefreshed, ViewMode: ViewPending, BranchID: branchID})
}

// FetchHistorical replaces the historical/branch order collection wholesale.
func (m *Manager) FetchHistorical(ctx context.Context) {
	m.mu.Lock()
	branchID := m.branchIDLocked()
	epoch := m.epoch
	m.loading = true
	m.errMsg = ""
	m.mu.Unlock()

	list, err := m.be.FetchBranchOrders(ctx, branchID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if epoch != m.epoch {
		return
	}
	if err != nil {
		m.errMsg = messageFor(err)
		m.hub.publish(Event{Type: EventOperationFailed, Error: m.errMsg})
		return
	}
	m.history = list
	m.hub.publish(Event{Type: EventViewRefreshed, ViewMode: ViewBranch, BranchID: branchID})
}

// FetchTableBasketSummary returns per-table pending totals. Read-only: it
// never touches the two primary collections, and failures yield an empty
// slice instead of propagating.
func (m *Manager) FetchTableBasketSummary(ctx context.Context) []backend.TableBasketSummary {
	m.mu.Lock()
	branchID := m.branchIDLocked()
	m.loading = true
	m.mu.Unlock()

	summary, err := m.be.FetchTableSummary(ctx, branchID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.errMsg = messageFor(err)
		return []backend.TableBasketSummary{}
	}
	return summary
}

// --- mutation coordination ---

// HandleConfirmOrder commits a previously opened confirm intent. Without a
// complete intent it is a no-op: no network call is issued.
func (m *Manager) HandleConfirmOrder(ctx context.Context) {
	m.mu.Lock()
	intent := m.intent
	branchID := m.branchIDLocked()
	m.mu.Unlock()

	if intent.kind != mutationConfirm || intent.orderID == "" || intent.rowVersion == "" {
		return
	}

	updated, err := m.be.ConfirmOrder(ctx, intent.orderID, branchID, intent.rowVersion)
	m.finishMutation(ctx, "confirm", intent.orderID, updated, err)
}

// HandleRejectOrder commits a reject intent. A missing reason makes this a
// no-op with the modal left open, so the operator can still fill it in.
func (m *Manager) HandleRejectOrder(ctx context.Context) {
	m.mu.Lock()
	intent := m.intent
	branchID := m.branchIDLocked()
	m.mu.Unlock()

	if intent.kind != mutationReject || intent.orderID == "" || intent.rowVersion == "" {
		return
	}
	if intent.rejectReason == "" {
		return
	}

	updated, err := m.be.RejectOrder(ctx, intent.orderID, branchID, intent.rejectReason, intent.rowVersion)
	m.finishMutation(ctx, "reject", intent.orderID, updated, err)
}

// HandleCancelOrder commits a cancel intent. Cancellation is a status update
// to the terminal Cancelled value, with an optional reason.
func (m *Manager) HandleCancelOrder(ctx context.Context) {
	m.mu.Lock()
	intent := m.intent
	branchID := m.branchIDLocked()
	m.mu.Unlock()

	if intent.kind != mutationCancel || intent.orderID == "" || intent.rowVersion == "" {
		return
	}

	updated, err := m.be.UpdateOrderStatus(ctx, intent.orderID, branchID, backend.StatusCancelled, intent.cancelReason, intent.rowVersion)
	m.finishMutation(ctx, "cancel", intent.orderID, updated, err)
}

// HandleStatusUpdate commits a status-change intent.
func (m *Manager) HandleStatusUpdate(ctx context.Context) {
	m.mu.Lock()
	intent := m.intent
	branchID := m.branchIDLocked()
	m.mu.Unlock()

	if intent.kind != mutationStatus || intent.orderID == "" || intent.rowVersion == "" || intent.newStatus == "" {
		return
	}

	updated, err := m.be.UpdateOrderStatus(ctx, intent.orderID, branchID, intent.newStatus, "", intent.rowVersion)
	m.finishMutation(ctx, "status", intent.orderID, updated, err)
}

// finishMutation applies the uniform post-mutation contract: the intent and
// every modal flag are cleared whether the call succeeded or not, so the UI
// can never get stuck. On success the active view is re-fetched exactly once
// and the updated order becomes the selection; the inactive view is left
// untouched.
func (m *Manager) finishMutation(ctx context.Context, action, orderID string, updated *backend.Order, err error) {
	m.mu.Lock()
	m.clearIntentLocked()
	if err != nil {
		m.errMsg = messageFor(err)
		msg := m.errMsg
		m.mu.Unlock()

		m.log.Warn("order mutation failed", "action", action, "order_id", orderID, "error", err)
		m.hub.publish(Event{Type: EventMutationFailed, Action: action, OrderID: orderID, Error: msg})
		return
	}

	m.selectedOrder = updated
	m.errMsg = ""
	mode := m.viewMode
	m.mu.Unlock()

	m.hub.publish(Event{Type: EventMutationCommitted, Action: action, OrderID: orderID})
	m.fetchView(ctx, mode)
}

// --- on-demand reads and placement ---

// GetOrderDetails loads one order for a detail view. Returns nil on failure
// (with the error recorded); callers never need their own error handling.
func (m *Manager) GetOrderDetails(ctx context.Context, orderID string) *backend.OrderDetails {
	m.mu.Lock()
	branchID := m.branchIDLocked()
	m.loading = true
	m.mu.Unlock()

	details, err := m.be.FetchOrderDetails(ctx, orderID, branchID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.errMsg = messageFor(err)
		return nil
	}
	return details
}

// GetTableOrders loads the orders attached to a table. Empty on failure.
func (m *Manager) GetTableOrders(ctx context.Context, tableID int) []backend.BranchOrder {
	m.mu.Lock()
	branchID := m.branchIDLocked()
	m.loading = true
	m.mu.Unlock()

	list, err := m.be.FetchTableOrders(ctx, tableID, branchID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.errMsg = messageFor(err)
		return []backend.BranchOrder{}
	}
	return list
}

// CreateSessionOrder turns a table session's basket into an order and
// refreshes the active view on success. Returns nil on failure.
func (m *Manager) CreateSessionOrder(ctx context.Context, req backend.SessionOrderRequest) *backend.Order {
	m.mu.Lock()
	branchID := m.branchIDLocked()
	m.mu.Unlock()

	order, err := m.be.CreateSessionOrder(ctx, branchID, req)
	return m.finishPlacement(ctx, order, err)
}

// CreateSmartOrder creates an order from a product list and refreshes the
// active view on success. Returns nil on failure.
func (m *Manager) CreateSmartOrder(ctx context.Context, req backend.SmartOrderRequest) *backend.Order {
	m.mu.Lock()
	branchID := m.branchIDLocked()
	m.mu.Unlock()

	order, err := m.be.CreateSmartOrder(ctx, branchID, req)
	return m.finishPlacement(ctx, order, err)
}

func (m *Manager) finishPlacement(ctx context.Context, order *backend.Order, err error) *backend.Order {
	m.mu.Lock()
	if err != nil {
		m.errMsg = messageFor(err)
		m.mu.Unlock()
		return nil
	}
	mode := m.viewMode
	m.mu.Unlock()

	m.fetchView(ctx, mode)
	return order
}

// --- view parameters ---

// SetFilter replaces the client-side filter and resets to page 1.
func (m *Manager) SetFilter(f Filter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = f
	m.page = 1
}

// SetPage moves to the given 1-based page.
func (m *Manager) SetPage(page int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page < 1 {
		page = 1
	}
	m.page = page
}

// SetPerPage changes the page size and resets to page 1.
func (m *Manager) SetPerPage(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 1 {
		n = defaultPerPage
	}
	m.perPage = n
	m.page = 1
}

// --- snapshot ---

// Snapshot is a consistent copy of the orchestrator state for the UI layer.
type Snapshot struct {
	Branches      []backend.Branch    `json:"branches"`
	CurrentBranch *backend.Branch     `json:"currentBranch,omitempty"`
	ViewMode      ViewMode            `json:"viewMode"`
	Loading       bool                `json:"loading"`
	Error         string              `json:"error,omitempty"`
	SelectedOrder *backend.Order      `json:"selectedOrder,omitempty"`
	Orders        []OrderView         `json:"orders"`
	TotalMatching int                 `json:"totalMatching"`
	Page          int                 `json:"page"`
	PerPage       int                 `json:"perPage"`
	ShowConfirm   bool                `json:"showConfirmModal"`
	ShowReject    bool                `json:"showRejectModal"`
	ShowCancel    bool                `json:"showCancelModal"`
	ShowStatus    bool                `json:"showStatusModal"`
}

// Snapshot renders the active view through the current filter and pagination.
// Order-type display metadata is resolved only when the cache is warm; no
// network is touched here.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var views []OrderView
	switch m.viewMode {
	case ViewBranch:
		views = make([]OrderView, 0, len(m.history))
		for _, o := range m.history {
			views = append(views, branchView(o))
		}
	default:
		views = make([]OrderView, 0, len(m.pending))
		for _, o := range m.pending {
			views = append(views, pendingView(o))
		}
	}
	for i := range views {
		m.typeMetaLocked(&views[i])
	}

	filtered := applyFilter(views, m.filter)
	pageViews := paginate(filtered, m.page, m.perPage)

	return Snapshot{
		Branches:      m.branches,
		CurrentBranch: m.current,
		ViewMode:      m.viewMode,
		Loading:       m.loading,
		Error:         m.errMsg,
		SelectedOrder: m.selectedOrder,
		Orders:        pageViews,
		TotalMatching: len(filtered),
		Page:          m.page,
		PerPage:       m.perPage,
		ShowConfirm:   m.modals.confirm,
		ShowReject:    m.modals.reject,
		ShowCancel:    m.modals.cancel,
		ShowStatus:    m.modals.status,
	}
}

// Err returns the shared error string (last-write-wins).
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// IsLoading reports the shared loading flag.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}
