package orders

import "github.com/menuflow/dashboard-gateway/internal/backend"

// mutationKind discriminates what the operator is about to do.
type mutationKind string

const (
	mutationNone    mutationKind = ""
	mutationConfirm mutationKind = "confirm"
	mutationReject  mutationKind = "reject"
	mutationCancel  mutationKind = "cancel"
	mutationStatus  mutationKind = "status"
)

// mutationIntent is the transient "which order, which action, which row
// version" record alive while a confirmation modal is open. A single slot:
// opening a new modal overwrites the previous intent. Never persisted.
type mutationIntent struct {
	kind         mutationKind
	orderID      string
	rowVersion   string
	rejectReason string
	cancelReason string
	newStatus    backend.OrderStatus
}

// modalState tracks which confirmation modal is visible. The UI keeps at most
// one open; opening any modal closes the rest.
type modalState struct {
	confirm bool
	reject  bool
	cancel  bool
	status  bool
}

func (m *Manager) openModal(kind mutationKind, intent mutationIntent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.intent = intent
	m.modals = modalState{
		confirm: kind == mutationConfirm,
		reject:  kind == mutationReject,
		cancel:  kind == mutationCancel,
		status:  kind == mutationStatus,
	}
}

// OpenConfirmModal records the intent to confirm a pending order.
func (m *Manager) OpenConfirmModal(orderID, rowVersion string) {
	m.openModal(mutationConfirm, mutationIntent{
		kind:       mutationConfirm,
		orderID:    orderID,
		rowVersion: rowVersion,
	})
}

// OpenRejectModal records the intent to reject a pending order. The reason is
// supplied afterwards via SetRejectReason.
func (m *Manager) OpenRejectModal(orderID, rowVersion string) {
	m.openModal(mutationReject, mutationIntent{
		kind:       mutationReject,
		orderID:    orderID,
		rowVersion: rowVersion,
	})
}

// OpenCancelModal records the intent to cancel an order.
func (m *Manager) OpenCancelModal(orderID, rowVersion string) {
	m.openModal(mutationCancel, mutationIntent{
		kind:       mutationCancel,
		orderID:    orderID,
		rowVersion: rowVersion,
	})
}

// OpenStatusModal records the intent to move an order to newStatus.
func (m *Manager) OpenStatusModal(orderID, rowVersion string, newStatus backend.OrderStatus) {
	m.openModal(mutationStatus, mutationIntent{
		kind:       mutationStatus,
		orderID:    orderID,
		rowVersion: rowVersion,
		newStatus:  newStatus,
	})
}

// SetRejectReason fills the reject modal's reason field.
func (m *Manager) SetRejectReason(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intent.rejectReason = reason
}

// SetCancelReason fills the cancel modal's reason field.
func (m *Manager) SetCancelReason(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intent.cancelReason = reason
}

// CloseModals dismisses any open modal and clears the pending intent.
func (m *Manager) CloseModals() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearIntentLocked()
}

func (m *Manager) clearIntentLocked() {
	m.intent = mutationIntent{}
	m.modals = modalState{}
}
