package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/menuflow/dashboard-gateway/internal/backend"
	"github.com/menuflow/dashboard-gateway/internal/orders"
)

func (s *Server) pendingOrdersHandler(w http.ResponseWriter, r *http.Request) {
	mgr := s.manager(r)
	mgr.SwitchViewMode(upstreamCtx(r), orders.ViewPending)
	s.respondData(w, http.StatusOK, mgr.Snapshot())
}

func (s *Server) historicalOrdersHandler(w http.ResponseWriter, r *http.Request) {
	mgr := s.manager(r)
	mgr.SwitchViewMode(upstreamCtx(r), orders.ViewBranch)
	s.respondData(w, http.StatusOK, mgr.Snapshot())
}

func (s *Server) tableSummaryHandler(w http.ResponseWriter, r *http.Request) {
	mgr := s.manager(r)
	s.respondData(w, http.StatusOK, mgr.FetchTableBasketSummary(upstreamCtx(r)))
}

// --- mutations ---
// The browser's two-phase flow (open modal, collect input, commit) collapses
// into one gateway request carrying the rowVersion and any auxiliary input;
// the orchestrator still runs open-then-handle underneath.

type confirmOrderRequest struct {
	RowVersion string `json:"rowVersion"`
}

func (s *Server) confirmOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	var req confirmOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()
	if req.RowVersion == "" {
		s.respondError(w, http.StatusBadRequest, "rowVersion is required")
		return
	}

	mgr := s.manager(r)
	mgr.OpenConfirmModal(orderID, req.RowVersion)
	mgr.HandleConfirmOrder(upstreamCtx(r))
	s.respondMutation(w, mgr)
}

type rejectOrderRequest struct {
	RejectionReason string `json:"rejectionReason"`
	RowVersion      string `json:"rowVersion"`
}

func (s *Server) rejectOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	var req rejectOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()
	if req.RowVersion == "" {
		s.respondError(w, http.StatusBadRequest, "rowVersion is required")
		return
	}
	if req.RejectionReason == "" {
		s.respondError(w, http.StatusBadRequest, "rejectionReason is required")
		return
	}

	mgr := s.manager(r)
	mgr.OpenRejectModal(orderID, req.RowVersion)
	mgr.SetRejectReason(req.RejectionReason)
	mgr.HandleRejectOrder(upstreamCtx(r))
	s.respondMutation(w, mgr)
}

type cancelOrderRequest struct {
	CancellationReason string `json:"cancellationReason"`
	RowVersion         string `json:"rowVersion"`
}

func (s *Server) cancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()
	if req.RowVersion == "" {
		s.respondError(w, http.StatusBadRequest, "rowVersion is required")
		return
	}

	mgr := s.manager(r)
	mgr.OpenCancelModal(orderID, req.RowVersion)
	mgr.SetCancelReason(req.CancellationReason)
	mgr.HandleCancelOrder(upstreamCtx(r))
	s.respondMutation(w, mgr)
}

type updateStatusRequest struct {
	NewStatus  backend.OrderStatus `json:"newStatus"`
	RowVersion string              `json:"rowVersion"`
}

func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()
	if req.RowVersion == "" || req.NewStatus == "" {
		s.respondError(w, http.StatusBadRequest, "newStatus and rowVersion are required")
		return
	}

	mgr := s.manager(r)
	mgr.OpenStatusModal(orderID, req.RowVersion, req.NewStatus)
	mgr.HandleStatusUpdate(upstreamCtx(r))
	s.respondMutation(w, mgr)
}

// respondMutation reports the mutation outcome: the orchestrator records
// failures in its shared error field rather than returning them.
func (s *Server) respondMutation(w http.ResponseWriter, mgr *orders.Manager) {
	if msg := mgr.Err(); msg != "" {
		s.respondError(w, http.StatusConflict, msg)
		return
	}
	s.respondData(w, http.StatusOK, mgr.Snapshot().SelectedOrder)
}

// --- reads and placement ---

func (s *Server) orderDetailsHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]
	mgr := s.manager(r)
	details := mgr.GetOrderDetails(upstreamCtx(r), orderID)
	if details == nil {
		msg := mgr.Err()
		if msg == "" {
			msg = "order not found"
		}
		s.respondError(w, http.StatusNotFound, msg)
		return
	}
	s.respondData(w, http.StatusOK, details)
}

func (s *Server) tableOrdersHandler(w http.ResponseWriter, r *http.Request) {
	tableID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid table id")
		return
	}
	mgr := s.manager(r)
	s.respondData(w, http.StatusOK, mgr.GetTableOrders(upstreamCtx(r), tableID))
}

func (s *Server) createSessionOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req backend.SessionOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	mgr := s.manager(r)
	order := mgr.CreateSessionOrder(upstreamCtx(r), req)
	if order == nil {
		s.respondError(w, http.StatusBadGateway, mgr.Err())
		return
	}
	s.respondData(w, http.StatusCreated, order)
}

func (s *Server) createSmartOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req backend.SmartOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	mgr := s.manager(r)
	order := mgr.CreateSmartOrder(upstreamCtx(r), req)
	if order == nil {
		s.respondError(w, http.StatusBadGateway, mgr.Err())
		return
	}
	s.respondData(w, http.StatusCreated, order)
}
