package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/menuflow/dashboard-gateway/internal/backend"
)

// apiResponse is the uniform gateway envelope.
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(raw)
}

func (s *Server) respondData(w http.ResponseWriter, code int, data interface{}) {
	s.respondJSON(w, code, apiResponse{Success: true, Data: data})
}

func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respondJSON(w, code, apiResponse{Success: false, Error: message})
}

// upstreamCtx forwards the operator's Authorization header to the backend
// verbatim; the gateway itself never inspects tokens.
func upstreamCtx(r *http.Request) context.Context {
	return backend.WithAuthorization(r.Context(), r.Header.Get("Authorization"))
}

type health struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, health{
		Status:    "ok",
		Version:   "0.1.0",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// --- branches ---

func (s *Server) listBranchesHandler(w http.ResponseWriter, r *http.Request) {
	mgr := s.manager(r)
	mgr.FetchBranches(upstreamCtx(r))
	if msg := mgr.Err(); msg != "" {
		s.respondError(w, http.StatusBadGateway, msg)
		return
	}
	s.respondData(w, http.StatusOK, mgr.Branches())
}

type selectBranchRequest struct {
	BranchID   int    `json:"branchId"`
	BranchName string `json:"branchName"`
}

func (s *Server) selectBranchHandler(w http.ResponseWriter, r *http.Request) {
	var req selectBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	mgr := s.manager(r)
	mgr.SelectBranch(upstreamCtx(r), backend.Branch{ID: req.BranchID, Name: req.BranchName})
	s.respondData(w, http.StatusOK, mgr.Snapshot())
}

// --- order types ---

func (s *Server) listOrderTypesHandler(w http.ResponseWriter, r *http.Request) {
	mgr := s.manager(r)
	types := mgr.AllOrderTypes(upstreamCtx(r))
	if types == nil {
		if msg := mgr.Err(); msg != "" {
			s.respondError(w, http.StatusBadGateway, msg)
			return
		}
	}
	if r.URL.Query().Get("active") == "true" {
		s.respondData(w, http.StatusOK, mgr.ActiveOrderTypes(upstreamCtx(r)))
		return
	}
	s.respondData(w, http.StatusOK, types)
}

func (s *Server) refreshOrderTypesHandler(w http.ResponseWriter, r *http.Request) {
	mgr := s.manager(r)
	mgr.RefreshOrderTypes(upstreamCtx(r))
	if msg := mgr.Err(); msg != "" {
		s.respondError(w, http.StatusBadGateway, msg)
		return
	}
	s.respondData(w, http.StatusOK, mgr.AllOrderTypes(upstreamCtx(r)))
}

// --- menu passthrough (read-only) ---

func (s *Server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	mgr := s.manager(r)
	categories, err := s.client.FetchCategories(upstreamCtx(r), mgr.CurrentBranchID())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondData(w, http.StatusOK, categories)
}

func (s *Server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	mgr := s.manager(r)
	products, err := s.client.FetchProducts(upstreamCtx(r), mgr.CurrentBranchID())
	if err != nil {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.respondData(w, http.StatusOK, products)
}

// --- admin ---

func (s *Server) breakerMetricsHandler(w http.ResponseWriter, r *http.Request) {
	s.respondData(w, http.StatusOK, s.breaker.Metrics())
}
