package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/menuflow/dashboard-gateway/internal/backend"
	"github.com/menuflow/dashboard-gateway/internal/config"
	"github.com/menuflow/dashboard-gateway/internal/orders"
	"github.com/menuflow/dashboard-gateway/pkg/circuitbreaker"
	"github.com/menuflow/dashboard-gateway/pkg/logger"
	"github.com/menuflow/dashboard-gateway/pkg/ratelimit"
)

// sessionHeader identifies the operator session. Each session gets its own
// orchestrator instance, so two dashboard tabs do not fight over one
// mutation-intent slot.
const sessionHeader = "X-Dashboard-Session"

// Server is the dashboard gateway: a thin HTTP surface over per-session order
// orchestrators, all sharing one resilient backend client.
type Server struct {
	cfg        *config.Config
	log        logger.Logger
	router     *mux.Router
	httpServer *http.Server
	client     *backend.Client
	breaker    *circuitbreaker.Breaker

	mu       sync.Mutex
	sessions map[string]*orders.Manager

	globalLimiter *ratelimit.Bucket
	clientLimiter *ratelimit.PerClient
	upgrader      websocket.Upgrader
}

// NewServer wires the gateway with the given configuration and logger.
func NewServer(cfg *config.Config, log logger.Logger) *Server {
	r := mux.NewRouter()

	breaker := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		ResetTimeout:     cfg.Breaker.ResetTimeout,
		HalfOpenMaxCalls: cfg.Breaker.HalfOpenMaxCalls,
	})

	client := backend.NewClient(backend.Options{
		BaseURL:        cfg.Upstream.BaseURL,
		RequestTimeout: cfg.Upstream.RequestTimeout,
		MaxAttempts:    cfg.Upstream.MaxAttempts,
		Breaker:        breaker,
		Logger:         log,
	})

	s := &Server{
		cfg:      cfg,
		log:      log,
		router:   r,
		client:   client,
		breaker:  breaker,
		sessions: make(map[string]*orders.Manager),
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		globalLimiter: ratelimit.NewBucket(cfg.Limits.GlobalCapacity, cfg.Limits.GlobalRate),
		clientLimiter: ratelimit.NewPerClient(cfg.Limits.ClientCapacity, cfg.Limits.ClientRate),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}

	s.setupRoutes()
	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// manager returns the orchestrator for the request's session, creating it on
// first use.
func (s *Server) manager(r *http.Request) *orders.Manager {
	key := r.Header.Get(sessionHeader)
	if key == "" {
		key = "default"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	mgr, ok := s.sessions[key]
	if !ok {
		mgr = orders.NewManager(s.client, s.log)
		s.sessions[key] = mgr
	}
	return mgr
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.rateLimitMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", sessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	api.HandleFunc("/branches", s.listBranchesHandler).Methods(http.MethodGet)
	api.HandleFunc("/branch/select", s.selectBranchHandler).Methods(http.MethodPost)

	api.HandleFunc("/orders/pending", s.pendingOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/history", s.historicalOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/table-summary", s.tableSummaryHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/session", s.createSessionOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/smart", s.createSmartOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", s.orderDetailsHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/confirm", s.confirmOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/reject", s.rejectOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/cancel", s.cancelOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/status", s.updateStatusHandler).Methods(http.MethodPatch)
	api.HandleFunc("/tables/{id}/orders", s.tableOrdersHandler).Methods(http.MethodGet)

	api.HandleFunc("/ordertypes", s.listOrderTypesHandler).Methods(http.MethodGet)
	api.HandleFunc("/ordertypes/refresh", s.refreshOrderTypesHandler).Methods(http.MethodPost)

	api.HandleFunc("/menu/categories", s.listCategoriesHandler).Methods(http.MethodGet)
	api.HandleFunc("/menu/products", s.listProductsHandler).Methods(http.MethodGet)

	api.HandleFunc("/ws/events", s.eventsHandler).Methods(http.MethodGet)

	admin := s.router.PathPrefix("/api/v1/admin").Subrouter()
	admin.HandleFunc("/breaker", s.breakerMetricsHandler).Methods(http.MethodGet)
}

func originChecker(allowed []string) func(*http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		_, ok := set[r.Header.Get("Origin")]
		return ok
	}
}
