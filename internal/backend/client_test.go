package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuflow/dashboard-gateway/internal/backend"
	"github.com/menuflow/dashboard-gateway/pkg/apperr"
	"github.com/menuflow/dashboard-gateway/pkg/circuitbreaker"
	"github.com/menuflow/dashboard-gateway/pkg/logger"
)

func newClient(baseURL string, breaker *circuitbreaker.Breaker) *backend.Client {
	return backend.NewClient(backend.Options{
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
		MaxAttempts:    2,
		Breaker:        breaker,
		Logger:         logger.NewNop(),
	})
}

func TestFetchPendingOrders_BranchScope(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := newClient(srv.URL, nil)

	branchID := 7
	_, err := c.FetchPendingOrders(context.Background(), &branchID)
	require.NoError(t, err)
	assert.Equal(t, "branchId=7", gotQuery)

	// Nil branch id means the parameter is omitted entirely, so the server
	// falls back to the caller's default scope.
	_, err = c.FetchPendingOrders(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", gotQuery)
}

func TestConfirmOrder_SendsRowVersion(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(backend.Order{OrderID: "o1", Status: backend.StatusConfirmed, RowVersion: "v2"})
	}))
	defer srv.Close()
	c := newClient(srv.URL, nil)

	order, err := c.ConfirmOrder(context.Background(), "o1", nil, "v1")
	require.NoError(t, err)
	assert.Equal(t, "/orders/o1/confirm", gotPath)
	assert.Equal(t, "v1", gotBody["rowVersion"])
	assert.Equal(t, "v2", order.RowVersion)
}

func TestRejectOrder_SendsReasonAndRowVersion(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(backend.Order{OrderID: "o1", Status: backend.StatusRejected})
	}))
	defer srv.Close()
	c := newClient(srv.URL, nil)

	_, err := c.RejectOrder(context.Background(), "o1", nil, "out of stock", "v1")
	require.NoError(t, err)
	assert.Equal(t, "out of stock", gotBody["rejectionReason"])
	assert.Equal(t, "v1", gotBody["rowVersion"])
}

func TestGet_RetriesOnServerError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := newClient(srv.URL, nil)

	_, err := c.FetchBranchOrders(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestMutation_SingleAttempt(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := newClient(srv.URL, nil)

	_, err := c.ConfirmOrder(context.Background(), "o1", nil, "v1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrTemporary))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "a mutation must never be replayed")
}

func TestAPIError_EnvelopeParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid status transition","currentStatus":"Delivered"}`))
	}))
	defer srv.Close()
	c := newClient(srv.URL, nil)

	_, err := c.UpdateOrderStatus(context.Background(), "o1", nil, backend.StatusReady, "", "v1")
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid status transition", apiErr.Message)
	assert.Equal(t, "Delivered", apiErr.CurrentStatus)
}

func TestAPIError_FieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Validation failed","errors":{"rowVersion":["is required"]}}`))
	}))
	defer srv.Close()
	c := newClient(srv.URL, nil)

	_, err := c.ConfirmOrder(context.Background(), "o1", nil, "")
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "rowVersion: is required", apiErr.FlattenFieldErrors())
}

func TestBreaker_OpensAndShortCircuits(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	br := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		HalfOpenMaxCalls: 1,
	})
	c := newClient(srv.URL, br)

	_, err := c.ConfirmOrder(context.Background(), "o1", nil, "v1")
	require.Error(t, err)
	require.Equal(t, circuitbreaker.Open, br.CurrentState())
	before := atomic.LoadInt32(&hits)

	_, err = c.ConfirmOrder(context.Background(), "o1", nil, "v1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
	assert.Equal(t, before, atomic.LoadInt32(&hits), "open breaker must not reach the upstream")
}

func TestBreaker_APIErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"nope"}`))
	}))
	defer srv.Close()

	br := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 1,
		ResetTimeout:     time.Minute,
		HalfOpenMaxCalls: 1,
	})
	c := newClient(srv.URL, br)

	_, err := c.ConfirmOrder(context.Background(), "o1", nil, "v1")
	require.Error(t, err)
	assert.Equal(t, circuitbreaker.Closed, br.CurrentState(), "a healthy upstream saying no is not a failure")
}

func TestAuthorizationForwarded(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := newClient(srv.URL, nil)

	ctx := backend.WithAuthorization(context.Background(), "Bearer tok-1")
	_, err := c.FetchBranches(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}
