package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/menuflow/dashboard-gateway/pkg/apperr"
	"github.com/menuflow/dashboard-gateway/pkg/circuitbreaker"
	"github.com/menuflow/dashboard-gateway/pkg/logger"
	"github.com/menuflow/dashboard-gateway/pkg/retry"
)

type authKey struct{}

// WithAuthorization attaches the operator's Authorization header value to the
// context; the client forwards it verbatim on every request.
func WithAuthorization(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, authKey{}, header)
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxAttempts    int // applies to reads only
	Breaker        *circuitbreaker.Breaker
	Logger         logger.Logger
}

// Client is the REST client family for the restaurant backend. Reads are
// retried with backoff; mutations get exactly one attempt, since replaying a
// mutation whose rowVersion was already consumed would surface a spurious
// conflict to the operator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
	breaker    *circuitbreaker.Breaker
	retryCfg   retry.Config
}

// NewClient creates a backend client.
func NewClient(opts Options) *Client {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        opts.Logger,
		breaker:    opts.Breaker,
		retryCfg: retry.Config{
			MaxAttempts: attempts,
			Backoff:     retry.DefaultExponential(),
			Logger:      opts.Logger,
			Retryable:   apperr.IsRetryable,
		},
	}
}

// scope renders the optional branchId query parameter. A nil branch id is
// omitted entirely; the backend then falls back to the caller's default scope.
func scope(branchID *int) url.Values {
	q := url.Values{}
	if branchID != nil {
		q.Set("branchId", strconv.Itoa(*branchID))
	}
	return q
}

// --- branches ---

// FetchBranches loads the operator's accessible branches.
func (c *Client) FetchBranches(ctx context.Context) ([]Branch, error) {
	var out []Branch
	err := c.get(ctx, "/branches/dropdown", nil, &out)
	return out, err
}

// --- order collections ---

// FetchPendingOrders lists orders awaiting confirmation for the branch.
func (c *Client) FetchPendingOrders(ctx context.Context, branchID *int) ([]PendingOrder, error) {
	var out []PendingOrder
	err := c.get(ctx, "/orders/pending", scope(branchID), &out)
	return out, err
}

// FetchBranchOrders lists the full/historical order view for the branch.
func (c *Client) FetchBranchOrders(ctx context.Context, branchID *int) ([]BranchOrder, error) {
	var out []BranchOrder
	err := c.get(ctx, "/orders/branch", scope(branchID), &out)
	return out, err
}

// FetchTableSummary returns per-table pending basket totals.
func (c *Client) FetchTableSummary(ctx context.Context, branchID *int) ([]TableBasketSummary, error) {
	var out []TableBasketSummary
	err := c.get(ctx, "/orders/table-summary", scope(branchID), &out)
	return out, err
}

// --- order mutations (rowVersion required, single attempt) ---

type confirmRequest struct {
	RowVersion string `json:"rowVersion"`
}

// ConfirmOrder confirms a pending order.
func (c *Client) ConfirmOrder(ctx context.Context, orderID string, branchID *int, rowVersion string) (*Order, error) {
	var out Order
	path := fmt.Sprintf("/orders/%s/confirm", url.PathEscape(orderID))
	err := c.send(ctx, http.MethodPost, path, scope(branchID), confirmRequest{RowVersion: rowVersion}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type rejectRequest struct {
	RejectionReason string `json:"rejectionReason"`
	RowVersion      string `json:"rowVersion"`
}

// RejectOrder rejects a pending order with a reason.
func (c *Client) RejectOrder(ctx context.Context, orderID string, branchID *int, reason, rowVersion string) (*Order, error) {
	var out Order
	path := fmt.Sprintf("/orders/%s/reject", url.PathEscape(orderID))
	err := c.send(ctx, http.MethodPost, path, scope(branchID), rejectRequest{RejectionReason: reason, RowVersion: rowVersion}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type statusRequest struct {
	NewStatus          OrderStatus `json:"newStatus"`
	CancellationReason string      `json:"cancellationReason,omitempty"`
	RowVersion         string      `json:"rowVersion"`
}

// UpdateOrderStatus moves an order to newStatus. Cancellation is a status
// update to Cancelled with an optional reason.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, branchID *int, newStatus OrderStatus, reason, rowVersion string) (*Order, error) {
	var out Order
	path := fmt.Sprintf("/orders/%s/status", url.PathEscape(orderID))
	err := c.send(ctx, http.MethodPatch, path, scope(branchID), statusRequest{NewStatus: newStatus, CancellationReason: reason, RowVersion: rowVersion}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --- order placement passthroughs ---

// CreateSessionOrder turns a table session's basket into an order.
func (c *Client) CreateSessionOrder(ctx context.Context, branchID *int, req SessionOrderRequest) (*Order, error) {
	var out Order
	err := c.send(ctx, http.MethodPost, "/orders/session", scope(branchID), req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSmartOrder creates an order directly from a product list.
func (c *Client) CreateSmartOrder(ctx context.Context, branchID *int, req SmartOrderRequest) (*Order, error) {
	var out Order
	err := c.send(ctx, http.MethodPost, "/orders/smart", scope(branchID), req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// --- on-demand reads ---

// FetchOrderDetails loads one order for a detail view.
func (c *Client) FetchOrderDetails(ctx context.Context, orderID string, branchID *int) (*OrderDetails, error) {
	var out OrderDetails
	path := fmt.Sprintf("/orders/%s", url.PathEscape(orderID))
	if err := c.get(ctx, path, scope(branchID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTableOrders lists the orders attached to a table.
func (c *Client) FetchTableOrders(ctx context.Context, tableID int, branchID *int) ([]BranchOrder, error) {
	var out []BranchOrder
	path := fmt.Sprintf("/tables/%d/orders", tableID)
	err := c.get(ctx, path, scope(branchID), &out)
	return out, err
}

// --- order types and menu ---

// FetchOrderTypes loads the branch's order-type metadata.
func (c *Client) FetchOrderTypes(ctx context.Context, branchID *int) ([]OrderType, error) {
	var out []OrderType
	err := c.get(ctx, "/ordertypes", scope(branchID), &out)
	return out, err
}

// FetchCategories lists the branch's menu categories.
func (c *Client) FetchCategories(ctx context.Context, branchID *int) ([]Category, error) {
	var out []Category
	err := c.get(ctx, "/menu/categories", scope(branchID), &out)
	return out, err
}

// FetchProducts lists the branch's products.
func (c *Client) FetchProducts(ctx context.Context, branchID *int) ([]Product, error) {
	var out []Product
	err := c.get(ctx, "/menu/products", scope(branchID), &out)
	return out, err
}

// --- transport ---

// get performs a read with retry.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return retry.Do(ctx, c.retryCfg, func() error {
		return c.roundTrip(ctx, http.MethodGet, path, query, nil, out)
	})
}

// send performs a mutation: exactly one attempt.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	return c.roundTrip(ctx, method, path, query, body, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.breaker != nil && !c.breaker.Allow() {
		return apperr.Unavailable("backend temporarily unavailable (circuit open)")
	}

	err := c.doRequest(ctx, method, path, query, body, out)
	if c.breaker != nil {
		// Application-level rejections (APIError) mean the upstream is
		// healthy; only transport failures count against the breaker.
		var apiErr *APIError
		if err == nil || errors.As(err, &apiErr) {
			c.breaker.Success()
		} else {
			c.breaker.Failure()
		}
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperr.Internal(fmt.Sprintf("failed to marshal request: %v", err))
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if auth, ok := ctx.Value(authKey{}).(string); ok && auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return apperr.Timeout("backend request timed out")
		}
		return apperr.Unreachable(fmt.Sprintf("failed to reach backend: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("failed to read response body: %v", err))
	}

	switch {
	case resp.StatusCode >= 500:
		return apperr.Temporary(fmt.Sprintf("backend error: %d", resp.StatusCode), resp.StatusCode)
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return apperr.Timeout("backend request timed out")
	case resp.StatusCode >= 400:
		return parseAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperr.Internal(fmt.Sprintf("failed to parse response: %v", err))
	}
	return nil
}
