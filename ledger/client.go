package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Wirelextechs/datagod/model"
)

// The record store speaks a PostgREST-style REST API: tables are paths,
// filters are query params (col=eq.value), and writes are steered with
// Prefer headers. The store is the single source of truth for orders and
// packages; this client never caches.

var (
	ErrConflict    = errors.New("ledger: conflict")
	ErrUnavailable = errors.New("ledger: unavailable")
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, table, rawQuery string, body any) (*http.Request, error) {
	u := c.baseURL + "/" + table
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		buf = bytes.NewBuffer(data)
	} else {
		buf = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// CreateOrder inserts a new PENDING order row. Duplicate short_id or
// gateway_reference surfaces as ErrConflict.
func (c *Client) CreateOrder(ctx context.Context, o model.Order) error {
	req, err := c.newRequest(ctx, "POST", "orders", "", o)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode >= 300:
		return fmt.Errorf("%w: create order: %s", ErrUnavailable, resp.Status)
	}
	return nil
}

// FindOrderByShortID returns nil, nil when no order matches.
func (c *Client) FindOrderByShortID(ctx context.Context, shortID string) (*model.Order, error) {
	return c.findOrder(ctx, "short_id=eq."+url.QueryEscape(shortID))
}

// FindOrderByReference returns nil, nil when no order matches.
func (c *Client) FindOrderByReference(ctx context.Context, reference string) (*model.Order, error) {
	return c.findOrder(ctx, "gateway_reference=eq."+url.QueryEscape(reference))
}

func (c *Client) findOrder(ctx context.Context, filter string) (*model.Order, error) {
	req, err := c.newRequest(ctx, "GET", "orders", filter+"&limit=1", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: find order: %s", ErrUnavailable, resp.Status)
	}

	var rows []model.Order
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode order: %v", ErrUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// CountOrders returns the total number of order rows. The count is read
// from the Content-Range header the store emits for count=exact requests.
func (c *Client) CountOrders(ctx context.Context) (int64, error) {
	req, err := c.newRequest(ctx, "GET", "orders", "select=id", nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")
	req.Header.Set("Range", "0-0")
	req.Header.Set("Range-Unit", "items")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: count orders: %s", ErrUnavailable, resp.Status)
	}

	// Content-Range: 0-0/3573 (or */0 for an empty table)
	cr := resp.Header.Get("Content-Range")
	idx := strings.LastIndex(cr, "/")
	if idx < 0 {
		return 0, fmt.Errorf("%w: count orders: missing Content-Range", ErrUnavailable)
	}
	total := cr[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("%w: count orders: inexact count", ErrUnavailable)
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: count orders: bad Content-Range %q", ErrUnavailable, cr)
	}
	return n, nil
}

// MarkPaid flips the order with the given gateway reference from PENDING to
// PAID. The filter on the current status makes the update conditional: a
// concurrent confirmation that already won leaves nothing to update, and
// MarkPaid reports updated=false without error.
func (c *Client) MarkPaid(ctx context.Context, reference string) (bool, error) {
	filter := "gateway_reference=eq." + url.QueryEscape(reference) +
		"&status=eq." + string(model.StatusPending)
	return c.patchStatus(ctx, filter, model.StatusPaid)
}

// UpdateOrderStatus moves an order from one status to another, conditional
// on the current status so concurrent admin edits cannot stomp each other.
func (c *Client) UpdateOrderStatus(ctx context.Context, shortID string, from, to model.OrderStatus) (bool, error) {
	filter := "short_id=eq." + url.QueryEscape(shortID) + "&status=eq." + string(from)
	return c.patchStatus(ctx, filter, to)
}

func (c *Client) patchStatus(ctx context.Context, filter string, to model.OrderStatus) (bool, error) {
	body := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	req, err := c.newRequest(ctx, "PATCH", "orders", filter, body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return false, fmt.Errorf("%w: update status: %s", ErrUnavailable, resp.Status)
	}

	var rows []model.Order
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return false, fmt.Errorf("%w: decode update: %v", ErrUnavailable, err)
	}
	return len(rows) > 0, nil
}

// ListOrders returns all orders, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]model.Order, error) {
	req, err := c.newRequest(ctx, "GET", "orders", "order=created_at.desc", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: list orders: %s", ErrUnavailable, resp.Status)
	}

	var rows []model.Order
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode orders: %v", ErrUnavailable, err)
	}
	return rows, nil
}

// GetPackage returns nil, nil when the package does not exist.
func (c *Client) GetPackage(ctx context.Context, id int64) (*model.Package, error) {
	req, err := c.newRequest(ctx, "GET", "packages", "id=eq."+strconv.FormatInt(id, 10)+"&limit=1", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: get package: %s", ErrUnavailable, resp.Status)
	}

	var rows []model.Package
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode package: %v", ErrUnavailable, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ListPackages returns the enabled packages sorted ascending by data volume.
func (c *Client) ListPackages(ctx context.Context) ([]model.Package, error) {
	req, err := c.newRequest(ctx, "GET", "packages", "is_enabled=eq.true&order=data_value_gb.asc", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: list packages: %s", ErrUnavailable, resp.Status)
	}

	var rows []model.Package
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode packages: %v", ErrUnavailable, err)
	}
	return rows, nil
}

// GetSettings returns the storefront settings row.
func (c *Client) GetSettings(ctx context.Context) (*model.Settings, error) {
	req, err := c.newRequest(ctx, "GET", "settings", "limit=1", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: get settings: %s", ErrUnavailable, resp.Status)
	}

	var rows []model.Settings
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: decode settings: %v", ErrUnavailable, err)
	}
	if len(rows) == 0 {
		return &model.Settings{}, nil
	}
	return &rows[0], nil
}
