package gateway

import (
	"context"
	"delivery-tracking-client/models"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// LoginResult is the raw credential material a successful login returns.
// The session store owns turning it into a persisted session.
type LoginResult struct {
	Token       string
	Role        string
	WarehouseID string
}

// Login authenticates against POST /auth/login. It is the only operation
// that does not attach a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, false)
	if err != nil {
		return LoginResult{}, &AuthError{Err: err}
	}

	var payload loginPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return LoginResult{}, &AuthError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if payload.Token == "" {
		return LoginResult{}, &AuthError{Err: &RequestError{
			StatusCode:    http.StatusOK,
			StatusText:    http.StatusText(http.StatusOK),
			ServerMessage: "response carried no token",
			BaseURL:       c.baseURL,
		}}
	}

	return LoginResult{
		Token:       payload.Token,
		Role:        payload.Role,
		WarehouseID: payload.WarehouseID,
	}, nil
}

// GetOrderStatus is the customer-facing single-order lookup.
func (c *Client) GetOrderStatus(ctx context.Context, orderNo string) (models.Order, error) {
	path := fmt.Sprintf("/orders/%s/status-overview", url.PathEscape(orderNo))
	raw, err := c.do(ctx, http.MethodGet, path, nil, nil, true)
	if err != nil {
		return models.Order{}, err
	}

	var payload orderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.Order{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload.normalize(), nil
}

// ListAssigned is the staff view of orders assigned to this warehouse.
func (c *Client) ListAssigned(ctx context.Context, page, limit int, sortBy, sortDir string) (models.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("sortBy", sortBy)
	q.Set("sortDir", sortDir)
	return c.listOrders(ctx, "/orders/my-assigned", q, page, limit)
}

// PickupQuery narrows the awaiting-pickup pool.
type PickupQuery struct {
	Unassigned bool
	Mine       bool
	Q          string
	City       string
}

// ListAwaitingPickup is the driver pool/mine pickup list.
func (c *Client) ListAwaitingPickup(ctx context.Context, page, limit int, filter PickupQuery) (models.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if filter.Unassigned {
		q.Set("unassigned", "true")
	}
	if filter.Mine {
		q.Set("mine", "true")
	}
	if filter.Q != "" {
		q.Set("q", filter.Q)
	}
	if filter.City != "" {
		q.Set("city", filter.City)
	}
	return c.listOrders(ctx, "/orders/awaiting-pickup", q, page, limit)
}

// ListMyInTransit lists the acting driver's claimed, undelivered orders.
func (c *Client) ListMyInTransit(ctx context.Context, page, limit int) (models.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return c.listOrders(ctx, "/orders/my-in-transit", q, page, limit)
}

// ListMyDelivered lists the acting driver's delivery history. The backend
// reuses the assigned endpoint with a status filter.
func (c *Client) ListMyDelivered(ctx context.Context, page, limit int) (models.Page, error) {
	q := url.Values{}
	q.Set("status", string(models.StatusDelivered))
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return c.listOrders(ctx, "/orders/my-assigned", q, page, limit)
}

func (c *Client) listOrders(ctx context.Context, path string, q url.Values, page, limit int) (models.Page, error) {
	raw, err := c.do(ctx, http.MethodGet, path, q, nil, true)
	if err != nil {
		return models.Page{}, err
	}

	var payload listPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.Page{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload.normalize(page, limit), nil
}

// ClaimPickup claims an unassigned pool order for the acting driver. The
// server rejects orders already claimed or otherwise ineligible.
func (c *Client) ClaimPickup(ctx context.Context, orderNo string) error {
	path := fmt.Sprintf("/orders/%s/claim-pickup", url.PathEscape(orderNo))
	body := map[string]bool{"verifyLabel": false, "advance": true}
	_, err := c.do(ctx, http.MethodPost, path, nil, body, true)
	return err
}

// SendOtp triggers server-side OTP dispatch to the customer.
func (c *Client) SendOtp(ctx context.Context, orderNo string) error {
	path := fmt.Sprintf("/orders/%s/otp/send", url.PathEscape(orderNo))
	_, err := c.do(ctx, http.MethodPost, path, nil, nil, true)
	return err
}

// VerifyOtp confirms delivery with the customer's code. Failures come back
// as *OtpError with a distinguishable reason.
func (c *Client) VerifyOtp(ctx context.Context, orderNo, code string) error {
	path := fmt.Sprintf("/orders/%s/otp/verify", url.PathEscape(orderNo))
	raw, err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"code": code}, true)
	if err == nil {
		return nil
	}

	reqErr, ok := err.(*RequestError)
	if !ok {
		return err
	}

	var payload verifyErrorPayload
	_ = json.Unmarshal(raw, &payload)
	message := payload.Message
	if message == "" {
		message = payload.ErrMsg
	}
	if message == "" {
		message = reqErr.ServerMessage
	}
	return classifyOtpError(payload.Code, message, payload.RemainingAttempts, reqErr)
}

// UpdateStatus applies a new status in the simpler order-status-only mode
// and returns the server-confirmed update time. Callers should treat the
// local order as stale until the next authoritative fetch.
func (c *Client) UpdateStatus(ctx context.Context, orderNo string, status models.Status) (*time.Time, error) {
	path := fmt.Sprintf("/orders/%s/status", url.PathEscape(orderNo))
	raw, err := c.do(ctx, http.MethodPost, path, nil, map[string]string{"status": string(status)}, true)
	if err != nil {
		return nil, err
	}

	var payload ackPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return parseTimestamp(payload.LastUpdated), nil
}
