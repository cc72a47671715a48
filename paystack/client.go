package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.paystack.co"

var (
	ErrUnauthenticated = errors.New("paystack: invalid or missing secret key")
	ErrUnavailable     = errors.New("paystack: unavailable")
)

// RejectedError is returned when the gateway answers with a non-2xx status
// other than 401.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("paystack: rejected with %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	secret  string
	baseURL string
	http    *http.Client
}

func NewClient(secret string) *Client {
	return &Client{
		secret:  secret,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type InitializeRequest struct {
	Email       string
	AmountMinor int64 // minor units, server-computed
	Reference   string
	CallbackURL string
	Metadata    map[string]any
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type VerificationResult struct {
	Success         bool
	PaidAmountMinor int64
	GatewayStatus   string
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction opens a transaction with the gateway and returns the
// hosted checkout URL. The amount must already include the processing fee;
// it is never taken from an end-user request.
func (c *Client) InitializeTransaction(ctx context.Context, in InitializeRequest) (*InitializeResult, error) {
	if in.AmountMinor <= 0 {
		return nil, fmt.Errorf("paystack: non-positive amount %d", in.AmountMinor)
	}

	payload := map[string]any{
		"email":        in.Email,
		"amount":       in.AmountMinor,
		"reference":    in.Reference,
		"callback_url": in.CallbackURL,
		"currency":     "GHS",
	}
	if in.Metadata != nil {
		payload["metadata"] = in.Metadata
	}

	env, err := c.call(ctx, "POST", "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack: decode initialize: %w", err)
	}
	return &InitializeResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// VerifyTransaction asks the gateway for the final state of a transaction.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerificationResult, error) {
	env, err := c.call(ctx, "GET", "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack: decode verify: %w", err)
	}
	return &VerificationResult{
		Success:         data.Status == "success",
		PaidAmountMinor: data.Amount,
		GatewayStatus:   data.Status,
	}, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any) (*apiEnvelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthenticated
	case resp.StatusCode >= 300:
		return nil, &RejectedError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("paystack: decode response: %w", err)
	}
	return &env, nil
}
