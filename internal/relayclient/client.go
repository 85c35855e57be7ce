// Package relayclient is the HTTP client the batch driver uses to talk to a
// coupon-relay server.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result is the relay server's answer to one redemption request.
type Result struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Reward    string `json:"reward,omitempty"`
	ErrorCode int    `json:"errorCode,omitempty"`
}

type redeemRequest struct {
	UID        string `json:"uid"`
	CouponCode string `json:"couponCode"`
}

type couponsResponse struct {
	Coupons []string `json:"coupons"`
}

// Client calls a coupon-relay server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a relay client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Redeem submits one coupon redemption. A non-nil error means the call did
// not produce a classified outcome (transport failure, relay unavailable).
func (c *Client) Redeem(ctx context.Context, accountID, code string) (Result, error) {
	body, errMarshal := json.Marshal(redeemRequest{UID: accountID, CouponCode: code})
	if errMarshal != nil {
		return Result{}, fmt.Errorf("relayclient: encode request: %w", errMarshal)
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/redeem", bytes.NewReader(body))
	if errReq != nil {
		return Result{}, fmt.Errorf("relayclient: build request: %w", errReq)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return Result{}, fmt.Errorf("relayclient: redeem: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, errRead := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if errRead != nil {
		return Result{}, fmt.Errorf("relayclient: read response: %w", errRead)
	}

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("relayclient: redeem status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result Result
	if errUnmarshal := json.Unmarshal(raw, &result); errUnmarshal != nil {
		return Result{}, fmt.Errorf("relayclient: decode response: %w", errUnmarshal)
	}
	return result, nil
}

// Coupons fetches the relay's active coupon directory.
func (c *Client) Coupons(ctx context.Context) ([]string, error) {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coupons", nil)
	if errReq != nil {
		return nil, fmt.Errorf("relayclient: build request: %w", errReq)
	}

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return nil, fmt.Errorf("relayclient: coupons: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("relayclient: coupons status %d", resp.StatusCode)
	}

	var decoded couponsResponse
	if errDecode := json.NewDecoder(resp.Body).Decode(&decoded); errDecode != nil {
		return nil, fmt.Errorf("relayclient: decode coupons: %w", errDecode)
	}
	return decoded.Coupons, nil
}
