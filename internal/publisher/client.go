// Package publisher talks to the game publisher's coupon redemption
// endpoint and classifies its responses.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sena-tools/coupon-relay/internal/config"
)

const maxResponseBodyBytes = 64 * 1024

// RequestError reports a redemption call that failed to complete: transport
// failure, timeout, or a body the publisher API never produces.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("publisher: %s: %v", e.Op, e.Err)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("publisher: %s status=%d", e.Op, e.StatusCode)
	}
	return "publisher: request failed"
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// redeemPayload is the fixed request shape the publisher expects.
type redeemPayload struct {
	Pid         string `json:"pid"`
	CouponCode  string `json:"couponCode"`
	GameCode    string `json:"gameCode"`
	ChannelCode int    `json:"channelCode"`
	LangCd      string `json:"langCd"`
}

// Client issues coupon redemption calls against the publisher endpoint.
type Client struct {
	endpoint    string
	gameCode    string
	channelCode int
	language    string
	origin      string
	referer     string
	userAgent   string
	httpClient  *http.Client
}

// NewClient constructs a publisher client from configuration.
func NewClient(cfg config.PublisherConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		endpoint:    cfg.Endpoint,
		gameCode:    cfg.GameCode,
		channelCode: cfg.ChannelCode,
		language:    cfg.Language,
		origin:      cfg.Origin,
		referer:     cfg.Referer,
		userAgent:   cfg.UserAgent,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Redeem performs exactly one redemption call for the given account and
// coupon code. It returns the decoded response together with the raw body.
func (c *Client) Redeem(ctx context.Context, accountID, code string) (*Response, []byte, error) {
	payload := redeemPayload{
		Pid:         accountID,
		CouponCode:  code,
		GameCode:    c.gameCode,
		ChannelCode: c.channelCode,
		LangCd:      c.language,
	}
	body, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return nil, nil, &RequestError{Op: "encode request", Err: errMarshal}
	}

	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if errReq != nil {
		return nil, nil, &RequestError{Op: "build request", Err: errReq}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	// The publisher rejects calls without a browser-matching origin/referer.
	req.Header.Set("Origin", c.origin)
	req.Header.Set("Referer", c.referer)

	resp, errDo := c.httpClient.Do(req)
	if errDo != nil {
		return nil, nil, &RequestError{Op: "call endpoint", Err: errDo}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, errRead := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if errRead != nil {
		return nil, nil, &RequestError{Op: "read response", StatusCode: resp.StatusCode, Err: errRead}
	}

	decoded, errDecode := DecodeResponse(raw)
	if errDecode != nil {
		return nil, raw, &RequestError{Op: "decode response", StatusCode: resp.StatusCode, Err: errDecode}
	}
	return decoded, raw, nil
}
