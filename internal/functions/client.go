// Package functions calls the hosted HTTPS functions that own payment and
// item scanning: scan_in_item, purchase_single_haul, purchase_subscription
// and verify_checkout_session.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// Function names.
const (
	ScanInItem            = "scan_in_item"
	PurchaseSingleHaul    = "purchase_single_haul"
	PurchaseSubscription  = "purchase_subscription"
	VerifyCheckoutSession = "verify_checkout_session"
)

// Caller is what features depend on.
type Caller interface {
	Call(ctx context.Context, name string, payload, out any) error
	Post(ctx context.Context, name string, payload, out any) error
}

type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	// TokenSource signs outbound calls. When nil the caller's own ID token,
	// taken from the request context, is forwarded instead.
	TokenSource oauth2.TokenSource
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client talks to the functions endpoint. Calls are rate limited and
// never retried.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
	log        *zap.Logger
}

func NewClient(opt Options) *Client {
	if opt.Timeout <= 0 {
		opt.Timeout = 15 * time.Second
	}
	if opt.RatePerSecond <= 0 {
		opt.RatePerSecond = 4
	}
	if opt.Burst <= 0 {
		opt.Burst = 8
	}
	if opt.HTTPClient == nil {
		opt.HTTPClient = &http.Client{}
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(opt.BaseURL, "/"),
		timeout:    opt.Timeout,
		httpClient: opt.HTTPClient,
		tokens:     opt.TokenSource,
		limiter:    rate.NewLimiter(rate.Limit(opt.RatePerSecond), opt.Burst),
		log:        opt.Logger,
	}
}

// NewIDTokenSource returns Google-signed ID tokens for audience, using a
// service account key file when credentialsPath is set.
func NewIDTokenSource(ctx context.Context, audience, credentialsPath string) (oauth2.TokenSource, error) {
	var opts []idtoken.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	ts, err := idtoken.NewTokenSource(ctx, audience, opts...)
	if err != nil {
		return nil, fmt.Errorf("id token source: %w", err)
	}
	return ts, nil
}

type callRequest struct {
	Data any `json:"data"`
}

type callResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *callErrorBody  `json:"error"`
}

type callErrorBody struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Call invokes a callable function: the payload is wrapped as {"data": ...}
// and the "result" member of the response is decoded into out.
func (c *Client) Call(ctx context.Context, name string, payload, out any) error {
	body, status, err := c.do(ctx, name, callRequest{Data: payload})
	if err != nil {
		return err
	}

	var resp callResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			if status >= 300 {
				return &CallError{Function: name, HTTPStatus: status, Status: statusFromHTTP(status), Message: strings.TrimSpace(string(body))}
			}
			return fmt.Errorf("%s: failed to unmarshal response: %w", name, err)
		}
	}
	if resp.Error != nil {
		return &CallError{
			Function:   name,
			HTTPStatus: status,
			Status:     resp.Error.Status,
			Message:    resp.Error.Message,
			Details:    resp.Error.Details,
		}
	}
	if status >= 300 {
		return &CallError{Function: name, HTTPStatus: status, Status: statusFromHTTP(status), Message: http.StatusText(status)}
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: failed to unmarshal result: %w", name, err)
	}
	return nil
}

// Post sends payload as a plain JSON body and decodes the JSON reply.
func (c *Client) Post(ctx context.Context, name string, payload, out any) error {
	body, status, err := c.do(ctx, name, payload)
	if err != nil {
		return err
	}
	if status >= 300 {
		return &CallError{Function: name, HTTPStatus: status, Status: statusFromHTTP(status), Message: errorMessage(body, status)}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to unmarshal response: %w", name, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, name string, payload any) ([]byte, int, error) {
	if c.baseURL == "" {
		return nil, 0, fmt.Errorf("%s: %w", name, ErrNotConfigured)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("%s: rate limit: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to marshal request: %w", name, err)
	}

	url := c.baseURL + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to create request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", name, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: request failed: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s: failed to read response: %w", name, err)
	}

	c.log.Debug("function call",
		zap.String("function", name),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return body, resp.StatusCode, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		tok.SetAuthHeader(req)
		return nil
	}
	if t := CallerToken(ctx); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	return nil
}

func errorMessage(body []byte, status int) string {
	var parsed struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		switch e := parsed.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]any:
			if m, ok := e["message"].(string); ok && m != "" {
				return m
			}
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return http.StatusText(status)
}
