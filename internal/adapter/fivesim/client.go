package fivesim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrorCode classifies provider business errors surfaced to users.
type ErrorCode string

const (
	ErrCodeInsufficientBalance ErrorCode = "insufficient_balance"
	ErrCodeInsufficientRating  ErrorCode = "insufficient_rating"
	ErrCodeSelectCountry       ErrorCode = "select_country"
	ErrCodeSelectOperator      ErrorCode = "select_operator"
	ErrCodeBadCountry          ErrorCode = "bad_country"
	ErrCodeBadOperator         ErrorCode = "bad_operator"
	ErrCodeNoProduct           ErrorCode = "no_product"
	ErrCodeNoFreePhones        ErrorCode = "no_free_phones"
	ErrCodeServerOffline       ErrorCode = "server_offline"
	ErrCodeUnknown             ErrorCode = "unknown"
)

// businessCodes maps raw provider error bodies to error codes.
var businessCodes = map[string]ErrorCode{
	"not enough user balance": ErrCodeInsufficientBalance,
	"not enough rating":       ErrCodeInsufficientRating,
	"select country":          ErrCodeSelectCountry,
	"select operator":         ErrCodeSelectOperator,
	"bad country":             ErrCodeBadCountry,
	"bad operator":            ErrCodeBadOperator,
	"no product":              ErrCodeNoProduct,
	"no free phones":          ErrCodeNoFreePhones,
	"server offline":          ErrCodeServerOffline,
}

// APIError describes a non-2xx provider response.
type APIError struct {
	Code       ErrorCode
	HTTPStatus int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fivesim: %s (status %d, code %s)", e.Message, e.HTTPStatus, e.Code)
}

// Business reports whether the error represents a provider business rule
// rather than a transport failure.
func (e *APIError) Business() bool {
	return e.Code != ErrCodeUnknown && e.Code != ErrCodeServerOffline
}

// SMS mirrors one inbox message in provider order payloads.
type SMS struct {
	ID     int64     `json:"id"`
	Date   time.Time `json:"date"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	Code   string    `json:"code"`
}

// Order mirrors the provider activation order payload.
type Order struct {
	ID       int64     `json:"id"`
	Phone    string    `json:"phone"`
	Operator string    `json:"operator"`
	Product  string    `json:"product"`
	Price    float64   `json:"price"`
	Status   string    `json:"status"`
	Expires  time.Time `json:"expires"`
	SMS      []SMS     `json:"sms"`
	Country  string    `json:"country"`
}

// BuyOptions carries optional activation purchase parameters.
// MaxPrice is honoured by the provider only when operator is "any".
type BuyOptions struct {
	Forwarding bool
	Number     string
	Reuse      bool
	Voice      bool
	Ref        string
	MaxPrice   *float64
}

// Client exposes the provider operations consumed by the service.
type Client interface {
	BuyActivation(ctx context.Context, country, operator, product string, opts BuyOptions) (*Order, error)
	BuyHosting(ctx context.Context, country, operator, product string) (*Order, error)
	Reuse(ctx context.Context, product, number string) error
	Check(ctx context.Context, orderID string) (*Order, error)
	Finish(ctx context.Context, orderID string) (*Order, error)
	Cancel(ctx context.Context, orderID string) (*Order, error)
	Ban(ctx context.Context, orderID string) (*Order, error)
	GuestPrices(ctx context.Context, country, product string) (map[string]any, error)
	Countries(ctx context.Context) (map[string]any, error)
	Profile(ctx context.Context) (*ProfileInfo, error)
}

// ProfileInfo mirrors the provider user profile payload.
type ProfileInfo struct {
	Email   string  `json:"email"`
	Vendor  string  `json:"vendor"`
	Balance float64 `json:"balance"`
	Rating  float64 `json:"rating"`
}

// HTTPClient implements Client over the provider HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	retries    int
	logger     *slog.Logger
}

// NewHTTPClient creates provider client with default timeout.
func NewHTTPClient(baseURL, token string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("provider url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		token:   token,
		logger:  logger,
		retries: 2,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = strings.TrimRight(endpoint.Path, "/") + path
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(500*(1<<(attempt-1))) * time.Millisecond
			if delay > 2*time.Second {
				delay = 2 * time.Second
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doOnce(ctx, endpoint.String(), out)
		if err == nil {
			return nil
		}
		lastErr = err

		// Retry only transport failures and 5xx/429; business 4xx is final.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatus >= 400 && apiErr.HTTPStatus < 500 && apiErr.HTTPStatus != http.StatusTooManyRequests {
			return err
		}
	}
	return lastErr
}

func (c *HTTPClient) doOnce(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		message := strings.TrimSpace(string(body))
		code, ok := businessCodes[strings.ToLower(message)]
		if !ok {
			code = ErrCodeUnknown
			if resp.StatusCode >= 500 {
				code = ErrCodeServerOffline
			}
			c.logger.Warn("provider request failed",
				slog.Int("status", resp.StatusCode),
				slog.String("body", message),
			)
		}
		return &APIError{Code: code, HTTPStatus: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// BuyActivation purchases an activation number.
// GET /v1/user/buy/activation/{country}/{operator}/{product}
func (c *HTTPClient) BuyActivation(ctx context.Context, country, operator, product string, opts BuyOptions) (*Order, error) {
	query := url.Values{}
	if opts.Forwarding {
		query.Set("forwarding", "1")
	}
	if opts.Number != "" {
		query.Set("number", opts.Number)
	}
	if opts.Reuse {
		query.Set("reuse", "1")
	}
	if opts.Voice {
		query.Set("voice", "1")
	}
	if opts.Ref != "" {
		query.Set("ref", opts.Ref)
	}
	if opts.MaxPrice != nil {
		query.Set("maxPrice", strconv.FormatFloat(*opts.MaxPrice, 'f', -1, 64))
	}
	if len(query) == 0 {
		query = nil
	}

	var order Order
	path := fmt.Sprintf("/v1/user/buy/activation/%s/%s/%s", country, operator, product)
	if err := c.get(ctx, path, query, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// BuyHosting purchases a hosting number.
// GET /v1/user/buy/hosting/{country}/{operator}/{product}
func (c *HTTPClient) BuyHosting(ctx context.Context, country, operator, product string) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/v1/user/buy/hosting/%s/%s/%s", country, operator, product)
	if err := c.get(ctx, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Reuse re-purchases a previously used number.
// GET /v1/user/reuse/{product}/{number}
func (c *HTTPClient) Reuse(ctx context.Context, product, number string) error {
	path := fmt.Sprintf("/v1/user/reuse/%s/%s", product, number)
	return c.get(ctx, path, nil, nil)
}

// Check fetches current order state including the SMS inbox.
func (c *HTTPClient) Check(ctx context.Context, orderID string) (*Order, error) {
	return c.orderOp(ctx, "check", orderID)
}

// Finish marks order as successfully used.
func (c *HTTPClient) Finish(ctx context.Context, orderID string) (*Order, error) {
	return c.orderOp(ctx, "finish", orderID)
}

// Cancel cancels a pending order.
func (c *HTTPClient) Cancel(ctx context.Context, orderID string) (*Order, error) {
	return c.orderOp(ctx, "cancel", orderID)
}

// Ban reports the number as already used and bans it.
func (c *HTTPClient) Ban(ctx context.Context, orderID string) (*Order, error) {
	return c.orderOp(ctx, "ban", orderID)
}

func (c *HTTPClient) orderOp(ctx context.Context, op, orderID string) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/v1/user/%s/%s", op, orderID)
	if err := c.get(ctx, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GuestPrices fetches the public price table, optionally filtered.
// GET /v1/guest/prices?country=&product=
func (c *HTTPClient) GuestPrices(ctx context.Context, country, product string) (map[string]any, error) {
	query := url.Values{}
	if country != "" {
		query.Set("country", country)
	}
	if product != "" {
		query.Set("product", product)
	}
	if len(query) == 0 {
		query = nil
	}

	var table map[string]any
	if err := c.get(ctx, "/v1/guest/prices", query, &table); err != nil {
		return nil, err
	}
	return table, nil
}

// Countries fetches the public country list.
// GET /v1/guest/countries
func (c *HTTPClient) Countries(ctx context.Context) (map[string]any, error) {
	var countries map[string]any
	if err := c.get(ctx, "/v1/guest/countries", nil, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// Profile fetches account balance and rating.
// GET /v1/user/profile
func (c *HTTPClient) Profile(ctx context.Context) (*ProfileInfo, error) {
	var profile ProfileInfo
	if err := c.get(ctx, "/v1/user/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
