package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/service"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps response bodies.
const maxBodyBytes = 32 << 20

var _ service.DataSource = (*Client)(nil)

// RequestObserver is told about every completed request.
type RequestObserver func(endpoint string, status int, duration time.Duration, err error)

// DropObserver is told how many records of a response failed validation.
type DropObserver func(endpoint string, dropped int)

// Client talks to the shop web API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	validate   *validator.Validate
	loc        *time.Location
	logger     *slog.Logger
	onRequest  RequestObserver
	onDrop     DropObserver
	dropped    atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithLocation sets the zone used to read zone-less timestamps.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestObserver registers a callback for completed requests.
func WithRequestObserver(fn RequestObserver) Option {
	return func(c *Client) {
		c.onRequest = fn
	}
}

// WithDropObserver registers a callback for records dropped by validation.
func WithDropObserver(fn DropObserver) Option {
	return func(c *Client) {
		c.onDrop = fn
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		validate:   validator.New(),
		loc:        time.Local,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Dropped returns the total number of records dropped by validation.
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// RecentTransactions fetches the newest transactions.
func (c *Client) RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	return c.transactions(ctx, "recent", "/api/recent", limitQuery(limit))
}

// PlayerTransactions fetches a player's transactions.
func (c *Client) PlayerTransactions(ctx context.Context, player string, limit int) ([]model.Transaction, error) {
	if strings.TrimSpace(player) == "" {
		return nil, fmt.Errorf("%w: player", ErrEmptyPathArgument)
	}
	return c.transactions(ctx, "player", "/api/player/"+url.PathEscape(player), limitQuery(limit))
}

// ItemTransactions fetches an item's transactions.
func (c *Client) ItemTransactions(ctx context.Context, item string, limit int) ([]model.Transaction, error) {
	if strings.TrimSpace(item) == "" {
		return nil, fmt.Errorf("%w: item", ErrEmptyPathArgument)
	}
	return c.transactions(ctx, "item", "/api/item/"+url.PathEscape(item), limitQuery(limit))
}

// Stats fetches the aggregate counters. The body may be the object itself or
// the object encoded as a JSON string.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	body, err := c.get(ctx, "stats", "/api/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats model.Stats
	if err := decodeMaybeString(body, &stats); err != nil {
		return nil, fmt.Errorf("stats: %w: %w", ErrMalformedPayload, err)
	}
	return &stats, nil
}

// EconomyHealth fetches the economy metrics.
func (c *Client) EconomyHealth(ctx context.Context) (*model.EconomyHealth, error) {
	var health model.EconomyHealth
	if err := c.getJSON(ctx, "economy", "/api/analytics/economy", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Leaderboard fetches the ranked players for kind, in server order.
func (c *Client) Leaderboard(ctx context.Context, kind string, limit int) ([]model.LeaderboardEntry, error) {
	query := limitQuery(limit)
	if kind != "" {
		query.Set("type", kind)
	}

	var raw []json.RawMessage
	if err := c.getJSON(ctx, "leaderboard", "/api/analytics/leaderboard", query, &raw); err != nil {
		return nil, err
	}
	return decodeRecords[model.LeaderboardEntry](c, "leaderboard", raw), nil
}

// Trends fetches the hot, rising and falling item buckets.
func (c *Client) Trends(ctx context.Context, limit int) (*model.TrendBuckets, error) {
	var raw struct {
		Hot     []json.RawMessage `json:"hot"`
		Rising  []json.RawMessage `json:"rising"`
		Falling []json.RawMessage `json:"falling"`
	}
	if err := c.getJSON(ctx, "trends", "/api/analytics/trends", limitQuery(limit), &raw); err != nil {
		return nil, err
	}

	return &model.TrendBuckets{
		Hot:     decodeRecords[model.TrendItem](c, "trends", raw.Hot),
		Rising:  decodeRecords[model.TrendItem](c, "trends", raw.Rising),
		Falling: decodeRecords[model.TrendItem](c, "trends", raw.Falling),
	}, nil
}

// PriceHistory fetches hourly price points for item.
func (c *Client) PriceHistory(ctx context.Context, item string, hours int) ([]model.PricePoint, error) {
	if strings.TrimSpace(item) == "" {
		return nil, fmt.Errorf("%w: item", ErrEmptyPathArgument)
	}

	var points []model.PricePoint
	if err := c.getJSON(ctx, "price_history", "/api/analytics/price-history/"+url.PathEscape(item), hoursQuery(hours), &points); err != nil {
		return nil, err
	}
	return points, nil
}

// TimeDistribution fetches the hour-of-day activity histogram.
func (c *Client) TimeDistribution(ctx context.Context, hours int) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	if err := c.getJSON(ctx, "time_distribution", "/api/analytics/time-distribution", hoursQuery(hours), &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// ShopItems fetches catalog items.
func (c *Client) ShopItems(ctx context.Context, filter service.CatalogFilter) ([]model.ShopItem, error) {
	query := url.Values{}
	if filter.Query != "" {
		query.Set("query", filter.Query)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}

	var items []model.ShopItem
	if err := c.getJSON(ctx, "shop_items", "/api/shop/items", query, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ShopCategories fetches catalog categories.
func (c *Client) ShopCategories(ctx context.Context) ([]model.ShopCategory, error) {
	var categories []model.ShopCategory
	if err := c.getJSON(ctx, "shop_categories", "/api/shop/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ItemDetail fetches the detail view of one catalog item.
func (c *Client) ItemDetail(ctx context.Context, item string) (*model.ItemDetail, error) {
	if strings.TrimSpace(item) == "" {
		return nil, fmt.Errorf("%w: item", ErrEmptyPathArgument)
	}

	var detail model.ItemDetail
	if err := c.getJSON(ctx, "shop_item", "/api/shop/item/"+url.PathEscape(item), nil, &detail); err != nil {
		return nil, err
	}
	model.ResolveTimestamps(detail.RecentTransactions, c.loc)
	return &detail, nil
}

func (c *Client) transactions(ctx context.Context, endpoint, path string, query url.Values) ([]model.Transaction, error) {
	var raw []json.RawMessage
	if err := c.getJSON(ctx, endpoint, path, query, &raw); err != nil {
		return nil, err
	}

	txs := decodeRecords[model.Transaction](c, endpoint, raw)
	if invalid := model.ResolveTimestamps(txs, c.loc); invalid > 0 {
		c.logger.Warn("Transactions with unparseable timestamps",
			"endpoint", endpoint,
			"count", invalid)
	}
	return txs, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, v any) error {
	body, err := c.get(ctx, endpoint, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: %w: %w", endpoint, ErrMalformedPayload, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) (body []byte, err error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	start := time.Now()
	status := 0
	defer func() {
		if c.onRequest != nil {
			c.onRequest(endpoint, status, time.Since(start), err)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", endpoint, ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", endpoint, ErrTransport, err)
	}

	c.logger.Debug("Fetched endpoint",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))
	return body, nil
}

// decodeRecords unmarshals and validates each record, dropping the ones that
// fail either step.
func decodeRecords[T any](c *Client, endpoint string, raw []json.RawMessage) []T {
	out := make([]T, 0, len(raw))
	dropped := 0
	for _, msg := range raw {
		var rec T
		if err := json.Unmarshal(msg, &rec); err != nil {
			dropped++
			continue
		}
		normalize(&rec)
		if err := c.validate.Struct(&rec); err != nil {
			dropped++
			continue
		}
		out = append(out, rec)
	}

	if dropped > 0 {
		c.dropped.Add(int64(dropped))
		c.logger.Warn("Dropped invalid records",
			"endpoint", endpoint,
			"dropped", dropped,
			"kept", len(out))
		if c.onDrop != nil {
			c.onDrop(endpoint, dropped)
		}
	}
	return out
}

// normalize applies lenient fixes before validation.
func normalize(rec any) {
	if tx, ok := rec.(*model.Transaction); ok {
		if t, valid := model.ParseTransactionType(string(tx.Type)); valid {
			tx.Type = t
		}
	}
}

// decodeMaybeString decodes body into v, unwrapping one level of JSON string
// encoding if present.
func decodeMaybeString(body []byte, v any) error {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return err
		}
		return json.Unmarshal([]byte(inner), v)
	}
	return json.Unmarshal([]byte(trimmed), v)
}

func limitQuery(limit int) url.Values {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(min(limit, service.MaxLimit)))
	}
	return query
}

func hoursQuery(hours int) url.Values {
	query := url.Values{}
	if hours > 0 {
		query.Set("hours", strconv.Itoa(hours))
	}
	return query
}
