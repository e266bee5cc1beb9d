package pricing

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
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/codyseavey/card-resolver/internal/metrics"
	"github.com/codyseavey/card-resolver/internal/models"
)

const (
	DefaultSportsBaseURL = "https://www.sportscardspro.com/api"
	DefaultTCGBaseURL    = "https://www.pricecharting.com/api"

	defaultTimeout     = 15 * time.Second
	defaultMinInterval = 300 * time.Millisecond
	maxBodyBytes       = 4 << 20
)

// ErrPricingUpstream is the sentinel every APIError unwraps to
var ErrPricingUpstream = errors.New("pricing upstream error")

// APIError carries the upstream status so HTTP handlers can propagate it
type APIError struct {
	Message           string
	UpstreamStatus    int
	Retryable         bool
	CloudflareBlocked bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (upstream status %d)", e.Message, e.UpstreamStatus)
}

func (e *APIError) Unwrap() error {
	return ErrPricingUpstream
}

var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
}

// ProductID accepts both the string and numeric ids the API has returned
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ProductID(n.String())
	return nil
}

// Product is one pricing-catalog entry. Prices are integer pennies; 0 means absent.
type Product struct {
	ID          ProductID `json:"id"`
	ProductName string    `json:"product-name"`
	ConsoleName string    `json:"console-name"`
	Genre       string    `json:"genre"`
	ReleaseDate string    `json:"release-date"`
	SalesVolume string    `json:"sales-volume"`

	LoosePrice       int64 `json:"loose-price"`
	CIBPrice         int64 `json:"cib-price"`
	NewPrice         int64 `json:"new-price"`
	GradedPrice      int64 `json:"graded-price"`
	BoxOnlyPrice     int64 `json:"box-only-price"`
	ManualOnlyPrice  int64 `json:"manual-only-price"`
	BGS10Price       int64 `json:"bgs-10-price"`
	Condition17Price int64 `json:"condition-17-price"` // CGC 10
	Condition18Price int64 `json:"condition-18-price"` // SGC 10
}

// HasSearchPrice is the quick check used on search results, which carry
// only some price fields.
func (p Product) HasSearchPrice() bool {
	return p.LoosePrice > 0 || p.GradedPrice > 0 || p.NewPrice > 0 || p.ManualOnlyPrice > 0
}

type searchResponse struct {
	Status   string    `json:"status"`
	Products []Product `json:"products"`
}

type productResponse struct {
	Status string `json:"status"`
	Product
}

// ClientConfig configures a Client. Zero durations take the defaults.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Retries after the first attempt, for transient errors only
	Retries     int
	MinInterval time.Duration
	// Backoff returns the wait before retry attempt n (0-based); defaults to 1s×(n+1)
	Backoff func(attempt int) time.Duration
	Name    string
}

// Client talks to a PriceCharting-family API (pricecharting.com, sportscardspro.com)
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	retries     int
	rateLimiter *rate.Limiter
	backoff     func(int) time.Duration
	log         *logrus.Entry
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = defaultMinInterval
	}
	if cfg.Backoff == nil {
		cfg.Backoff = func(attempt int) time.Duration {
			return time.Duration(attempt+1) * time.Second
		}
	}
	if cfg.Name == "" {
		cfg.Name = "pricing"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		retries: cfg.Retries,
		// one request per MinInterval, no burst
		rateLimiter: rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		backoff:     cfg.Backoff,
		log:         logrus.WithFields(logrus.Fields{"component": "pricing-client", "api": cfg.Name}),
	}
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// SearchProducts runs a free-text product search
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]Product, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	if err := c.getJSON(ctx, "products", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		c.log.WithField("query", query).Debug("search returned no products")
		return nil, nil
	}
	return resp.Products, nil
}

// Product fetches full prices for one product
func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	params := url.Values{}
	params.Set("id", id)

	var resp productResponse
	if err := c.getJSON(ctx, "product", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("%w: %s", models.ErrProductNotFound, id)
	}
	if resp.ID == "" {
		resp.ID = ProductID(id)
	}
	return &resp.Product, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if !c.Enabled() {
		return models.ErrPricingDisabled
	}
	params.Set("t", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			metrics.PricingRetriesTotal.Inc()
			if err := sleepCtx(ctx, c.backoff(attempt-1)); err != nil {
				return err
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.attempt(ctx, endpoint, reqURL, out)
		if err == nil {
			metrics.PricingRequestsTotal.WithLabelValues(endpoint, "success").Inc()
			return nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			metrics.PricingRequestsTotal.WithLabelValues(endpoint, "error").Inc()
			return err
		}
		result := "error"
		if apiErr.CloudflareBlocked {
			result = "cloudflare"
		}
		metrics.PricingRequestsTotal.WithLabelValues(endpoint, result).Inc()

		lastErr = err
		if !apiErr.Retryable {
			return err
		}
		c.log.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   apiErr.UpstreamStatus,
			"attempt":  attempt + 1,
		}).Warn("transient pricing error")
	}

	return lastErr
}

func (c *Client) attempt(ctx context.Context, endpoint, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.PricingAPILatency.Observe(time.Since(start).Seconds())
	if err != nil {
		// the caller giving up is not an upstream timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isTimeout(err) {
			return &APIError{Message: "request timed out", UpstreamStatus: http.StatusRequestTimeout, Retryable: true}
		}
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) && ctx.Err() == nil {
			return &APIError{Message: "response read timed out", UpstreamStatus: http.StatusRequestTimeout, Retryable: true}
		}
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode != http.StatusOK {
		if isCloudflareChallenge(body, contentType) {
			return &APIError{
				Message:           "cloudflare challenge on pricing API",
				UpstreamStatus:    resp.StatusCode,
				Retryable:         resp.StatusCode == http.StatusTooManyRequests,
				CloudflareBlocked: true,
			}
		}
		text := string(body)
		return &APIError{
			Message:        fmt.Sprintf("pricing API %s failed", endpoint),
			UpstreamStatus: resp.StatusCode,
			Retryable:      retryableStatus[resp.StatusCode] || strings.Contains(text, "DeadlineExceeded") || strings.Contains(text, "timeout"),
		}
	}

	if contentType != "" && !strings.Contains(contentType, "application/json") {
		if isCloudflareChallenge(body, contentType) {
			return &APIError{
				Message:           "cloudflare challenge returned with 200 status",
				UpstreamStatus:    http.StatusOK,
				Retryable:         true,
				CloudflareBlocked: true,
			}
		}
		return &APIError{Message: "unexpected content type " + contentType, UpstreamStatus: http.StatusOK}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Message: "failed to parse JSON response: " + err.Error(), UpstreamStatus: http.StatusOK}
	}
	return nil
}

func isCloudflareChallenge(body []byte, contentType string) bool {
	if !strings.Contains(contentType, "text/html") {
		return false
	}
	text := string(body)
	for _, marker := range []string{"cloudflare", "cf_chl_opt", "challenge-platform", "Just a moment", "Enable JavaScript and cookies"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
