package paapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gifthub/engine/internal/domain"
	"github.com/gifthub/engine/internal/logging"
	"github.com/gifthub/engine/internal/metrics"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout           = 10 * time.Second
	defaultRequestsPerSecond = 1.0
	maxResponseBytes         = 1 << 20
)

// HTTPDoer is the transport used for live requests
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds credentials and transport settings for the catalog client
type ClientConfig struct {
	AccessKey         string
	SecretKey         string
	PartnerTag        string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client handles signed GetItems requests against the Product Advertising API
type Client struct {
	httpClient  HTTPDoer
	accessKey   string
	secretKey   string
	partnerTag  string
	timeout     time.Duration
	rateLimiter *rate.Limiter
	now         func() time.Time
	logger      zerolog.Logger
}

// NewClient creates a new catalog API client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	// The API starts every account at one request per second.
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		accessKey:   cfg.AccessKey,
		secretKey:   cfg.SecretKey,
		partnerTag:  cfg.PartnerTag,
		timeout:     timeout,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 1),
		now:         time.Now,
		logger:      logging.Component("paapi"),
	}
}

// SetHTTPClient replaces the transport
func (c *Client) SetHTTPClient(doer HTTPDoer) {
	c.httpClient = doer
}

// SetClock replaces the time source used for request signing
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// GetItem performs one live lookup for a normalized identifier. Every failure
// wraps ErrCatalogAPIFailure or ErrItemNotFound; no retries happen here.
func (c *Client) GetItem(ctx context.Context, identifier string, marketplace string) (*domain.Enrichment, error) {
	market := LookupMarketplace(marketplace)

	body, err := json.Marshal(getItemsRequest{
		ItemIDs:     []string{identifier},
		Resources:   requestedResources,
		PartnerTag:  c.partnerTag,
		PartnerType: "Associates",
		Marketplace: market.Marketplace,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", domain.ErrCatalogAPIFailure, err)
	}

	headers, err := SignRequest(SigningInput{
		Region:    market.Region,
		Host:      market.Host,
		Body:      string(body),
		AccessKey: c.accessKey,
		SecretKey: c.secretKey,
	}, c.now())
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", domain.ErrCatalogAPIFailure, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	respBody, err := c.doRequest(ctx, market.Endpoint, headers, body)
	if err != nil {
		return nil, err
	}

	var decoded getItemsResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("decode_error").Inc()
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrCatalogAPIFailure, err)
	}

	if len(decoded.ItemsResult.Items) == 0 {
		metrics.CatalogRequestsTotal.WithLabelValues("empty").Inc()
		if len(decoded.Errors) > 0 {
			c.logger.Debug().Str("asin", identifier).Str("code", decoded.Errors[0].Code).
				Str("error_message", decoded.Errors[0].Message).Msg("item lookup returned errors")
		}
		return nil, domain.ErrItemNotFound
	}

	item, err := MapToEnrichment(&decoded.ItemsResult.Items[0], market, identifier)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("empty").Inc()
		return nil, err
	}

	metrics.CatalogRequestsTotal.WithLabelValues("success").Inc()
	return item, nil
}

// doRequest executes the signed POST and returns the body of a 2xx response
func (c *Client) doRequest(ctx context.Context, endpoint string, headers map[string]string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Host = headers["Host"]

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("transport_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("catalog request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogAPIFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrCatalogAPIFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.CatalogRequestsTotal.WithLabelValues("http_error").Inc()
		c.logger.Warn().Int("status", resp.StatusCode).Str("endpoint", endpoint).Msg("catalog API error")
		return nil, fmt.Errorf("%w: status %d", domain.ErrCatalogAPIFailure, resp.StatusCode)
	}

	return respBody, nil
}
