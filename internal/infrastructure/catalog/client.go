package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	maxBodySize = 8 << 20
	baseBackoff = 200 * time.Millisecond
	maxBackoff  = 2 * time.Second
)

// client выполняет GET-запросы к источнику каталога с повторами.
type client struct {
	name       string
	baseURL    string
	limit      int
	maxRetries int
	httpClient *http.Client
	logger     logger.Logger
}

func newClient(name string, baseURL string, cfg *cfg.SourcesCfg, httpClient *http.Client, logger logger.Logger) client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return client{
		name:       name,
		baseURL:    baseURL,
		limit:      cfg.Limit,
		maxRetries: max(1, cfg.MaxRetries),
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c client) productsURL() string {
	return fmt.Sprintf("%s/products?limit=%d", c.baseURL, c.limit)
}

// getJSON загружает JSON по url в dst. Повторяет запрос до maxRetries раз
// с экспоненциальной задержкой и jitter.
func (c client) getJSON(ctx context.Context, url string, dst any) error {
	op := fmt.Sprintf("catalog.%s.getJSON", c.name)

	policy := jitter.Policy{Attempts: c.maxRetries, Base: baseBackoff, Max: maxBackoff}
	err := jitter.Retry(ctx, policy, func(ctx context.Context) error {
		return c.doGet(ctx, url, dst)
	}, func(attempt int, wait time.Duration, err error) {
		c.logger.Warnf("source %s request failed, retrying in %v (attempt %d): %v", c.name, wait, attempt+1, err)
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (c client) doGet(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		err := fmt.Errorf("%w: HTTP %d", e.ErrSourceStatus, resp.StatusCode)
		if !isRetryableStatus(resp.StatusCode) {
			return jitter.Permanent(err)
		}
		return err
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// isRetryableStatus: повторяются только ответы 5xx и 429, остальные ошибки клиента возвращаются сразу.
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// priceToCents переводит цену источника в центы с округлением.
func priceToCents(price float64) int64 {
	return decimal.NewFromFloat(price).Shift(2).Round(0).IntPart()
}
