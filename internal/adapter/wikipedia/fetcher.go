package wikipedia

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
)

// Fetcher downloads the stadium list page.
type Fetcher struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewFetcher creates a page fetcher bounded by timeout.
func NewFetcher(timeout time.Duration, userAgent string, logger *slog.Logger) *Fetcher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "text/html")
	return &Fetcher{http: client, logger: logger}
}

// Fetch returns the body of url. Transport failures and non-2xx responses
// are reported as *domain.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	resp, err := f.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode()}
	}

	f.logger.Debug("page fetched",
		"url", url,
		"status", resp.StatusCode(),
		"bytes", len(resp.Body()),
		"duration", time.Since(start),
	)
	return resp.Body(), nil
}
