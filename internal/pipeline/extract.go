package pipeline

import (
	"bytes"
	"context"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
)

// PageFetcher downloads a page body.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PageExtractor implements Extractor by fetching the stadium page and parsing
// its table.
type PageExtractor struct {
	fetcher PageFetcher
}

// NewExtractor creates a PageExtractor.
func NewExtractor(fetcher PageFetcher) *PageExtractor {
	return &PageExtractor{fetcher: fetcher}
}

func (e *PageExtractor) Extract(ctx context.Context, url string) ([]domain.RawStadium, error) {
	body, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return domain.ParseStadiumTable(bytes.NewReader(body))
}
