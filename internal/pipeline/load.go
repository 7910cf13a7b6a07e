package pipeline

import (
	"context"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
	"github.com/couchcryptid/stadium-data-etl/internal/observability"
)

// ObjectWriter stores a named file and returns its full object key.
type ObjectWriter interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// CSVLoader implements Loader by encoding records as CSV and writing them
// under a timestamped name.
type CSVLoader struct {
	writer  ObjectWriter
	metrics *observability.Metrics
}

// NewLoader creates a CSVLoader.
func NewLoader(writer ObjectWriter, metrics *observability.Metrics) *CSVLoader {
	return &CSVLoader{writer: writer, metrics: metrics}
}

// Ping checks the output container when the writer supports it.
func (l *CSVLoader) Ping(ctx context.Context) error {
	if p, ok := l.writer.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (l *CSVLoader) Load(ctx context.Context, records []domain.StadiumRecord) (string, error) {
	data, err := domain.EncodeCSV(records)
	if err != nil {
		return "", err
	}
	key, err := l.writer.Put(ctx, domain.NewOutputFileName(), data)
	if err != nil {
		return "", err
	}
	l.metrics.OutputBytes.Add(float64(len(data)))
	return key, nil
}
