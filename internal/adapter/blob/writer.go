package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"

	"github.com/couchcryptid/stadium-data-etl/internal/domain"
)

const contentTypeCSV = "text/csv"

// ErrMissingAccountKey is wrapped in a PersistenceError when no secret was configured.
var ErrMissingAccountKey = errors.New("ACCOUNT_KEY is not set")

// objectStore is the subset of *minio.Client the writer needs.
type objectStore interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// Options configures a Writer.
type Options struct {
	Endpoint   string
	Account    string
	AccountKey string
	Container  string
	Prefix     string
	UseSSL     bool
}

// Writer stores finalized CSV files in an S3-compatible container.
type Writer struct {
	store      objectStore
	container  string
	prefix     string
	accountKey string
	logger     *slog.Logger
}

// NewWriter creates a writer authenticated with static account credentials.
// A missing account key is not an error here; it fails at Put.
func NewWriter(opts Options, logger *slog.Logger) (*Writer, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.Account, opts.AccountKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return newWriter(client, opts, logger), nil
}

func newWriter(store objectStore, opts Options, logger *slog.Logger) *Writer {
	return &Writer{
		store:      store,
		container:  opts.Container,
		prefix:     opts.Prefix,
		accountKey: opts.AccountKey,
		logger:     logger,
	}
}

// ObjectKey returns the key under which name is stored.
func (w *Writer) ObjectKey(name string) string {
	if w.prefix == "" {
		return name
	}
	return path.Join(w.prefix, name)
}

// Put uploads data as name and returns the full object key. Any failure,
// including missing credentials, is a *domain.PersistenceError.
func (w *Writer) Put(ctx context.Context, name string, data []byte) (string, error) {
	key := w.ObjectKey(name)
	if w.accountKey == "" {
		return "", &domain.PersistenceError{Object: key, Err: ErrMissingAccountKey}
	}

	start := time.Now()
	info, err := w.store.PutObject(ctx, w.container, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeCSV,
	})
	if err != nil {
		return "", &domain.PersistenceError{Object: key, Err: err}
	}

	w.logger.Info("object written",
		"container", w.container,
		"key", key,
		"bytes", info.Size,
		"etag", info.ETag,
		"duration", time.Since(start),
	)
	return key, nil
}

// Ping checks that the container is reachable with the configured key.
func (w *Writer) Ping(ctx context.Context) error {
	if w.accountKey == "" {
		return ErrMissingAccountKey
	}
	ok, err := w.store.BucketExists(ctx, w.container)
	if err != nil {
		return eris.Wrapf(err, "check container %s", w.container)
	}
	if !ok {
		return eris.Errorf("container %s does not exist", w.container)
	}
	return nil
}
