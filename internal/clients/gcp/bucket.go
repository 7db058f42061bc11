package gcp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

// ObjectReader opens objects by bucket and name.
type ObjectReader interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	Close() error
}

type bucketReader struct {
	log *logger.Logger

	mu            sync.Mutex
	storageClient *storage.Client
}

// NewBucketReader returns a read-only GCS reader. The storage client is
// created on first use so deployments that never read gs:// feeds need no
// credentials.
func NewBucketReader(log *logger.Logger) ObjectReader {
	return &bucketReader{log: log.With("service", "BucketReader")}
}

func (br *bucketReader) client(ctx context.Context) (*storage.Client, error) {
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.storageClient != nil {
		return br.storageClient, nil
	}
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	br.storageClient = c
	return c, nil
}

func (br *bucketReader) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	bucket = strings.TrimSpace(bucket)
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	if bucket == "" || object == "" {
		return nil, fmt.Errorf("bucket and object are required")
	}
	c, err := br.client(ctx)
	if err != nil {
		return nil, err
	}
	r, err := c.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}
	br.log.Debug("opened feed object", "bucket", bucket, "object", object, "size", r.Attrs.Size)
	return r, nil
}

func (br *bucketReader) Close() error {
	br.mu.Lock()
	defer br.mu.Unlock()
	if br.storageClient == nil {
		return nil
	}
	err := br.storageClient.Close()
	br.storageClient = nil
	return err
}
