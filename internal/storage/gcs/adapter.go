// Package gcs implements the object store on a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/comfortlab/comfortcast/internal/storage"
	"github.com/comfortlab/comfortcast/pkg/util/logger"
)

type store struct {
	client *gstorage.Client
	bucket string
}

var _ storage.ObjectStore = (*store)(nil)

// New creates a bucket-backed object store. Credentials come from the
// configured service-account file or, when unset, application defaults.
func New(ctx context.Context, cfg storage.Config) (storage.ObjectStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs storage: bucket must be configured")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage: create client: %w", err)
	}
	return &store{client: client, bucket: cfg.Bucket}, nil
}

func (s *store) Name() string { return "gcs:" + s.bucket }

func (s *store) Close() error { return s.client.Close() }

func (s *store) Upload(ctx context.Context, key string, data io.Reader) error {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("gcs storage: write %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs storage: finalize %q: %w", key, err)
	}
	logger.Debugf("gcs storage: uploaded gs://%s/%s", s.bucket, key)
	return nil
}

func (s *store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", storage.ErrObjectNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs storage: open %q: %w", key, err)
	}
	return r, nil
}

func (s *store) List(ctx context.Context, prefix string, fn func(key string) error) error {
	it := s.client.Bucket(s.bucket).Objects(ctx, &gstorage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gcs storage: list prefix %q: %w", prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

func (s *store) Delete(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logger.Warnf("gcs storage: delete of missing object %q", key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("gcs storage: delete %q: %w", key, err)
	}
	return nil
}
