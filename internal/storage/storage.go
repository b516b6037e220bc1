// Package storage abstracts where the master dataset and its snapshots live.
// The pipeline only ever loads and saves whole objects by key; backends are
// a local directory for development and a GCS bucket in production.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrObjectNotFound marks a download of a key that does not exist. A missing
// master dataset is an expected cold start, so callers match on this error
// rather than failing.
var ErrObjectNotFound = errors.New("storage: object not found")

// Config selects and parameterizes a backend.
type Config struct {
	// Type is "local" or "gcs".
	Type string `yaml:"type"`
	// BaseDir roots a local store.
	BaseDir string `yaml:"baseDir"`
	// Bucket names the GCS bucket.
	Bucket string `yaml:"bucket"`
	// CredentialsFile optionally points at a service-account key; empty means
	// application default credentials.
	CredentialsFile string `yaml:"credentialsFile"`
}

// ObjectStore is a flat keyed blob store.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string, fn func(key string) error) error
	Delete(ctx context.Context, key string) error
	Close() error
	Name() string
}

// SaveBytes uploads a byte slice under the key.
func SaveBytes(ctx context.Context, store ObjectStore, key string, data []byte) error {
	return store.Upload(ctx, key, bytes.NewReader(data))
}

// LoadBytes downloads the full object under the key. A missing object
// surfaces as ErrObjectNotFound.
func LoadBytes(ctx context.Context, store ObjectStore, key string) ([]byte, error) {
	rc, err := store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return data, nil
}
