package storage

import (
	"context"
	"errors"

	"github.com/andresuchdata/inventory-analytics/internal/config"
)

// ErrNotConfigured is returned by New when neither a local directory nor an
// S3 endpoint is set.
var ErrNotConfigured = errors.New("object storage is not configured")

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore captures the operations the ledger import needs from a bucket
// or directory of CSV/XLSX exports.
type ObjectStore interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
}

// New picks the local backend when LocalDir is set and S3 otherwise.
func New(cfg config.StorageConfig) (ObjectStore, error) {
	switch {
	case cfg.LocalDir != "":
		return NewLocalStore(cfg.LocalDir), nil
	case cfg.Endpoint != "":
		return NewS3Store(cfg)
	default:
		return nil, ErrNotConfigured
	}
}
