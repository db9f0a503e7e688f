package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	cmstorage "github.com/chartmuseum/storage"
)

// LocalStore serves objects from a directory tree. Keys are slash-separated
// paths relative to the root.
type LocalStore struct {
	backend *cmstorage.LocalFilesystemBackend
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{backend: cmstorage.NewLocalFilesystemBackend(root)}
}

func (s *LocalStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := s.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("local list failed: %w", err)
	}
	results := make([]ObjectInfo, 0, len(files))
	for _, object := range files {
		key := object.Path
		// the filesystem backend reports paths relative to the prefix
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			key = path.Join(prefix, key)
		}
		results = append(results, ObjectInfo{
			Key:  key,
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

func (s *LocalStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	object, err := s.backend.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("local get %s failed: %w", key, err)
	}
	return object.Content, nil
}

func (s *LocalStore) PutObject(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("local put %s failed: %w", key, err)
	}
	return nil
}

var _ ObjectStore = (*LocalStore)(nil)
