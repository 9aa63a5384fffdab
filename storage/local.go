package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/techmaster-vietnam/blogkit/core"
	"github.com/techmaster-vietnam/goerrorkit"
)

// LocalStorage lưu ảnh đại diện vào thư mục trên đĩa (phục vụ bởi static server bên ngoài)
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocalStorage creates a local avatar storage rooted at dir
func NewLocalStorage(dir, urlPrefix string) *LocalStorage {
	return &LocalStorage{dir: dir, urlPrefix: urlPrefix}
}

// Store implements core.AvatarStorage
func (s *LocalStorage) Store(ctx context.Context, filename string, contentType string, data []byte) (string, error) {
	name, err := pictureName(filename)
	if err != nil {
		return "", goerrorkit.WrapWithMessage(err, "Failed to generate picture name")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", goerrorkit.WrapWithMessage(err, "Failed to create avatar directory").WithData(map[string]interface{}{
			"dir": s.dir,
		})
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return "", goerrorkit.WrapWithMessage(err, "Failed to write avatar").WithData(map[string]interface{}{
			"dir":  s.dir,
			"name": name,
		})
	}
	return name, nil
}

// Delete implements core.AvatarStorage
func (s *LocalStorage) Delete(ctx context.Context, ref string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return goerrorkit.WrapWithMessage(err, "Failed to delete avatar").WithData(map[string]interface{}{
			"dir":  s.dir,
			"name": ref,
		})
	}
	return nil
}

// URL implements core.AvatarStorage
func (s *LocalStorage) URL(ref string) string {
	return joinURL(s.urlPrefix, ref)
}

var _ core.AvatarStorage = (*LocalStorage)(nil)
