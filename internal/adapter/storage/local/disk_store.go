// Package local stores uploaded images on the local filesystem. It is the fallback
// image store when no object storage endpoint is configured.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.uber.org/zap"
)

// URLPrefix is the public path the HTTP layer serves Dir under.
const URLPrefix = "/uploads/"

type DiskStorage struct {
	dir    string
	logger *logger.Logger
}

func NewDiskStorage(dir string, log *logger.Logger) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStorage{dir: dir, logger: log.Named("DiskStorage")}, nil
}

// Dir is the directory images are written to.
func (s *DiskStorage) Dir() string { return s.dir }

func (s *DiskStorage) Upload(ctx context.Context, fileName, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := "pet-" + uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		s.logger.Error("Failed to write image", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	return URLPrefix + name, nil
}

func (s *DiskStorage) Remove(_ context.Context, ref string) error {
	if !strings.HasPrefix(ref, URLPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(ref, URLPrefix))
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image %s: %w", name, err)
	}
	return nil
}
