package usecase

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	MaxUploadFiles = 5
	MaxUploadBytes = 5 << 20
)

var (
	allowedImageExts = map[string]struct{}{".jpeg": {}, ".jpg": {}, ".png": {}, ".gif": {}}
	allowedImageMIME = map[string]struct{}{"image/jpeg": {}, "image/jpg": {}, "image/png": {}, "image/gif": {}}
)

// Upload is one image file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PhotoUsecase validates uploads and hands them to the image store.
type PhotoUsecase struct {
	storage domain.ImageStore
	logger  *logger.Logger
}

func NewPhotoUsecase(storage domain.ImageStore, log *logger.Logger) *PhotoUsecase {
	return &PhotoUsecase{storage: storage, logger: log.Named("PhotoUsecase")}
}

// Validate enforces the file count, size and type limits.
func (uc *PhotoUsecase) Validate(uploads []Upload) error {
	v := &domain.ValidationError{}
	if len(uploads) > MaxUploadFiles {
		v.Add("images", fmt.Sprintf("At most %d images are allowed", MaxUploadFiles))
	}
	for _, u := range uploads {
		if len(u.Data) > MaxUploadBytes {
			v.Add("images", fmt.Sprintf("%s exceeds the 5MB limit", u.FileName))
			continue
		}
		if !isAllowedImage(u) {
			v.Add("images", "Only image files are allowed!")
		}
	}
	return v.OrNil()
}

func isAllowedImage(u Upload) bool {
	if _, ok := allowedImageExts[strings.ToLower(filepath.Ext(u.FileName))]; !ok {
		return false
	}
	ct := u.ContentType
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(u.Data)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	_, ok := allowedImageMIME[strings.ToLower(strings.TrimSpace(ct))]
	return ok
}

// Store validates and uploads every file, returning refs in input order. If any upload
// fails, the ones already stored are removed.
func (uc *PhotoUsecase) Store(ctx context.Context, uploads []Upload) ([]string, error) {
	if err := uc.Validate(uploads); err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(uploads))
	for _, u := range uploads {
		ref, err := uc.storage.Upload(ctx, u.FileName, u.ContentType, u.Data)
		if err != nil {
			uc.logger.Error("Image upload failed", zap.String("file", u.FileName), zap.Error(err))
			uc.Discard(ctx, refs)
			return nil, fmt.Errorf("%w: image upload: %v", domain.ErrUnavailable, err)
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Discard removes stored images, logging failures.
func (uc *PhotoUsecase) Discard(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := uc.storage.Remove(context.WithoutCancel(ctx), ref); err != nil {
			uc.logger.Warn("Failed to remove image", zap.String("ref", ref), zap.Error(err))
		}
	}
}
