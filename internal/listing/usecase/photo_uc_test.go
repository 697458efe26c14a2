package usecase

import (
	"context"
	"testing"

	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoValidate(t *testing.T) {
	uc := NewPhotoUsecase(newFakeImageStore(), logger.NewNop())

	tests := []struct {
		name    string
		uploads []Upload
		wantErr bool
	}{
		{name: "png", uploads: []Upload{pngUpload("a.png")}},
		{name: "sniffed jpeg extension", uploads: []Upload{{FileName: "a.JPG", Data: []byte("\xff\xd8\xff\xe0jfif")}}},
		{name: "gif with charset param", uploads: []Upload{{FileName: "a.gif", ContentType: "image/gif; x=y", Data: []byte("GIF89a")}}},
		{name: "wrong extension", uploads: []Upload{{FileName: "a.bmp", ContentType: "image/png", Data: pngBytes}}, wantErr: true},
		{name: "wrong mime", uploads: []Upload{{FileName: "a.png", ContentType: "application/pdf", Data: pngBytes}}, wantErr: true},
		{name: "too large", uploads: []Upload{{FileName: "a.png", ContentType: "image/png", Data: make([]byte, MaxUploadBytes+1)}}, wantErr: true},
		{name: "too many", uploads: []Upload{pngUpload("1.png"), pngUpload("2.png"), pngUpload("3.png"), pngUpload("4.png"), pngUpload("5.png"), pngUpload("6.png")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := uc.Validate(tt.uploads)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPhotoStoreKeepsOrder(t *testing.T) {
	store := newFakeImageStore()
	uc := NewPhotoUsecase(store, logger.NewNop())

	refs, err := uc.Store(context.Background(), []Upload{pngUpload("a.png"), pngUpload("b.png")})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/1-a.png", "/uploads/2-b.png"}, refs)

	uc.Discard(context.Background(), refs)
	assert.Zero(t, store.count())
}
