// Package media 封面图片上传
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"

	"github.com/xiebiao/bookmarket/internal/domain/access"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// MaxImageSize 单张图片上限5MB
const MaxImageSize = 5 << 20

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

var (
	ErrNoImage       = apperrors.New(apperrors.ErrCodeInvalidParams, "No image provided")
	ErrImageTooLarge = apperrors.New(apperrors.ErrCodeInvalidParams, "Image must be 5MB or smaller")
	ErrImageType     = apperrors.New(apperrors.ErrCodeInvalidParams, "Only JPEG, PNG and WebP images are allowed")
)

// ImageStore 图床
// 实现：infrastructure/media/cloudinary
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
}

// UploadImageUseCase 上传封面图片
type UploadImageUseCase struct {
	store ImageStore
}

// NewUploadImageUseCase store为nil时上传返回错误
func NewUploadImageUseCase(store ImageStore) *UploadImageUseCase {
	return &UploadImageUseCase{store: store}
}

// UploadImageResponse 上传结果
type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
}

// Execute 按内容识别类型，不信任文件扩展名与Content-Type
func (uc *UploadImageUseCase) Execute(ctx context.Context, sub access.Subject, r io.Reader, filename string) (*UploadImageResponse, error) {
	if err := access.Authorize(sub, access.UploadImage, access.None); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNoImage
	}

	// 多读1字节用于判断是否超限
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, apperrors.Wrap(err, "读取图片失败")
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return nil, ErrImageType.WithCause(fmt.Errorf("detected %s", mt.String()))
	}

	if uc.store == nil {
		return nil, apperrors.Upstream(nil, "图床未配置")
	}
	url, err := uc.store.Upload(ctx, bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "图片已上传", "user_id", sub.UserID, "mime", mt.String(), "size", len(data))
	return &UploadImageResponse{ImageURL: url}, nil
}
