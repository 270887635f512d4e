// Package cloudinary Cloudinary图床
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
	"github.com/xiebiao/bookmarket/pkg/circuitbreaker"
)

// 最长边限制在800×1000，质量自动
const coverTransformation = "c_limit,h_1000,w_800/q_auto:good"

// UploadAPI *uploader.API的子集
type UploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// errRejected 图床拒绝了文件本身，服务可用
var errRejected = errors.New("cloudinary rejected upload")

// Uploader 上传封面图片
type Uploader struct {
	api     UploadAPI
	folder  string
	breaker *circuitbreaker.CircuitBreaker
}

// New 使用凭据创建
func New(cloudName, apiKey, apiSecret, folder string) (*Uploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("初始化Cloudinary失败: %w", err)
	}
	return NewWithAPI(&cld.Upload, folder), nil
}

// NewWithAPI 注入上传接口(测试用)
func NewWithAPI(api UploadAPI, folder string) *Uploader {
	return &Uploader{
		api:     api,
		folder:  folder,
		breaker: circuitbreaker.New("cloudinary", circuitbreaker.Config{
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errRejected) || errors.Is(err, context.Canceled)
			},
		}),
	}
}

// Upload 返回https地址
func (u *Uploader) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	var secureURL string
	err := u.breaker.Execute(func() error {
		res, err := u.api.Upload(ctx, r, uploader.UploadParams{
			Folder:         u.folder,
			Transformation: coverTransformation,
		})
		if err != nil {
			return err
		}
		// Cloudinary的业务错误不通过err返回
		if res.Error.Message != "" {
			return fmt.Errorf("%w: %s", errRejected, res.Error.Message)
		}
		secureURL = res.SecureURL
		return nil
	})
	if err != nil {
		return "", apperrors.Upstream(fmt.Errorf("upload %s: %w", filename, err), "Failed to upload image")
	}
	return secureURL, nil
}
