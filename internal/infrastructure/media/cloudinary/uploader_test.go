package cloudinary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmarket/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

type fakeAPI struct {
	params uploader.UploadParams
	result *uploader.UploadResult
	err    error
}

func (f *fakeAPI) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	return f.result, f.err
}

func TestUploader_Upload(t *testing.T) {
	fake := &fakeAPI{result: &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/a.jpg"}}
	u := NewWithAPI(fake, "booktreasure")

	url, err := u.Upload(context.Background(), strings.NewReader("img"), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/a.jpg", url)
	assert.Equal(t, "booktreasure", fake.params.Folder)
	assert.Equal(t, coverTransformation, fake.params.Transformation)
}

func TestUploader_Errors(t *testing.T) {
	t.Run("网络错误", func(t *testing.T) {
		u := NewWithAPI(&fakeAPI{err: errors.New("timeout")}, "f")
		_, err := u.Upload(context.Background(), strings.NewReader("img"), "a.jpg")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeUpstream, apperrors.GetAppError(err).Code)
	})

	t.Run("接口返回错误信息", func(t *testing.T) {
		u := NewWithAPI(&fakeAPI{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}, "f")
		_, err := u.Upload(context.Background(), strings.NewReader("img"), "a.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid image file")
	})

	t.Run("文件被拒绝不触发熔断", func(t *testing.T) {
		u := NewWithAPI(&fakeAPI{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}, "f")
		for i := 0; i < 6; i++ {
			_, err := u.Upload(context.Background(), strings.NewReader("img"), "a.jpg")
			require.Error(t, err)
		}
		assert.Equal(t, circuitbreaker.StateClosed, u.breaker.State())
	})
}
