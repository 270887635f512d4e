package handler

import (
	"github.com/gin-gonic/gin"

	appmedia "github.com/xiebiao/bookmarket/internal/application/media"
	"github.com/xiebiao/bookmarket/internal/interface/http/middleware"
	"github.com/xiebiao/bookmarket/pkg/response"
)

// MediaHandler 封面图片上传
type MediaHandler struct {
	uploadUseCase *appmedia.UploadImageUseCase
}

// NewMediaHandler 创建上传处理器
func NewMediaHandler(uploadUseCase *appmedia.UploadImageUseCase) *MediaHandler {
	return &MediaHandler{uploadUseCase: uploadUseCase}
}

// UploadImage 上传封面
// @Summary      上传封面图片
// @Description  JPEG/PNG/WebP，不超过5MB
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image formData file true "图片"
// @Success      200 {object} response.Response{data=appmedia.UploadImageResponse}
// @Failure      400 {object} response.Response "文件缺失、过大或类型不支持"
// @Failure      403 {object} response.Response "不是卖家"
// @Router       /api/v1/upload [post]
func (h *MediaHandler) UploadImage(c *gin.Context) {
	sub := middleware.Subject(c)

	header, err := c.FormFile("image")
	if err != nil {
		// 未授权返回401/403，否则返回ErrNoImage
		_, authErr := h.uploadUseCase.Execute(c.Request.Context(), sub, nil, "")
		response.Error(c, authErr)
		return
	}

	f, err := header.Open()
	if err != nil {
		response.Error(c, appmedia.ErrNoImage.WithCause(err))
		return
	}
	defer f.Close()

	result, err := h.uploadUseCase.Execute(c.Request.Context(), sub, f, header.Filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
