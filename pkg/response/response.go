package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// Response 所有JSON接口共用的外层结构，code为0表示成功
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func write(c *gin.Context, status, code int, message string, data interface{}) {
	c.JSON(status, Response{Code: code, Message: message, Data: data})
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, 0, "success", data)
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, 0, "created", data)
}

// Error 写出AppError；非AppError按内部错误处理，原始错误只记日志
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"code", appErr.Code,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("request_id"),
			"error", appErr.Err,
		)
	}

	write(c, apperrors.HTTPStatus(appErr.Code), appErr.Code, appErr.Message, nil)
}

// ErrorWithCode 参数绑定失败等没有预定义错误的场景
func ErrorWithCode(c *gin.Context, code int, message string) {
	write(c, apperrors.HTTPStatus(code), code, message, nil)
}

// AbortWithError 中间件用
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// PageData 列表接口的data
type PageData struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewPageData pageSize为0时total_pages为0
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	pd := &PageData{List: list, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		pd.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return pd
}

// SuccessWithPage 分页列表
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}
