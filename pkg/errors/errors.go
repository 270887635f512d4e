package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 业务错误
//
// 响应中只出现Code和Message，Err只进日志。
// HTTP状态码不单独存储，由HTTPStatus(Code)推导。
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按Code和Message比较，WithCause得到的副本仍能被errors.Is识别
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误），对外只暴露message
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Upstream 包装第三方服务（支付、图床、外部书目）调用失败
func Upstream(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeUpstream,
		Message: message,
		Err:     err,
	}
}

// WithCause 复制一个带内部原因的同码错误
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// 错误码：4xxxx调用方问题，5xxxx服务端或第三方问题

const (
	// 50000-50099 → 500
	ErrCodeInternal   = 50000
	ErrCodeRedisError = 50002
	ErrCodeUpstream   = 50003 // Stripe、Cloudinary、Open Library

	// 认证授权错误（40100-40199）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误
	ErrCodeForbidden       = 40104 // 无权限

	// 资源错误（40400-40499）
	ErrCodeNotFound      = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound  = 40401 // 用户不存在
	ErrCodeBookNotFound  = 40402 // 图书不存在
	ErrCodeOrderNotFound = 40403 // 订单不存在

	// 业务规则错误（40000-40099）
	ErrCodeInsufficientStock  = 40001 // 库存不足
	ErrCodeInvalidOrderStatus = 40002 // 订单状态非法
	ErrCodeEmailDuplicate     = 40003 // 邮箱已存在
	ErrCodeWeakPassword       = 40005 // 密码强度不足
	ErrCodeSignatureInvalid   = 40006 // 回调签名校验失败
	ErrCodeInvalidRole        = 40007 // 角色非法
	ErrCodeDuplicateEntry     = 40009 // 重复记录(通用)

	// 参数错误（40900-40999），同样映射为400
	ErrCodeInvalidParams = 40900
)

var (
	ErrRedisError = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "邮箱或密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrNotFound      = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound  = New(ErrCodeUserNotFound, "用户不存在")
	ErrBookNotFound  = New(ErrCodeBookNotFound, "图书不存在")
	ErrOrderNotFound = New(ErrCodeOrderNotFound, "订单不存在")

	// 业务规则
	ErrInsufficientStock  = New(ErrCodeInsufficientStock, "库存不足")
	ErrInvalidOrderStatus = New(ErrCodeInvalidOrderStatus, "订单状态不允许此操作")
	ErrEmailDuplicate     = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrWeakPassword       = New(ErrCodeWeakPassword, "密码强度不足（至少6位）")
	ErrSignatureInvalid   = New(ErrCodeSignatureInvalid, "webhook signature verification failed")
	ErrInvalidRole        = New(ErrCodeInvalidRole, "角色必须是buyer、seller或admin")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
)

// GetAppError 非AppError按内部错误处理
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// HTTPStatus 按错误码区间映射HTTP状态码
//
//	401xx → 401（40104 → 403）
//	404xx → 404
//	400xx、409xx → 400
//	其他 → 500
func HTTPStatus(code int) int {
	switch {
	case code == 0:
		return http.StatusOK
	case code == ErrCodeForbidden:
		return http.StatusForbidden
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 40000 && code < 40100, code >= 40900 && code < 41000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
