package book

import (
	"fmt"

	apperrors "github.com/xiebiao/bookmarket/pkg/errors"
)

// 图书领域错误定义
var (
	ErrBookNotFound = apperrors.ErrBookNotFound

	ErrInvalidPrice     = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")
	ErrInvalidQuantity  = apperrors.New(apperrors.ErrCodeInvalidParams, "数量不能为负数")
	ErrInvalidCondition = apperrors.New(apperrors.ErrCodeInvalidParams, "品相必须是New、Like New、Very Good、Good或Acceptable")

	ErrInsufficientStock = apperrors.ErrInsufficientStock
)

// MissingField 缺少必填字段
func MissingField(field string) *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeInvalidParams, fmt.Sprintf("Missing required field: %s", field))
}
