package dto

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xiebiao/bookmarket/internal/domain/book"
	"github.com/xiebiao/bookmarket/internal/domain/user"
)

// RegisterValidators 注册自定义binding校验
//
//	book_condition: New | Like New | Very Good | Good | Acceptable（大小写、连字符不敏感）
//	user_role:      buyer | seller | admin
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	if err := v.RegisterValidation("book_condition", validateCondition); err != nil {
		return err
	}
	return v.RegisterValidation("user_role", validateRole)
}

func validateCondition(fl validator.FieldLevel) bool {
	_, err := book.ParseCondition(fl.Field().String())
	return err == nil
}

func validateRole(fl validator.FieldLevel) bool {
	return user.Role(fl.Field().String()).Valid()
}
