package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/levpat/marketplace-blog/internal/logger"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 绑定引擎注册自定义校验规则
func RegisterValidators() {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.Warnw("validator_engine_unexpected")
			return
		}
		if err := engine.RegisterValidation("notblank", validators.NotBlank); err != nil {
			logger.Errorw("validator_register_failed", "rule", "notblank", "error", err)
		}
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
	})
}

// BindingErrorMessage 将绑定错误转换为可读提示
func BindingErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required", "notblank":
			return fmt.Sprintf("Field %s is required", fe.Field())
		case "email":
			return "Invalid email address"
		default:
			return fmt.Sprintf("Field %s is invalid", fe.Field())
		}
	}
	return "Invalid request body"
}
