package app

import (
	"strings"

	"github.com/haierkeys/collab-doc-service/global"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
)

type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// ErrorsToString 拼接全部校验错误消息
func (v ValidErrors) ErrorsToString() string {
	return strings.Join(v.Errors(), ",")
}

// MapsToString 以字段为键返回校验错误，便于客户端按字段展示
func (v ValidErrors) MapsToString() map[string]string {
	m := make(map[string]string, len(v))
	for _, err := range v {
		m[err.Key] = err.Message
	}
	return m
}

// BindAndValid binds request params and validates them with translated messages
// BindAndValid 绑定请求参数并使用全局验证器验证，错误消息按请求语言翻译
func BindAndValid(c *gin.Context, v interface{}) (bool, ValidErrors) {
	var errs ValidErrors

	if err := c.ShouldBind(v); err != nil {
		errs = append(errs, &ValidError{
			Key:     "body",
			Message: "Invalid request format",
		})
		return false, errs
	}

	if err := global.Validator.Validate.Struct(v); err != nil {
		validationErrors, ok := err.(val.ValidationErrors)
		if !ok {
			errs = append(errs, &ValidError{
				Key:     "body",
				Message: err.Error(),
			})
			return false, errs
		}

		trans, _ := c.Value("trans").(ut.Translator)
		for _, validationErr := range validationErrors {
			message := validationErr.Error()
			if trans != nil {
				message = validationErr.Translate(trans)
			}
			errs = append(errs, &ValidError{
				Key:     validationErr.Field(),
				Message: message,
			})
		}
		return false, errs
	}

	return true, nil
}
