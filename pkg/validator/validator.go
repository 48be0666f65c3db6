// Package validator 提供请求参数验证器与多语言翻译支持
package validator

import (
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	val "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Validator 封装验证器实例与翻译器集合
type Validator struct {
	Validate *val.Validate
	Uni      *ut.UniversalTranslator
}

// NewValidator 创建验证器并注册 en/zh 翻译
func NewValidator() (*Validator, error) {
	v := val.New()

	enLocale := en.New()
	zhLocale := zh.New()
	uni := ut.New(enLocale, enLocale, zhLocale)

	if trans, found := uni.GetTranslator("en"); found {
		if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
			return nil, err
		}
	}
	if trans, found := uni.GetTranslator("zh"); found {
		if err := zh_translations.RegisterDefaultTranslations(v, trans); err != nil {
			return nil, err
		}
	}

	return &Validator{
		Validate: v,
		Uni:      uni,
	}, nil
}
