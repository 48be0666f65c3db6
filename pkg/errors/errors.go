// Package errors 提供统一的 HTTP 错误响应处理
package errors

import (
	"errors"

	"github.com/haierkeys/collab-doc-service/pkg/app"
	"github.com/haierkeys/collab-doc-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 统一错误响应处理
// Service 层直接返回 *code.Code 作为 error，此处还原后输出统一响应
// 其他错误一律归为服务内部错误
func ErrorResponse(c *gin.Context, err error) {
	response := app.NewResponse(c)

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		response.ToResponse(codeErr)
		return
	}

	response.ToResponse(code.ErrorServerInternal.WithDetails(err.Error()))
}

// AsCode 从错误链中还原 *code.Code，失败返回 nil
func AsCode(err error) *code.Code {
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return codeErr
	}
	return nil
}
