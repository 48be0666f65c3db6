package api_router

import (
	"fmt"
	"net/http"

	"github.com/haierkeys/collab-doc-service/internal/app"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	pkgapp "github.com/haierkeys/collab-doc-service/pkg/app"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	apperrors "github.com/haierkeys/collab-doc-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportHandler document export API router handler
// ExportHandler 文档导出 API 路由处理器
type ExportHandler struct {
	*Handler
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(a *app.App) *ExportHandler {
	return &ExportHandler{
		Handler: NewHandler(a),
	}
}

// Export 按指定格式导出文档，以附件形式下载
func (h *ExportHandler) Export(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ExportRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("ExportHandler.Export.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	result, err := h.App.ExportService.Export(c.Request.Context(), pkgapp.GetUID(c), params)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, []byte(result.Body))
}
