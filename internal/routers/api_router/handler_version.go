package api_router

import (
	"github.com/haierkeys/collab-doc-service/internal/app"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	pkgapp "github.com/haierkeys/collab-doc-service/pkg/app"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	apperrors "github.com/haierkeys/collab-doc-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VersionHandler document version API router handler
// VersionHandler 文档版本 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type VersionHandler struct {
	*Handler
}

// NewVersionHandler 创建 VersionHandler 实例
func NewVersionHandler(a *app.App) *VersionHandler {
	return &VersionHandler{
		Handler: NewHandler(a),
	}
}

// List 分页获取文档版本列表
func (h *VersionHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	documentID := queryID(c, "documentId")
	if documentID <= 0 {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("documentId is required"))
		return
	}

	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	list, count, err := h.App.VersionService.List(c.Request.Context(), pkgapp.GetUID(c), documentID, page, pageSize)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(count))
}

// Get 获取版本详情（含内容快照）
func (h *VersionHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	documentID := queryID(c, "documentId")
	versionID := queryID(c, "id")
	if documentID <= 0 || versionID <= 0 {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("documentId and id are required"))
		return
	}

	detail, err := h.App.VersionService.Get(c.Request.Context(), pkgapp.GetUID(c), documentID, versionID)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(detail))
}

// Create 手工保存版本，绕过自动快照冷却
func (h *VersionHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.VersionCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	user, err := h.App.UserService.GetInfo(c.Request.Context(), pkgapp.GetUID(c))
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	versionDTO, err := h.App.VersionService.CommitManual(c.Request.Context(), user.UID, user.Nickname, params)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(versionDTO))
}

// Restore 将文档恢复到指定历史版本
// 恢复结果会向对应文档会话广播
func (h *VersionHandler) Restore(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.VersionRestoreRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("VersionHandler.Restore.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	user, err := h.App.UserService.GetInfo(c.Request.Context(), pkgapp.GetUID(c))
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	restored, err := h.App.SessionRegistry.Restore(c.Request.Context(), user.UID, user.Nickname, params.DocumentID, params.VersionID)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(restored))
}

// Compare 对比两个版本的内容差异
func (h *VersionHandler) Compare(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	documentID := queryID(c, "documentId")
	fromID := queryID(c, "fromId")
	toID := queryID(c, "toId")
	if documentID <= 0 || fromID <= 0 || toID <= 0 {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("documentId, fromId and toId are required"))
		return
	}

	result, err := h.App.VersionService.Compare(c.Request.Context(), pkgapp.GetUID(c), documentID, fromID, toID)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(result))
}
