package api_router

import (
	"github.com/haierkeys/collab-doc-service/internal/app"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	pkgapp "github.com/haierkeys/collab-doc-service/pkg/app"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	"github.com/haierkeys/collab-doc-service/pkg/convert"
	apperrors "github.com/haierkeys/collab-doc-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentHandler document API router handler
// DocumentHandler 文档 API 路由处理器
// 使用 App Container 注入依赖，支持统一错误处理
type DocumentHandler struct {
	*Handler
}

// NewDocumentHandler 创建 DocumentHandler 实例
func NewDocumentHandler(a *app.App) *DocumentHandler {
	return &DocumentHandler{
		Handler: NewHandler(a),
	}
}

// queryID 从查询参数或表单获取 id
func queryID(c *gin.Context, key string) int64 {
	if s, exist := c.GetQuery(key); exist {
		return convert.StrTo(s).MustInt64()
	}
	return convert.StrTo(c.PostForm(key)).MustInt64()
}

// Create 创建文档
func (h *DocumentHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DocumentCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DocumentHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	docDTO, err := h.App.DocumentService.Create(c.Request.Context(), pkgapp.GetUID(c), params)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(docDTO))
}

// Get 获取文档详情
func (h *DocumentHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := queryID(c, "id")
	if id <= 0 {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("id is required"))
		return
	}

	docDTO, err := h.App.DocumentService.Get(c.Request.Context(), pkgapp.GetUID(c), id)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(docDTO))
}

// Update 更新文档标题与内容
func (h *DocumentHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.DocumentUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DocumentHandler.Update.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	if err := h.App.DocumentService.Update(c.Request.Context(), pkgapp.GetUID(c), params); err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Delete 删除文档及其版本历史
func (h *DocumentHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := queryID(c, "id")
	if id <= 0 {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("id is required"))
		return
	}

	if err := h.App.DocumentService.Delete(c.Request.Context(), pkgapp.GetUID(c), id); err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// List 分页获取可访问的文档列表
func (h *DocumentHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	list, count, err := h.App.DocumentService.List(c.Request.Context(), pkgapp.GetUID(c), page, pageSize)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, list, int(count))
}

// Collaborators 获取文档协作者列表
func (h *DocumentHandler) Collaborators(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	id := queryID(c, "id")
	if id <= 0 {
		response.ToResponse(code.ErrorInvalidParams.WithDetails("id is required"))
		return
	}

	list, err := h.App.DocumentService.ListCollaborators(c.Request.Context(), pkgapp.GetUID(c), id)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(list))
}

// CollaboratorAdd 按邮箱添加协作者
func (h *DocumentHandler) CollaboratorAdd(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CollaboratorAddRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DocumentHandler.CollaboratorAdd.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	collaborator, err := h.App.DocumentService.AddCollaborator(c.Request.Context(), pkgapp.GetUID(c), params)
	if err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(collaborator))
}

// CollaboratorRemove 移除协作者
func (h *DocumentHandler) CollaboratorRemove(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CollaboratorRemoveRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("DocumentHandler.CollaboratorRemove.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	if err := h.App.DocumentService.RemoveCollaborator(c.Request.Context(), pkgapp.GetUID(c), params); err != nil {
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}
