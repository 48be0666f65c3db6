package websocket_router

import (
	"github.com/haierkeys/collab-doc-service/internal/app"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	pkgapp "github.com/haierkeys/collab-doc-service/pkg/app"
	"github.com/haierkeys/collab-doc-service/pkg/timex"

	"go.uber.org/zap"
)

// DocumentWSHandler WebSocket document collaboration handler
// DocumentWSHandler WebSocket 文档协作处理器
// 使用 App Container 注入依赖
type DocumentWSHandler struct {
	*WSHandler
}

// NewDocumentWSHandler 创建 DocumentWSHandler 实例
func NewDocumentWSHandler(a *app.App) *DocumentWSHandler {
	return &DocumentWSHandler{
		WSHandler: NewWSHandler(a),
	}
}

// UserInfo 认证时的用户有效性校验回调
func (h *DocumentWSHandler) UserInfo(c *pkgapp.WebsocketClient, uid int64) (*pkgapp.UserSelectEntity, error) {
	user, err := h.App.UserService.GetByUID(c.Ctx.Request.Context(), uid)
	if err != nil {
		return nil, err
	}
	return &pkgapp.UserSelectEntity{
		UID:      user.UID,
		Nickname: user.Nickname,
	}, nil
}

// JoinDocument 处理加入文档会话消息
// 权限校验通过后加入会话并下发当前参与者与文档内容
func (h *DocumentWSHandler) JoinDocument(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.JoinDocumentMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondInvalidParams(c, errs, "websocket_router.document.JoinDocument.BindAndValid")
		return
	}

	ctx := c.Ctx.Request.Context()

	doc, err := h.App.SessionRegistry.Join(ctx, AsSessionClient(c), principal(c), params.DocumentID)
	if err != nil {
		h.respondError(c, err, "websocket_router.document.JoinDocument")
		return
	}

	// 向加入者推送文档当前内容，作为协作基线
	if err := c.ToEvent(dto.EventDocumentUpdated, &dto.DocumentUpdatedMessage{
		DocumentID: doc.ID,
		Content:    doc.Content,
		UpdatedAt:  timex.Time(doc.UpdatedAt),
	}); err != nil {
		h.App.Logger().Warn("websocket_router.document.JoinDocument content push failed",
			zap.Error(err),
			zap.String("connId", c.ConnID))
	}
}

// DocumentChange 处理文档内容变更消息
// 同一文档串行执行，持久化成功后才广播
func (h *DocumentWSHandler) DocumentChange(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.DocumentChangeMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondInvalidParams(c, errs, "websocket_router.document.DocumentChange.BindAndValid")
		return
	}

	ctx := c.Ctx.Request.Context()

	if err := h.App.SessionRegistry.ApplyChange(ctx, AsSessionClient(c), params.DocumentID, params.Content); err != nil {
		h.respondError(c, err, "websocket_router.document.DocumentChange")
		return
	}
}

// CursorMove 处理光标移动消息，转发给会话内其他参与者
func (h *DocumentWSHandler) CursorMove(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.CursorMoveMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		// 畸形的光标消息直接丢弃，不中断连接
		h.App.Logger().Debug("websocket_router.document.CursorMove drop malformed payload",
			zap.Error(errs),
			zap.String("connId", c.ConnID))
		return
	}

	if err := h.App.SessionRegistry.RelayCursor(AsSessionClient(c), params); err != nil {
		h.App.Logger().Debug("websocket_router.document.CursorMove relay skipped",
			zap.Error(err),
			zap.String("connId", c.ConnID))
	}
}

// Typing 处理输入状态消息，转发给会话内其他参与者
func (h *DocumentWSHandler) Typing(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.TypingMessage{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.App.Logger().Debug("websocket_router.document.Typing drop malformed payload",
			zap.Error(errs),
			zap.String("connId", c.ConnID))
		return
	}

	if err := h.App.SessionRegistry.RelayTyping(AsSessionClient(c), params); err != nil {
		h.App.Logger().Debug("websocket_router.document.Typing relay skipped",
			zap.Error(err),
			zap.String("connId", c.ConnID))
	}
}

// OnDisconnect 连接关闭时将其移出全部文档会话
func (h *DocumentWSHandler) OnDisconnect(c *pkgapp.WebsocketClient) {
	h.App.SessionRegistry.RouteDisconnect(c.ConnID)
}
