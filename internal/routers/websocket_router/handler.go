// Package websocket_router 提供 WebSocket 路由处理器
package websocket_router

import (
	"github.com/haierkeys/collab-doc-service/internal/app"
	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/internal/session"
	pkgapp "github.com/haierkeys/collab-doc-service/pkg/app"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	apperrors "github.com/haierkeys/collab-doc-service/pkg/errors"

	"go.uber.org/zap"
)

// WSHandler WebSocket 基础 Handler 结构体，封装 App Container
// 所有 WebSocket Handler 都应该嵌入此结构体以获得依赖注入能力
type WSHandler struct {
	App *app.App
}

// NewWSHandler 创建 WebSocket 基础 Handler 实例
func NewWSHandler(a *app.App) *WSHandler {
	return &WSHandler{App: a}
}

// sessionClient 将 WebsocketClient 适配为会话层的 Client 接口
type sessionClient struct {
	c *pkgapp.WebsocketClient
}

// ID 连接唯一标识
func (s sessionClient) ID() string {
	return s.c.ConnID
}

// Send 以 "event|{json}" 格式下发消息
func (s sessionClient) Send(event string, payload any) error {
	return s.c.ToEvent(event, payload)
}

// AsSessionClient 将 WebsocketClient 包装为会话层 Client
func AsSessionClient(c *pkgapp.WebsocketClient) session.Client {
	return sessionClient{c: c}
}

// principal 从已认证连接提取身份
func principal(c *pkgapp.WebsocketClient) domain.Principal {
	return domain.Principal{
		UID:  c.User.UID,
		Name: c.User.Nickname,
	}
}

// respondError 统一错误响应
// 记录日志并以 error 事件通知客户端，消息按当前语言返回
func (h *WSHandler) respondError(c *pkgapp.WebsocketClient, err error, method string) {
	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("connId", c.ConnID))

	message := code.ErrorServerInternal.Msg()
	if codeErr := apperrors.AsCode(err); codeErr != nil {
		message = codeErr.Msg()
	}
	if sendErr := c.ToEvent(dto.EventError, &dto.ErrorMessage{Message: message}); sendErr != nil {
		h.App.Logger().Warn(method+" error push failed",
			zap.Error(sendErr),
			zap.String("connId", c.ConnID))
	}
}

// respondInvalidParams 参数校验失败响应
// 畸形负载丢弃，不影响连接，仅记录并回送 error 事件
func (h *WSHandler) respondInvalidParams(c *pkgapp.WebsocketClient, errs pkgapp.ValidErrors, method string) {
	h.App.Logger().Warn(method+" invalid params",
		zap.Error(errs),
		zap.String("connId", c.ConnID))
	c.ToEvent(dto.EventError, &dto.ErrorMessage{Message: errs.ErrorsToString()})
}
