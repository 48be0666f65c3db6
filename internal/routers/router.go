// Package routers 组装 HTTP 与 WebSocket 路由
package routers

import (
	"time"

	"github.com/haierkeys/collab-doc-service/internal/app"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/internal/middleware"
	"github.com/haierkeys/collab-doc-service/internal/routers/api_router"
	"github.com/haierkeys/collab-doc-service/internal/routers/websocket_router"
	pkgapp "github.com/haierkeys/collab-doc-service/pkg/app"
	"github.com/haierkeys/collab-doc-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/lxzan/gws"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/user/login",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
	limiter.BucketRule{
		Key:          "/api/user/register",
		FillInterval: time.Second,
		Capacity:     5,
		Quantum:      5,
	},
)

// NewRouter 创建 gin 路由引擎并注册全部路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	var wss = pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{
		GWSOption: gws.ServerOption{
			CheckUtf8Enabled:    true,
			ParallelEnabled:     true,                                 // 开启并行消息处理
			Recovery:            gws.Recovery,                         // 开启异常恢复
			PermessageDeflate:   gws.PermessageDeflate{Enabled: true}, // 开启压缩
			ParallelGolimit:     8,
			ReadMaxPayloadSize:  1024 * 1024 * 16, // 设置最大读取缓冲区大小 16MB
			WriteMaxPayloadSize: 1024 * 1024 * 16, // 设置最大写入缓冲区大小 16MB
		},
		TokenManager: appContainer.TokenManager,
	})

	// 创建 WebSocket Handler（注入 App Container）
	documentWSHandler := websocket_router.NewDocumentWSHandler(appContainer)

	// 加入文档会话
	wss.Use(dto.EventJoinDocument, documentWSHandler.JoinDocument)
	// 文档内容变更
	wss.Use(dto.EventDocumentChange, documentWSHandler.DocumentChange)
	// 光标移动
	wss.Use(dto.EventCursorMove, documentWSHandler.CursorMove)
	// 输入状态
	wss.Use(dto.EventTyping, documentWSHandler.Typing)

	// 认证时的用户有效性校验
	wss.UserDataSelectUse(documentWSHandler.UserInfo)
	// 断开时清理全部会话
	wss.CloseUse(documentWSHandler.OnDisconnect)

	if cfg.Server.RunMode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo())
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLog())
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		userHandler := api_router.NewUserHandler(appContainer)
		documentHandler := api_router.NewDocumentHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		exportHandler := api_router.NewExportHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)

		// 协作 WebSocket 入口，认证在连接内完成
		api.GET("/ws", wss.Run())

		api.GET("/health", healthHandler.Check)
		api.GET("/version", healthHandler.ServerVersion)

		auth := api.Group("")
		auth.Use(middleware.UserAuthTokenWithConfig(cfg.Security.AuthTokenKey))
		{
			auth.POST("/user/change_password", userHandler.UserChangePassword)
			auth.GET("/user/info", userHandler.UserInfo)

			auth.GET("/document", documentHandler.Get)
			auth.GET("/documents", documentHandler.List)
			auth.POST("/document", documentHandler.Create)
			auth.PUT("/document", documentHandler.Update)
			auth.DELETE("/document", documentHandler.Delete)

			auth.GET("/document/collaborators", documentHandler.Collaborators)
			auth.POST("/document/collaborator", documentHandler.CollaboratorAdd)
			auth.DELETE("/document/collaborator", documentHandler.CollaboratorRemove)

			auth.GET("/document/versions", versionHandler.List)
			auth.GET("/document/version", versionHandler.Get)
			auth.POST("/document/version", versionHandler.Create)
			auth.POST("/document/version/restore", versionHandler.Restore)
			auth.GET("/document/version/compare", versionHandler.Compare)

			auth.GET("/document/export", exportHandler.Export)
		}
	}

	r.NoRoute(middleware.NoFound())

	return r
}
