package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/collab-doc-service/global"
	"github.com/haierkeys/collab-doc-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

type LogType string

const (
	WebSocketServerPingInterval         = 25
	WebSocketServerPingWait             = 40
	LogInfo                     LogType = "info"
	LogError                    LogType = "error"
	LogWarn                     LogType = "warn"
)

func log(t LogType, msg string, fields ...zap.Field) {
	if global.Logger == nil {
		return
	}
	if t == "error" {
		global.Logger.Error(msg, fields...)
	} else if t == "warn" {
		global.Logger.Warn(msg, fields...)
	} else if t == "info" {
		global.Logger.Info(msg, fields...)
	}
}

// WebSocketMessage 一条入站消息，按 "Event|{json}" 格式拆分
type WebSocketMessage struct {
	Event string `json:"event"` // 事件名，例如 "join-document", "document-change"
	Data  []byte `json:"data"`  // 事件负载 JSON
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	TokenManager TokenManager
}

// WebsocketClient 存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn   *gws.Conn
	done   chan struct{}
	Ctx    *gin.Context
	User   *UserEntity
	ConnID string // 连接唯一标识
}

// 基于全局验证器的 WebSocket 版本参数绑定和验证工具函数
func (c *WebsocketClient) BindAndValid(data []byte, obj any) (bool, ValidErrors) {
	var errs ValidErrors

	if err := json.Unmarshal(data, obj); err != nil {
		errs = append(errs, &ValidError{
			Key:     "body",
			Message: "Invalid message format",
		})
		return false, errs
	}

	if err := global.Validator.Validate.Struct(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			trans, _ := c.Ctx.Value("trans").(ut.Translator)
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
		}
		return false, errs
	}
	return true, nil
}

// 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(PingInterval time.Duration) {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			log(LogInfo, "WebsocketServer Client Close Ping")
			return
		case <-ticker.C:
			if c.conn == nil {
				return
			}
			if err := c.conn.WritePing(nil); err != nil {
				log(LogError, "WebsocketServer Client Ping err", zap.Error(err))
				return
			}
		}
	}
}

// ToEvent 将负载序列化为 JSON 并以 "event|{json}" 格式发送给客户端
func (c *WebsocketClient) ToEvent(event string, payload any) error {
	responseBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.message([]byte(fmt.Sprintf(`%s|%s`, event, string(responseBytes))))
	return nil
}

// ToResponse 将结果转换为 JSON 格式并发送给客户端
func (c *WebsocketClient) ToResponse(codeObj *code.Code, event ...string) {
	var eventName string
	if len(event) > 0 {
		eventName = event[0]
	}

	content := Res{
		Code:    codeObj.Code(),
		Status:  codeObj.Status(),
		Message: codeObj.Lang.GetMessage(),
		Data:    codeObj.Data(),
	}
	if codeObj.HaveDetails() {
		content.Details = strings.Join(codeObj.Details(), ",")
	}

	responseBytes, _ := json.Marshal(content)
	if eventName != "" {
		responseBytes = []byte(fmt.Sprintf(`%s|%s`, eventName, string(responseBytes)))
	}
	c.message(responseBytes)
	codeObj.Reset()
}

func (c *WebsocketClient) message(payload []byte) {
	if c.conn == nil {
		return
	}
	c.conn.WriteMessage(gws.OpcodeText, payload)
}

// Close 主动关闭连接
func (c *WebsocketClient) Close(reason string) {
	if c.conn != nil {
		c.conn.WriteClose(1000, []byte(reason))
	}
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

type WebsocketServer struct {
	handlers        map[string]func(*WebsocketClient, *WebSocketMessage)
	userDataHandler func(*WebsocketClient, int64) (*UserSelectEntity, error)
	closeHandler    func(*WebsocketClient)
	clients         ConnStorage
	mu              sync.Mutex
	up              *gws.Upgrader
	config          *WebsocketServerConfig
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	wss := WebsocketServer{
		handlers: make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		clients:  make(ConnStorage),
		config:   &c,
	}
	return &wss
}

func (w *WebsocketServer) Upgrade() {
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
}

func (w *WebsocketServer) Run() gin.HandlerFunc {
	return func(c *gin.Context) {
		w.Upgrade()
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			log(LogError, "WebsocketServer Start err", zap.Error(err))
			return
		}
		client := &WebsocketClient{
			conn:   socket,
			done:   make(chan struct{}),
			Ctx:    c,
			ConnID: uuid.NewString(),
		}
		w.AddClient(client)
		log(LogInfo, "WebsocketServer Start", zap.String("type", "ReadLoop"), zap.String("connId", client.ConnID))
		go socket.ReadLoop()
	}
}

// Use 注册事件处理器
func (w *WebsocketServer) Use(event string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[event] = handler
}

// UserDataSelectUse 注册用户数据查询回调，认证时强制校验用户有效性
func (w *WebsocketServer) UserDataSelectUse(handler func(*WebsocketClient, int64) (*UserSelectEntity, error)) {
	w.userDataHandler = handler
}

// CloseUse 注册连接关闭回调，用于会话清理
func (w *WebsocketServer) CloseUse(handler func(*WebsocketClient)) {
	w.closeHandler = handler
}

func (w *WebsocketServer) authorizationFailed(c *WebsocketClient, err error) {
	log(LogError, "WebsocketServer Authorization FAILD", zap.Error(err))
	c.ToResponse(code.ErrorInvalidUserAuthToken.Clone(), "Authorization")
	time.Sleep(2 * time.Second)
	c.conn.WriteClose(1000, []byte("AuthorizationFaild"))
}

// Authorization 处理首条认证消息，认证通过前其他事件一律拒绝
func (w *WebsocketServer) Authorization(c *WebsocketClient, msg *WebSocketMessage) {
	user, err := w.config.TokenManager.Parse(string(msg.Data))
	if err != nil {
		w.authorizationFailed(c, err)
		return
	}

	// 用户有效性强制验证
	userSelect, err := w.userDataHandler(c, user.UID)
	if userSelect == nil || err != nil {
		w.authorizationFailed(c, err)
		return
	}

	user.Nickname = userSelect.Nickname

	log(LogInfo, "WebsocketServer Authorization",
		zap.Int64("uid", user.UID),
		zap.String("nickname", user.Nickname),
		zap.String("connId", c.ConnID))
	c.User = user
	c.ToResponse(code.Success.Clone(), "Authorization")
	go c.PingLoop(w.config.PingInterval)
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

// ClientCount 返回当前连接数
func (w *WebsocketServer) ClientCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	log(LogInfo, "WebsocketServer Client Connect", zap.Int("Count", w.ClientCount()))
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {
	c := w.GetClient(conn)
	w.RemoveClient(conn)

	if c == nil {
		return
	}

	if c.User != nil {
		select {
		case c.done <- struct{}{}:
		default:
		}
		log(LogInfo, "WebsocketServer User Leave", zap.Int64("uid", c.User.UID), zap.String("connId", c.ConnID))
	}

	if w.closeHandler != nil {
		w.closeHandler(c)
	}

	log(LogInfo, "WebsocketServer Client Leave", zap.Int("Count", w.ClientCount()))
}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	if message.Data.String() == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)
	if c == nil {
		return
	}

	messageStr := message.Data.String()
	index := strings.Index(messageStr, "|")

	var msg WebSocketMessage
	if index != -1 {
		msg.Event = messageStr[:index]
		msg.Data = []byte(messageStr[index+1:])
	} else {
		log(LogError, "WebsocketServer OnMessage", zap.String("type", "Illegal message type"), zap.String("connId", c.ConnID))
		return
	}

	if msg.Event == "Authorization" {
		w.Authorization(c, &msg)
		return
	}

	// 验证用户是否登录，认证前的业务事件以 error 事件拒绝
	if c.User == nil {
		c.ToResponse(code.ErrorNotUserAuthToken.Clone(), "error")
		return
	}

	handler, exists := w.handlers[msg.Event]
	if exists {
		log(LogInfo, "WebsocketServer OnMessage", zap.String("Event", msg.Event), zap.Int64("uid", c.User.UID))
		handler(c, &msg)
	} else {
		log(LogError, "WebsocketServer OnMessage", zap.String("msg", "Unknown message type"), zap.String("Event", msg.Event))
	}
}
