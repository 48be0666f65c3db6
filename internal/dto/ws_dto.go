package dto

import "github.com/haierkeys/collab-doc-service/pkg/timex"

// WebSocketEvent WebSocket 文本消息事件名
// WebSocket text message event name
type WebSocketEvent = string

// 客户端到服务端事件
const (
	// EventJoinDocument 加入文档会话
	EventJoinDocument WebSocketEvent = "join-document"
	// EventDocumentChange 文档内容变更
	EventDocumentChange WebSocketEvent = "document-change"
	// EventCursorMove 光标移动
	EventCursorMove WebSocketEvent = "cursor-move"
	// EventTyping 输入状态
	EventTyping WebSocketEvent = "typing"
)

// 服务端到客户端事件
const (
	// EventUserJoined 有用户加入会话
	EventUserJoined WebSocketEvent = "user-joined"
	// EventRoomUsers 当前会话参与者列表
	EventRoomUsers WebSocketEvent = "room-users"
	// EventDocumentUpdated 文档内容已更新
	EventDocumentUpdated WebSocketEvent = "document-updated"
	// EventDocumentRestored 文档已恢复到历史版本
	EventDocumentRestored WebSocketEvent = "document-restored"
	// EventCursorUpdated 光标位置更新
	EventCursorUpdated WebSocketEvent = "cursor-updated"
	// EventUserTyping 用户输入状态
	EventUserTyping WebSocketEvent = "user-typing"
	// EventUserLeft 用户离开会话
	EventUserLeft WebSocketEvent = "user-left"
	// EventError 错误消息
	EventError WebSocketEvent = "error"
)

// JoinDocumentMessage 加入文档会话的消息内容
type JoinDocumentMessage struct {
	DocumentID int64 `json:"documentId" form:"documentId" validate:"required"`
}

// DocumentChangeMessage 文档内容变更的消息内容
type DocumentChangeMessage struct {
	DocumentID int64  `json:"documentId" form:"documentId" validate:"required"`
	Content    string `json:"content" form:"content"`
}

// CursorMoveMessage 光标移动的消息内容
type CursorMoveMessage struct {
	DocumentID int64  `json:"documentId" form:"documentId" validate:"required"`
	Position   int64  `json:"position" form:"position"`
	Selection  string `json:"selection" form:"selection"`
}

// TypingMessage 输入状态的消息内容
type TypingMessage struct {
	DocumentID int64 `json:"documentId" form:"documentId" validate:"required"`
	IsTyping   bool  `json:"isTyping" form:"isTyping"`
}

// ParticipantDTO 会话参与者信息
type ParticipantDTO struct {
	UID      int64      `json:"uid"`
	Name     string     `json:"name"`
	JoinedAt timex.Time `json:"joinedAt"`
}

// UserJoinedMessage 用户加入会话的广播内容
type UserJoinedMessage struct {
	User         ParticipantDTO   `json:"user"`
	Participants []ParticipantDTO `json:"participants"`
}

// RoomUsersMessage 参与者列表，仅发给新加入者
type RoomUsersMessage struct {
	Participants []ParticipantDTO `json:"participants"`
}

// DocumentUpdatedMessage 文档更新的广播内容
type DocumentUpdatedMessage struct {
	DocumentID int64      `json:"documentId"`
	Content    string     `json:"content"`
	UpdatedBy  string     `json:"updatedBy"`
	UpdatedAt  timex.Time `json:"updatedAt"`
}

// FromVersionDTO 恢复来源版本信息
type FromVersionDTO struct {
	ID         int64      `json:"id"`
	CreatedAt  timex.Time `json:"createdAt"`
	AuthorName string     `json:"authorName"`
}

// DocumentRestoredMessage 文档恢复的广播内容
type DocumentRestoredMessage struct {
	DocumentID  int64          `json:"documentId"`
	Content     string         `json:"content"`
	RestoredBy  string         `json:"restoredBy"`
	RestoredAt  timex.Time     `json:"restoredAt"`
	FromVersion FromVersionDTO `json:"fromVersion"`
}

// CursorUpdatedMessage 光标更新的广播内容
type CursorUpdatedMessage struct {
	UID       int64  `json:"uid"`
	UserName  string `json:"userName"`
	Position  int64  `json:"position"`
	Selection string `json:"selection"`
}

// UserTypingMessage 输入状态的广播内容
type UserTypingMessage struct {
	UID      int64  `json:"uid"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
}

// UserLeftMessage 用户离开会话的广播内容
type UserLeftMessage struct {
	User         ParticipantDTO   `json:"user"`
	Participants []ParticipantDTO `json:"participants"`
}

// ErrorMessage 错误消息内容
type ErrorMessage struct {
	Message string `json:"message"`
}
