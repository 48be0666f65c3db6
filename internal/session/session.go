// Package session 管理文档协作会话
// 每个打开的文档对应一个会话，跟踪参与者并向其广播事件
package session

import (
	"sync"
	"time"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/pkg/timex"

	"go.uber.org/zap"
)

// Client 会话中一条可下发消息的连接
// pkg/app 的 WebsocketClient 满足此接口，测试可用内存实现替代
type Client interface {
	// ID 连接唯一标识
	ID() string

	// Send 以事件名加 JSON 负载的形式向连接下发消息
	Send(event string, payload any) error
}

// participant 会话参与者，一个连接对应一个参与者
type participant struct {
	client    Client
	principal domain.Principal
	joinedAt  time.Time
}

func (p *participant) toDTO() dto.ParticipantDTO {
	return dto.ParticipantDTO{
		UID:      p.principal.UID,
		Name:     p.principal.Name,
		JoinedAt: timex.Time(p.joinedAt),
	}
}

// DocumentSession 单个文档的协作会话
// 参与者按连接标识索引，同一用户多个连接视为多个参与者
type DocumentSession struct {
	documentID   int64
	mu           sync.RWMutex
	participants map[string]*participant
	logger       *zap.Logger
}

// NewDocumentSession 创建文档会话
func NewDocumentSession(documentID int64, logger *zap.Logger) *DocumentSession {
	return &DocumentSession{
		documentID:   documentID,
		participants: make(map[string]*participant),
		logger:       logger,
	}
}

// DocumentID 返回会话对应的文档ID
func (s *DocumentSession) DocumentID() int64 {
	return s.documentID
}

// Add 将连接加入会话，返回加入后的参与者列表
func (s *DocumentSession) Add(client Client, principal domain.Principal) []dto.ParticipantDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[client.ID()] = &participant{
		client:    client,
		principal: principal,
		joinedAt:  time.Now(),
	}
	return s.participantsLocked()
}

// Remove 将连接移出会话
// 返回被移除的参与者信息、剩余参与者列表以及会话是否已空
func (s *DocumentSession) Remove(connID string) (*dto.ParticipantDTO, []dto.ParticipantDTO, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.participants[connID]
	if !ok {
		return nil, s.participantsLocked(), len(s.participants) == 0
	}
	delete(s.participants, connID)

	left := p.toDTO()
	return &left, s.participantsLocked(), len(s.participants) == 0
}

// Has 判断连接是否在会话中
func (s *DocumentSession) Has(connID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.participants[connID]
	return ok
}

// Principal 返回连接在会话中的身份，不在会话中时 ok 为 false
func (s *DocumentSession) Principal(connID string) (domain.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participants[connID]
	if !ok {
		return domain.Principal{}, false
	}
	return p.principal, true
}

// Participants 返回当前参与者列表
func (s *DocumentSession) Participants() []dto.ParticipantDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.participantsLocked()
}

// Size 返回当前参与者数量
func (s *DocumentSession) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

func (s *DocumentSession) participantsLocked() []dto.ParticipantDTO {
	result := make([]dto.ParticipantDTO, 0, len(s.participants))
	for _, p := range s.participants {
		result = append(result, p.toDTO())
	}
	return result
}

// Broadcast 向会话内全部参与者下发事件
func (s *DocumentSession) Broadcast(event string, payload any) {
	s.broadcast(event, payload, "")
}

// BroadcastExcept 向除指定连接外的参与者下发事件
func (s *DocumentSession) BroadcastExcept(exceptConnID string, event string, payload any) {
	s.broadcast(event, payload, exceptConnID)
}

func (s *DocumentSession) broadcast(event string, payload any, exceptConnID string) {
	s.mu.RLock()
	targets := make([]*participant, 0, len(s.participants))
	for connID, p := range s.participants {
		if connID == exceptConnID {
			continue
		}
		targets = append(targets, p)
	}
	s.mu.RUnlock()

	for _, p := range targets {
		if err := p.client.Send(event, payload); err != nil {
			// 下发失败不影响其他参与者，连接异常由断开清理处理
			s.logger.Warn("session broadcast failed",
				zap.Int64("documentId", s.documentID),
				zap.String("event", event),
				zap.String("connId", p.client.ID()),
				zap.Error(err))
		}
	}
}
