package session

import (
	"context"
	"errors"
	"sync"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/internal/service"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	"github.com/haierkeys/collab-doc-service/pkg/timex"
	"github.com/haierkeys/collab-doc-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registry 全部活跃文档会话的注册表
// 会话按需创建，最后一个参与者离开后立即回收
// 同一文档的内容变更与版本恢复经写入队列串行执行
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*DocumentSession

	documentRepo   domain.DocumentRepository
	versionService service.VersionService
	snapshotPolicy service.SnapshotPolicy
	writeQueue     *writequeue.Manager
	logger         *zap.Logger
}

// NewRegistry 创建会话注册表
func NewRegistry(
	documentRepo domain.DocumentRepository,
	versionService service.VersionService,
	snapshotPolicy service.SnapshotPolicy,
	writeQueue *writequeue.Manager,
	logger *zap.Logger,
) *Registry {
	return &Registry{
		sessions:       make(map[int64]*DocumentSession),
		documentRepo:   documentRepo,
		versionService: versionService,
		snapshotPolicy: snapshotPolicy,
		writeQueue:     writeQueue,
		logger:         logger,
	}
}

// Session 返回文档会话，不存在时返回 nil
func (r *Registry) Session(documentID int64) *DocumentSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[documentID]
}

// SessionCount 返回活跃会话数量
func (r *Registry) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// getDocument 获取文档，未找到返回 ErrorDocumentNotFound
func (r *Registry) getDocument(ctx context.Context, documentID int64) (*domain.Document, error) {
	doc, err := r.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDocumentNotFound
		}
		return nil, code.ErrorDBQuery
	}
	return doc, nil
}

// Join 将连接加入文档会话
// 权限校验通过后：向其他参与者广播 user-joined，向加入者下发 room-users 与文档当前内容
func (r *Registry) Join(ctx context.Context, client Client, principal domain.Principal, documentID int64) (*domain.Document, error) {
	doc, err := r.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDocumentNotFound
		}
		return nil, code.ErrorSessionJoinFailed.WithDetails(err.Error())
	}
	if !service.CanRead(doc, principal.UID) {
		return nil, code.ErrorDocumentAccessDenied
	}

	r.mu.Lock()
	s, ok := r.sessions[documentID]
	if !ok {
		s = NewDocumentSession(documentID, r.logger)
		r.sessions[documentID] = s
	}
	participants := s.Add(client, principal)
	r.mu.Unlock()

	joined := dto.ParticipantDTO{
		UID:      principal.UID,
		Name:     principal.Name,
		JoinedAt: timex.Now(),
	}
	s.BroadcastExcept(client.ID(), dto.EventUserJoined, &dto.UserJoinedMessage{
		User:         joined,
		Participants: participants,
	})

	if err := client.Send(dto.EventRoomUsers, &dto.RoomUsersMessage{Participants: participants}); err != nil {
		r.logger.Warn("room users push failed",
			zap.Int64("documentId", documentID),
			zap.String("connId", client.ID()),
			zap.Error(err))
	}

	r.logger.Info("session joined",
		zap.Int64("documentId", documentID),
		zap.Int64("uid", principal.UID),
		zap.String("connId", client.ID()),
		zap.Int("participants", len(participants)))
	return doc, nil
}

// ApplyChange 处理文档内容变更
// 同一文档串行执行：先写版本账本和文档内容，持久化成功后才广播 document-updated
// 内容与当前一致时为空操作，不产生版本也不广播
func (r *Registry) ApplyChange(ctx context.Context, client Client, documentID int64, content string) error {
	s := r.Session(documentID)
	if s == nil || !s.Has(client.ID()) {
		return code.ErrorSessionNotJoined
	}
	principal, ok := s.Principal(client.ID())
	if !ok {
		return code.ErrorSessionNotJoined
	}

	err := r.writeQueue.Execute(ctx, documentID, func(ctx context.Context) error {
		doc, err := r.getDocument(ctx, documentID)
		if err != nil {
			return err
		}
		if !service.CanWrite(doc, principal.UID) {
			return code.ErrorDocumentAccessDenied
		}

		if doc.Content == content {
			return nil
		}

		author := &domain.Principal{UID: principal.UID, Name: principal.Name}

		// 先为被覆盖的旧内容留档
		if _, err := r.versionService.Commit(ctx, documentID, doc.Content, domain.ContentUpdatedTag, author); err != nil {
			return err
		}

		should, err := r.snapshotPolicy.ShouldAutoSnapshot(ctx, documentID, principal.UID)
		if err != nil {
			r.logger.Warn("snapshot policy check failed",
				zap.Int64("documentId", documentID),
				zap.Error(err))
		} else if should {
			if _, err := r.versionService.Commit(ctx, documentID, content, domain.AutoSnapshotTag, author); err != nil {
				// 自动快照失败不阻塞本次变更落库
				r.logger.Warn("auto snapshot commit failed",
					zap.Int64("documentId", documentID),
					zap.Error(err))
			}
		}

		if err := r.documentRepo.UpdateContent(ctx, documentID, content); err != nil {
			return code.ErrorPersistenceWrite.WithDetails(err.Error())
		}

		// 持久化成功后广播，包含发起者自身
		s.Broadcast(dto.EventDocumentUpdated, &dto.DocumentUpdatedMessage{
			DocumentID: documentID,
			Content:    content,
			UpdatedBy:  principal.Name,
			UpdatedAt:  timex.Now(),
		})
		return nil
	})
	if err != nil {
		var c *code.Code
		if errors.As(err, &c) {
			return c
		}
		return code.ErrorPersistenceWrite.WithDetails(err.Error())
	}
	return nil
}

// Restore 将文档恢复到指定历史版本
// 恢复前先为当前内容自动留档，留档失败则放弃恢复
// 持久化成功后向会话广播 document-restored
func (r *Registry) Restore(ctx context.Context, uid int64, authorName string, documentID, versionID int64) (*dto.DocumentRestoredMessage, error) {
	doc, err := r.getDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !service.CanWrite(doc, uid) {
		return nil, code.ErrorDocumentAccessDenied
	}

	target, err := r.versionService.Find(ctx, documentID, versionID)
	if err != nil {
		return nil, err
	}

	author := &domain.Principal{UID: uid, Name: authorName}
	var restored *dto.DocumentRestoredMessage

	err = r.writeQueue.Execute(ctx, documentID, func(ctx context.Context) error {
		fresh, err := r.getDocument(ctx, documentID)
		if err != nil {
			return err
		}

		if _, err := r.versionService.Commit(ctx, documentID, fresh.Content, domain.RestoreSnapshotDescription(target), author); err != nil {
			return err
		}

		if err := r.documentRepo.UpdateContent(ctx, documentID, target.Content); err != nil {
			return code.ErrorPersistenceWrite.WithDetails(err.Error())
		}

		restored = &dto.DocumentRestoredMessage{
			DocumentID: documentID,
			Content:    target.Content,
			RestoredBy: authorName,
			RestoredAt: timex.Now(),
			FromVersion: dto.FromVersionDTO{
				ID:         target.ID,
				CreatedAt:  timex.Time(target.CreatedAt),
				AuthorName: target.AuthorName,
			},
		}

		if s := r.Session(documentID); s != nil {
			s.Broadcast(dto.EventDocumentRestored, restored)
		}
		return nil
	})
	if err != nil {
		var c *code.Code
		if errors.As(err, &c) {
			return nil, c
		}
		return nil, code.ErrorVersionRestoreFailed.WithDetails(err.Error())
	}

	r.logger.Info("document restored",
		zap.Int64("documentId", documentID),
		zap.Int64("versionId", versionID),
		zap.Int64("uid", uid))
	return restored, nil
}

// RelayCursor 向会话内其他参与者转发光标位置
func (r *Registry) RelayCursor(client Client, msg *dto.CursorMoveMessage) error {
	s := r.Session(msg.DocumentID)
	if s == nil {
		return code.ErrorSessionNotJoined
	}
	principal, ok := s.Principal(client.ID())
	if !ok {
		return code.ErrorSessionNotJoined
	}

	s.BroadcastExcept(client.ID(), dto.EventCursorUpdated, &dto.CursorUpdatedMessage{
		UID:       principal.UID,
		UserName:  principal.Name,
		Position:  msg.Position,
		Selection: msg.Selection,
	})
	return nil
}

// RelayTyping 向会话内其他参与者转发输入状态
func (r *Registry) RelayTyping(client Client, msg *dto.TypingMessage) error {
	s := r.Session(msg.DocumentID)
	if s == nil {
		return code.ErrorSessionNotJoined
	}
	principal, ok := s.Principal(client.ID())
	if !ok {
		return code.ErrorSessionNotJoined
	}

	s.BroadcastExcept(client.ID(), dto.EventUserTyping, &dto.UserTypingMessage{
		UID:      principal.UID,
		UserName: principal.Name,
		IsTyping: msg.IsTyping,
	})
	return nil
}

// Leave 将连接移出文档会话
// 向剩余参与者广播 user-left，会话为空时立即回收
func (r *Registry) Leave(client Client, documentID int64) {
	r.mu.Lock()
	s, ok := r.sessions[documentID]
	if !ok {
		r.mu.Unlock()
		return
	}
	left, remaining, empty := s.Remove(client.ID())
	if empty {
		delete(r.sessions, documentID)
	}
	r.mu.Unlock()

	if left == nil {
		return
	}

	if !empty {
		s.Broadcast(dto.EventUserLeft, &dto.UserLeftMessage{
			User:         *left,
			Participants: remaining,
		})
	}

	r.logger.Info("session left",
		zap.Int64("documentId", documentID),
		zap.Int64("uid", left.UID),
		zap.String("connId", client.ID()),
		zap.Int("remaining", len(remaining)))
}

// RouteDisconnect 处理连接断开
// 同一连接可能加入多个文档会话，需扫描全部会话逐一移除
func (r *Registry) RouteDisconnect(connID string) {
	r.mu.Lock()
	type removal struct {
		session   *DocumentSession
		left      dto.ParticipantDTO
		remaining []dto.ParticipantDTO
		empty     bool
	}
	var removals []removal
	for documentID, s := range r.sessions {
		left, remaining, empty := s.Remove(connID)
		if left == nil {
			continue
		}
		if empty {
			delete(r.sessions, documentID)
		}
		removals = append(removals, removal{session: s, left: *left, remaining: remaining, empty: empty})
	}
	r.mu.Unlock()

	for _, rm := range removals {
		if !rm.empty {
			rm.session.Broadcast(dto.EventUserLeft, &dto.UserLeftMessage{
				User:         rm.left,
				Participants: rm.remaining,
			})
		}
		r.logger.Info("session left on disconnect",
			zap.Int64("documentId", rm.session.DocumentID()),
			zap.Int64("uid", rm.left.UID),
			zap.String("connId", connID))
	}
}
