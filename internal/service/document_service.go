package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	"github.com/haierkeys/collab-doc-service/pkg/timex"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// DocumentService 定义文档业务服务接口
type DocumentService interface {
	// Create 创建文档
	Create(ctx context.Context, uid int64, params *dto.DocumentCreateRequest) (*dto.DocumentDTO, error)

	// Get 获取文档详情
	Get(ctx context.Context, uid int64, id int64) (*dto.DocumentDTO, error)

	// GetForAccess 获取文档领域模型并校验读权限（会话层使用）
	GetForAccess(ctx context.Context, uid int64, id int64) (*domain.Document, error)

	// Update 更新文档标题与内容
	Update(ctx context.Context, uid int64, params *dto.DocumentUpdateRequest) error

	// Delete 删除文档及其版本历史
	Delete(ctx context.Context, uid int64, id int64) error

	// List 分页获取用户可访问的文档列表
	List(ctx context.Context, uid int64, page, pageSize int) ([]*dto.DocumentListItemDTO, int64, error)

	// ListCollaborators 获取文档协作者列表
	ListCollaborators(ctx context.Context, uid int64, id int64) ([]*dto.CollaboratorDTO, error)

	// AddCollaborator 按邮箱添加协作者，仅所有者可操作
	AddCollaborator(ctx context.Context, uid int64, params *dto.CollaboratorAddRequest) (*dto.CollaboratorDTO, error)

	// RemoveCollaborator 移除协作者，仅所有者可操作
	RemoveCollaborator(ctx context.Context, uid int64, params *dto.CollaboratorRemoveRequest) error
}

// documentService 实现 DocumentService 接口
type documentService struct {
	documentRepo domain.DocumentRepository
	versionRepo  domain.DocumentVersionRepository
	userRepo     domain.UserRepository
	logger       *zap.Logger
	sf           singleflight.Group
}

// NewDocumentService 创建 DocumentService 实例
func NewDocumentService(
	documentRepo domain.DocumentRepository,
	versionRepo domain.DocumentVersionRepository,
	userRepo domain.UserRepository,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		versionRepo:  versionRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *documentService) domainToDTO(doc *domain.Document, versionCount int64) *dto.DocumentDTO {
	if doc == nil {
		return nil
	}
	collaborators := doc.Collaborators
	if collaborators == nil {
		collaborators = []int64{}
	}
	return &dto.DocumentDTO{
		ID:            doc.ID,
		Title:         doc.Title,
		Content:       doc.Content,
		OwnerUID:      doc.OwnerUID,
		Collaborators: collaborators,
		VersionCount:  versionCount,
		CreatedAt:     timex.Time(doc.CreatedAt),
		UpdatedAt:     timex.Time(doc.UpdatedAt),
	}
}

// getDocument 获取文档，未找到返回 ErrorDocumentNotFound
func (s *documentService) getDocument(ctx context.Context, id int64) (*domain.Document, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDocumentNotFound
		}
		return nil, code.ErrorDBQuery
	}
	return doc, nil
}

// Create 创建文档
func (s *documentService) Create(ctx context.Context, uid int64, params *dto.DocumentCreateRequest) (*dto.DocumentDTO, error) {
	doc := &domain.Document{
		Title:    params.Title,
		Content:  params.Content,
		OwnerUID: uid,
	}

	created, err := s.documentRepo.Create(ctx, doc)
	if err != nil {
		return nil, code.ErrorDocumentCreateFailed.WithDetails(err.Error())
	}

	s.logger.Info("document created",
		zap.Int64("documentId", created.ID),
		zap.Int64("uid", uid))

	return s.domainToDTO(created, 0), nil
}

// Get 获取文档详情
func (s *documentService) Get(ctx context.Context, uid int64, id int64) (*dto.DocumentDTO, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanRead(doc, uid) {
		return nil, code.ErrorDocumentAccessDenied
	}

	count, err := s.versionRepo.CountByDocumentID(ctx, id)
	if err != nil {
		return nil, code.ErrorDBQuery
	}

	return s.domainToDTO(doc, count), nil
}

// GetForAccess 获取文档领域模型并校验读权限
// 使用 Singleflight 合并同一文档的并发加载，权限校验仍按调用方分别执行
func (s *documentService) GetForAccess(ctx context.Context, uid int64, id int64) (*domain.Document, error) {
	key := fmt.Sprintf("document_get_%d", id)

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.getDocument(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	doc := result.(*domain.Document)
	if !CanRead(doc, uid) {
		return nil, code.ErrorDocumentAccessDenied
	}
	return doc, nil
}

// Update 更新文档标题与内容
func (s *documentService) Update(ctx context.Context, uid int64, params *dto.DocumentUpdateRequest) error {
	doc, err := s.getDocument(ctx, params.ID)
	if err != nil {
		return err
	}
	if !CanWrite(doc, uid) {
		return code.ErrorDocumentAccessDenied
	}

	if params.Title != "" {
		doc.Title = params.Title
	}
	doc.Content = params.Content

	if err := s.documentRepo.Update(ctx, doc); err != nil {
		return code.ErrorDocumentModifyFailed.WithDetails(err.Error())
	}
	return nil
}

// Delete 删除文档及其版本历史，仅所有者可操作
func (s *documentService) Delete(ctx context.Context, uid int64, id int64) error {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(doc, uid) {
		return code.ErrorDocumentAccessDenied
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return code.ErrorDocumentDeleteFailed.WithDetails(err.Error())
	}
	if err := s.versionRepo.DeleteByDocumentID(ctx, id); err != nil {
		s.logger.Warn("failed to delete document versions",
			zap.Int64("documentId", id),
			zap.Error(err))
	}

	s.logger.Info("document deleted",
		zap.Int64("documentId", id),
		zap.Int64("uid", uid))
	return nil
}

// List 分页获取用户可访问的文档列表
func (s *documentService) List(ctx context.Context, uid int64, page, pageSize int) ([]*dto.DocumentListItemDTO, int64, error) {
	docs, count, err := s.documentRepo.ListByUser(ctx, uid, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery
	}

	results := make([]*dto.DocumentListItemDTO, 0, len(docs))
	for _, doc := range docs {
		results = append(results, &dto.DocumentListItemDTO{
			ID:        doc.ID,
			Title:     doc.Title,
			OwnerUID:  doc.OwnerUID,
			IsOwner:   doc.OwnerUID == uid,
			CreatedAt: timex.Time(doc.CreatedAt),
			UpdatedAt: timex.Time(doc.UpdatedAt),
		})
	}
	return results, count, nil
}

// ListCollaborators 获取文档协作者列表
func (s *documentService) ListCollaborators(ctx context.Context, uid int64, id int64) ([]*dto.CollaboratorDTO, error) {
	doc, err := s.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanRead(doc, uid) {
		return nil, code.ErrorDocumentAccessDenied
	}

	results := make([]*dto.CollaboratorDTO, 0, len(doc.Collaborators))
	for _, cuid := range doc.Collaborators {
		user, err := s.userRepo.GetByUID(ctx, cuid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, code.ErrorDBQuery
		}
		results = append(results, &dto.CollaboratorDTO{
			UID:      user.UID,
			Email:    user.Email,
			Nickname: user.Nickname,
			Avatar:   user.Avatar,
		})
	}
	return results, nil
}

// AddCollaborator 按邮箱添加协作者
func (s *documentService) AddCollaborator(ctx context.Context, uid int64, params *dto.CollaboratorAddRequest) (*dto.CollaboratorDTO, error) {
	doc, err := s.getDocument(ctx, params.DocumentID)
	if err != nil {
		return nil, err
	}
	if !CanManageCollaborators(doc, uid) {
		return nil, code.ErrorDocumentAccessDenied
	}

	user, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserNotExists
		}
		return nil, code.ErrorDBQuery
	}

	if !doc.AddCollaborator(user.UID) {
		return nil, code.ErrorCollaboratorModify.WithDetails("user is already a collaborator or the owner")
	}

	if err := s.documentRepo.UpdateCollaborators(ctx, doc.ID, doc.Collaborators); err != nil {
		return nil, code.ErrorCollaboratorModify.WithDetails(err.Error())
	}

	return &dto.CollaboratorDTO{
		UID:      user.UID,
		Email:    user.Email,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	}, nil
}

// RemoveCollaborator 移除协作者
func (s *documentService) RemoveCollaborator(ctx context.Context, uid int64, params *dto.CollaboratorRemoveRequest) error {
	doc, err := s.getDocument(ctx, params.DocumentID)
	if err != nil {
		return err
	}
	if !CanManageCollaborators(doc, uid) {
		return code.ErrorDocumentAccessDenied
	}

	if !doc.RemoveCollaborator(params.UID) {
		return code.ErrorCollaboratorModify.WithDetails("user is not a collaborator")
	}

	if err := s.documentRepo.UpdateCollaborators(ctx, doc.ID, doc.Collaborators); err != nil {
		return code.ErrorCollaboratorModify.WithDetails(err.Error())
	}
	return nil
}

// 确保 documentService 实现了 DocumentService 接口
var _ DocumentService = (*documentService)(nil)
