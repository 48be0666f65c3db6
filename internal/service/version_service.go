package service

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/dto"
	"github.com/haierkeys/collab-doc-service/pkg/code"
	"github.com/haierkeys/collab-doc-service/pkg/timex"
	"github.com/haierkeys/collab-doc-service/pkg/writequeue"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VersionService 定义文档版本业务服务接口
// 版本账本不变量：按创建时间倒序、长度不超过上限、超限淘汰最旧条目
type VersionService interface {
	// Commit 提交一条版本记录并维护账本不变量
	// 调用方负责按文档串行化（会话层或写入队列）
	Commit(ctx context.Context, documentID int64, content, description string, author *domain.Principal) (*domain.DocumentVersion, error)

	// CommitManual 手工保存版本，绕过自动快照冷却，经写入队列串行执行
	CommitManual(ctx context.Context, uid int64, authorName string, params *dto.VersionCreateRequest) (*dto.VersionDTO, error)

	// List 分页获取版本列表
	List(ctx context.Context, uid int64, documentID int64, page, pageSize int) ([]*dto.VersionDTO, int64, error)

	// Get 获取版本详情（含内容快照）
	Get(ctx context.Context, uid int64, documentID, versionID int64) (*dto.VersionDetailDTO, error)

	// Find 获取版本领域模型，未找到返回 ErrorVersionNotFound
	Find(ctx context.Context, documentID, versionID int64) (*domain.DocumentVersion, error)

	// Compare 对比两个版本的内容差异
	Compare(ctx context.Context, uid int64, documentID, fromID, toID int64) (*dto.VersionCompareDTO, error)

	// MaxVersions 返回版本容量上限
	MaxVersions() int
}

// versionService 实现 VersionService 接口
type versionService struct {
	versionRepo  domain.DocumentVersionRepository
	documentRepo domain.DocumentRepository
	writeQueue   *writequeue.Manager
	maxVersions  int
	logger       *zap.Logger
}

// NewVersionService 创建 VersionService 实例
func NewVersionService(
	versionRepo domain.DocumentVersionRepository,
	documentRepo domain.DocumentRepository,
	writeQueue *writequeue.Manager,
	config *ServiceConfig,
	logger *zap.Logger,
) VersionService {
	maxVersions := domain.MaxVersions
	if config != nil && config.App.VersionMaxCount > 0 {
		maxVersions = config.App.VersionMaxCount
	}
	return &versionService{
		versionRepo:  versionRepo,
		documentRepo: documentRepo,
		writeQueue:   writeQueue,
		maxVersions:  maxVersions,
		logger:       logger,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *versionService) domainToDTO(v *domain.DocumentVersion) *dto.VersionDTO {
	if v == nil {
		return nil
	}
	return &dto.VersionDTO{
		ID:                v.ID,
		DocumentID:        v.DocumentID,
		ChangeDescription: v.ChangeDescription,
		IsAutoSnapshot:    v.IsAutoSnapshot(),
		AuthorUID:         v.AuthorUID,
		AuthorName:        v.AuthorName,
		CreatedAt:         timex.Time(v.CreatedAt),
	}
}

// Commit 提交一条版本记录并维护账本不变量
// 顺序：取序号、写入版本、淘汰超限最旧条目、更新文档更新时间
func (s *versionService) Commit(ctx context.Context, documentID int64, content, description string, author *domain.Principal) (*domain.DocumentVersion, error) {
	seq, err := s.versionRepo.NextSeq(ctx, documentID)
	if err != nil {
		return nil, code.ErrorVersionCreateFailed.WithDetails(err.Error())
	}

	version := &domain.DocumentVersion{
		DocumentID:        documentID,
		Content:           content,
		ChangeDescription: description,
		AuthorUID:         author.UID,
		AuthorName:        author.Name,
		Seq:               seq,
		CreatedAt:         time.Now(),
	}

	created, err := s.versionRepo.Create(ctx, version)
	if err != nil {
		return nil, code.ErrorPersistenceWrite.WithDetails(err.Error())
	}

	if err := s.versionRepo.DeleteBeyondCap(ctx, documentID, s.maxVersions); err != nil {
		// 淘汰失败不影响本次提交，下次提交会重试
		s.logger.Warn("version cap enforcement failed",
			zap.Int64("documentId", documentID),
			zap.Error(err))
	}

	if err := s.documentRepo.Touch(ctx, documentID); err != nil {
		s.logger.Warn("document touch failed after version commit",
			zap.Int64("documentId", documentID),
			zap.Error(err))
	}

	return created, nil
}

// CommitManual 手工保存版本
// 描述为空时使用默认的手工保存描述
func (s *versionService) CommitManual(ctx context.Context, uid int64, authorName string, params *dto.VersionCreateRequest) (*dto.VersionDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, params.DocumentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDocumentNotFound
		}
		return nil, code.ErrorDBQuery
	}

	if !CanWrite(doc, uid) {
		return nil, code.ErrorDocumentAccessDenied
	}

	description := params.ChangeDescription
	if description == "" {
		description = domain.ManualSaveTag
	}

	author := &domain.Principal{UID: uid, Name: authorName}

	var created *domain.DocumentVersion
	err = s.writeQueue.Execute(ctx, params.DocumentID, func(ctx context.Context) error {
		var commitErr error
		created, commitErr = s.Commit(ctx, params.DocumentID, doc.Content, description, author)
		return commitErr
	})
	if err != nil {
		var c *code.Code
		if errors.As(err, &c) {
			return nil, c
		}
		return nil, code.ErrorVersionCreateFailed.WithDetails(err.Error())
	}

	return s.domainToDTO(created), nil
}

// List 分页获取版本列表
func (s *versionService) List(ctx context.Context, uid int64, documentID int64, page, pageSize int) ([]*dto.VersionDTO, int64, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, code.ErrorDocumentNotFound
		}
		return nil, 0, code.ErrorDBQuery
	}
	if !CanRead(doc, uid) {
		return nil, 0, code.ErrorDocumentAccessDenied
	}

	versions, count, err := s.versionRepo.ListPageByDocumentID(ctx, documentID, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorDBQuery
	}

	results := make([]*dto.VersionDTO, 0, len(versions))
	for _, v := range versions {
		results = append(results, s.domainToDTO(v))
	}
	return results, count, nil
}

// Get 获取版本详情
func (s *versionService) Get(ctx context.Context, uid int64, documentID, versionID int64) (*dto.VersionDetailDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDocumentNotFound
		}
		return nil, code.ErrorDBQuery
	}
	if !CanRead(doc, uid) {
		return nil, code.ErrorDocumentAccessDenied
	}

	version, err := s.Find(ctx, documentID, versionID)
	if err != nil {
		return nil, err
	}

	return &dto.VersionDetailDTO{
		VersionDTO: *s.domainToDTO(version),
		Content:    version.Content,
	}, nil
}

// Find 获取版本领域模型
func (s *versionService) Find(ctx context.Context, documentID, versionID int64) (*domain.DocumentVersion, error) {
	version, err := s.versionRepo.GetByID(ctx, versionID, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorVersionNotFound
		}
		return nil, code.ErrorDBQuery
	}
	return version, nil
}

// Compare 对比两个版本的内容差异，输出高亮 HTML
func (s *versionService) Compare(ctx context.Context, uid int64, documentID, fromID, toID int64) (*dto.VersionCompareDTO, error) {
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorDocumentNotFound
		}
		return nil, code.ErrorDBQuery
	}
	if !CanRead(doc, uid) {
		return nil, code.ErrorDocumentAccessDenied
	}

	from, err := s.Find(ctx, documentID, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.Find(ctx, documentID, toID)
	if err != nil {
		return nil, err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(from.Content, to.Content, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	return &dto.VersionCompareDTO{
		DocumentID: documentID,
		FromID:     from.ID,
		ToID:       to.ID,
		DiffHTML:   dmp.DiffPrettyHtml(diffs),
		FromAt:     timex.Time(from.CreatedAt),
		ToAt:       timex.Time(to.CreatedAt),
	}, nil
}

// MaxVersions 返回版本容量上限
func (s *versionService) MaxVersions() int {
	return s.maxVersions
}

// 确保 versionService 实现了 VersionService 接口
var _ VersionService = (*versionService)(nil)
