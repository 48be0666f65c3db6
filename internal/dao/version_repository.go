package dao

import (
	"context"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/model"
	"github.com/haierkeys/collab-doc-service/pkg/timex"

	"gorm.io/gorm"
)

// versionRepository 实现 domain.DocumentVersionRepository 接口
type versionRepository struct {
	dao *Dao
}

// NewVersionRepository 创建 DocumentVersionRepository 实例
func NewVersionRepository(dao *Dao) domain.DocumentVersionRepository {
	return &versionRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *versionRepository) toDomain(m *model.DocumentVersion) *domain.DocumentVersion {
	if m == nil {
		return nil
	}
	return &domain.DocumentVersion{
		ID:                m.ID,
		DocumentID:        m.DocumentID,
		Content:           m.Content,
		ChangeDescription: m.ChangeDescription,
		AuthorUID:         m.AuthorUID,
		AuthorName:        m.AuthorName,
		Seq:               m.Seq,
		CreatedAt:         m.CreatedAt.Time(),
	}
}

// GetByID 根据版本ID与文档ID获取版本
func (r *versionRepository) GetByID(ctx context.Context, id, documentID int64) (*domain.DocumentVersion, error) {
	var m model.DocumentVersion
	err := r.dao.db.WithContext(ctx).
		Where("id = ? AND document_id = ?", id, documentID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建版本记录
// 调用方负责按文档串行化
func (r *versionRepository) Create(ctx context.Context, version *domain.DocumentVersion) (*domain.DocumentVersion, error) {
	m := &model.DocumentVersion{
		DocumentID:        version.DocumentID,
		Content:           version.Content,
		ChangeDescription: version.ChangeDescription,
		AuthorUID:         version.AuthorUID,
		AuthorName:        version.AuthorName,
		Seq:               version.Seq,
		CreatedAt:         timex.Time(version.CreatedAt),
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// ListByDocumentID 获取文档全部版本，按创建时间倒序
func (r *versionRepository) ListByDocumentID(ctx context.Context, documentID int64) ([]*domain.DocumentVersion, error) {
	var models []*model.DocumentVersion
	err := r.dao.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC, seq DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	versions := make([]*domain.DocumentVersion, 0, len(models))
	for _, m := range models {
		versions = append(versions, r.toDomain(m))
	}
	return versions, nil
}

// ListPageByDocumentID 分页获取文档版本列表，按创建时间倒序
func (r *versionRepository) ListPageByDocumentID(ctx context.Context, documentID int64, page, pageSize int) ([]*domain.DocumentVersion, int64, error) {
	q := r.dao.db.WithContext(ctx).
		Model(&model.DocumentVersion{}).
		Where("document_id = ?", documentID)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	offset := 0
	if page > 0 {
		offset = (page - 1) * pageSize
	}

	var models []*model.DocumentVersion
	err := q.Order("created_at DESC, seq DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	versions := make([]*domain.DocumentVersion, 0, len(models))
	for _, m := range models {
		versions = append(versions, r.toDomain(m))
	}
	return versions, count, nil
}

// CountByDocumentID 获取文档版本数量
func (r *versionRepository) CountByDocumentID(ctx context.Context, documentID int64) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).
		Model(&model.DocumentVersion{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}

// GetLatestAutoSnapshot 获取指定作者在文档上最近的自动快照
func (r *versionRepository) GetLatestAutoSnapshot(ctx context.Context, documentID, authorUID int64) (*domain.DocumentVersion, error) {
	var m model.DocumentVersion
	err := r.dao.db.WithContext(ctx).
		Where("document_id = ? AND author_uid = ? AND change_description LIKE ?",
			documentID, authorUID, "%"+domain.AutoSnapshotTag+"%").
		Order("created_at DESC, seq DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

// NextSeq 获取文档内下一个版本序号
func (r *versionRepository) NextSeq(ctx context.Context, documentID int64) (int64, error) {
	var m model.DocumentVersion
	err := r.dao.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("seq DESC").
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 1, nil
		}
		return 0, err
	}
	return m.Seq + 1, nil
}

// DeleteBeyondCap 淘汰容量上限之外的最旧版本，保留最近 keep 条
func (r *versionRepository) DeleteBeyondCap(ctx context.Context, documentID int64, keep int) error {
	if keep < 1 {
		return nil
	}

	var keepIDs []int64
	err := r.dao.db.WithContext(ctx).
		Model(&model.DocumentVersion{}).
		Where("document_id = ?", documentID).
		Order("created_at DESC, seq DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return err
	}
	if len(keepIDs) < keep {
		// 总数未超过上限，无需淘汰
		return nil
	}

	return r.dao.db.WithContext(ctx).
		Where("document_id = ? AND id NOT IN ?", documentID, keepIDs).
		Delete(&model.DocumentVersion{}).Error
}

// DeleteByDocumentID 删除文档的全部版本
func (r *versionRepository) DeleteByDocumentID(ctx context.Context, documentID int64) error {
	return r.dao.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.DocumentVersion{}).Error
}

// 确保 versionRepository 实现了 domain.DocumentVersionRepository 接口
var _ domain.DocumentVersionRepository = (*versionRepository)(nil)
