package dao

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/haierkeys/collab-doc-service/internal/domain"
	"github.com/haierkeys/collab-doc-service/internal/model"
	"github.com/haierkeys/collab-doc-service/pkg/timex"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// documentRepository 实现 domain.DocumentRepository 接口
type documentRepository struct {
	dao *Dao
}

// NewDocumentRepository 创建 DocumentRepository 实例
func NewDocumentRepository(dao *Dao) domain.DocumentRepository {
	return &documentRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *documentRepository) toDomain(m *model.Document) *domain.Document {
	if m == nil {
		return nil
	}
	var collaborators []int64
	if m.Collaborators != "" {
		if err := json.Unmarshal([]byte(m.Collaborators), &collaborators); err != nil {
			r.dao.Logger().Warn("invalid collaborators payload",
				zap.Int64("documentId", m.ID),
				zap.Error(err))
		}
	}
	return &domain.Document{
		ID:            m.ID,
		Title:         m.Title,
		Content:       m.Content,
		OwnerUID:      m.OwnerUID,
		Collaborators: collaborators,
		CreatedAt:     m.CreatedAt.Time(),
		UpdatedAt:     m.UpdatedAt.Time(),
	}
}

func marshalCollaborators(collaborators []int64) string {
	if len(collaborators) == 0 {
		return "[]"
	}
	b, err := json.Marshal(collaborators)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// GetByID 根据ID获取文档
func (r *documentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	var m model.Document
	err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建文档
func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	now := timex.Now()
	m := &model.Document{
		Title:         doc.Title,
		Content:       doc.Content,
		OwnerUID:      doc.OwnerUID,
		Collaborators: marshalCollaborators(doc.Collaborators),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新文档标题与内容
func (r *documentRepository) Update(ctx context.Context, doc *domain.Document) error {
	return r.dao.ExecuteWrite(ctx, doc.ID, func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Model(&model.Document{}).
			Where("id = ?", doc.ID).
			Updates(map[string]any{
				"title":      doc.Title,
				"content":    doc.Content,
				"updated_at": timex.Now(),
			}).Error
	})
}

// UpdateContent 更新文档内容与更新时间
// 调用方负责按文档串行化，此处直接落库
func (r *documentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":    content,
			"updated_at": timex.Now(),
		}).Error
}

// Touch 仅更新文档更新时间
// 调用方负责按文档串行化
func (r *documentRepository) Touch(ctx context.Context, id int64) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ?", id).
		Update("updated_at", timex.Now()).Error
}

// UpdateCollaborators 更新文档协作者集合
func (r *documentRepository) UpdateCollaborators(ctx context.Context, id int64, collaborators []int64) error {
	return r.dao.ExecuteWrite(ctx, id, func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Model(&model.Document{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"collaborators": marshalCollaborators(collaborators),
				"updated_at":    timex.Now(),
			}).Error
	})
}

// Delete 删除文档
func (r *documentRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.ExecuteWrite(ctx, id, func(db *gorm.DB) error {
		return db.WithContext(ctx).Where("id = ?", id).Delete(&model.Document{}).Error
	})
}

// ListByUser 分页获取用户可访问的文档列表（拥有或协作）
func (r *documentRepository) ListByUser(ctx context.Context, uid int64, page, pageSize int) ([]*domain.Document, int64, error) {
	// 协作者以 JSON 数组存储，用边界匹配避免 uid=1 命中 uid=11
	q := r.dao.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("owner_uid = ? OR collaborators LIKE ? OR collaborators LIKE ? OR collaborators LIKE ? OR collaborators = ?",
			uid,
			"[%,"+int64Str(uid)+",%]",
			"["+int64Str(uid)+",%",
			"%,"+int64Str(uid)+"]",
			"["+int64Str(uid)+"]",
		)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var models []*model.Document
	offset := 0
	if page > 0 {
		offset = (page - 1) * pageSize
	}
	err := q.Order("updated_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	docs := make([]*domain.Document, 0, len(models))
	for _, m := range models {
		docs = append(docs, r.toDomain(m))
	}
	return docs, count, nil
}

// ListAll 获取所有文档（备份任务使用）
func (r *documentRepository) ListAll(ctx context.Context) ([]*domain.Document, error) {
	var models []*model.Document
	if err := r.dao.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	docs := make([]*domain.Document, 0, len(models))
	for _, m := range models {
		docs = append(docs, r.toDomain(m))
	}
	return docs, nil
}

func int64Str(v int64) string {
	return strconv.FormatInt(v, 10)
}

// 确保 documentRepository 实现了 domain.DocumentRepository 接口
var _ domain.DocumentRepository = (*documentRepository)(nil)
