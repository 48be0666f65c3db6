// Package domain 定义领域模型和接口
package domain

import "context"

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)

	// UpdatePassword 更新用户密码
	UpdatePassword(ctx context.Context, password string, uid int64) error

	// GetAllUIDs 获取所有用户UID
	GetAllUIDs(ctx context.Context) ([]int64, error)
}

// DocumentRepository 文档仓储接口
type DocumentRepository interface {
	// GetByID 根据ID获取文档
	GetByID(ctx context.Context, id int64) (*Document, error)

	// Create 创建文档
	Create(ctx context.Context, doc *Document) (*Document, error)

	// Update 更新文档标题与内容
	Update(ctx context.Context, doc *Document) error

	// UpdateContent 更新文档内容与更新时间
	UpdateContent(ctx context.Context, id int64, content string) error

	// UpdateCollaborators 更新文档协作者集合
	UpdateCollaborators(ctx context.Context, id int64, collaborators []int64) error

	// Touch 仅更新文档更新时间
	Touch(ctx context.Context, id int64) error

	// Delete 删除文档
	Delete(ctx context.Context, id int64) error

	// ListByUser 分页获取用户可访问的文档列表（拥有或协作）
	ListByUser(ctx context.Context, uid int64, page, pageSize int) ([]*Document, int64, error)

	// ListAll 获取所有文档（备份任务使用）
	ListAll(ctx context.Context) ([]*Document, error)
}

// DocumentVersionRepository 文档版本仓储接口
type DocumentVersionRepository interface {
	// GetByID 根据版本ID与文档ID获取版本
	GetByID(ctx context.Context, id, documentID int64) (*DocumentVersion, error)

	// Create 创建版本记录
	Create(ctx context.Context, version *DocumentVersion) (*DocumentVersion, error)

	// ListByDocumentID 获取文档全部版本，按创建时间倒序
	ListByDocumentID(ctx context.Context, documentID int64) ([]*DocumentVersion, error)

	// ListPageByDocumentID 分页获取文档版本列表，按创建时间倒序
	ListPageByDocumentID(ctx context.Context, documentID int64, page, pageSize int) ([]*DocumentVersion, int64, error)

	// CountByDocumentID 获取文档版本数量
	CountByDocumentID(ctx context.Context, documentID int64) (int64, error)

	// GetLatestAutoSnapshot 获取指定作者在文档上最近的自动快照
	GetLatestAutoSnapshot(ctx context.Context, documentID, authorUID int64) (*DocumentVersion, error)

	// NextSeq 获取文档内下一个版本序号
	NextSeq(ctx context.Context, documentID int64) (int64, error)

	// DeleteBeyondCap 淘汰容量上限之外的最旧版本，保留最近 keep 条
	DeleteBeyondCap(ctx context.Context, documentID int64, keep int) error

	// DeleteByDocumentID 删除文档的全部版本
	DeleteByDocumentID(ctx context.Context, documentID int64) error
}
