package model

import (
	"github.com/haierkeys/collab-doc-service/pkg/timex"
)

// DocumentVersion 文档版本表模型，记录创建后不再修改
type DocumentVersion struct {
	ID                int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DocumentID        int64      `gorm:"column:document_id;index;not null;default:0" json:"documentId"`
	Content           string     `gorm:"column:content;type:text" json:"content"`
	ChangeDescription string     `gorm:"column:change_description;size:500;not null;default:''" json:"changeDescription"`
	AuthorUID         int64      `gorm:"column:author_uid;index;not null;default:0" json:"authorUid"`
	AuthorName        string     `gorm:"column:author_name;size:100;not null;default:''" json:"authorName"`
	Seq               int64      `gorm:"column:seq;not null;default:0" json:"seq"`
	CreatedAt         timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
}

// TableName 表名
func (DocumentVersion) TableName() string {
	return "document_version"
}
