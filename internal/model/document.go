package model

import (
	"github.com/haierkeys/collab-doc-service/pkg/timex"
)

// Document 文档表模型
// Collaborators 以 JSON 数组字符串存储协作者 UID 集合
type Document struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title         string     `gorm:"column:title;size:500;not null;default:''" json:"title"`
	Content       string     `gorm:"column:content;type:text" json:"content"`
	OwnerUID      int64      `gorm:"column:owner_uid;index;not null;default:0" json:"ownerUid"`
	Collaborators string     `gorm:"column:collaborators;type:text" json:"collaborators"`
	CreatedAt     timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt     timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
}

// TableName 表名
func (Document) TableName() string {
	return "document"
}
