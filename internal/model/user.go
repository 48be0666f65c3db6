package model

import (
	"github.com/haierkeys/collab-doc-service/pkg/timex"
)

// User 用户表模型
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Email     string     `gorm:"column:email;index;size:255;not null;default:''" json:"email"`
	Nickname  string     `gorm:"column:nickname;size:100;not null;default:''" json:"nickname"`
	Password  string     `gorm:"column:password;size:255;not null;default:''" json:"-"`
	Avatar    string     `gorm:"column:avatar;size:500;not null;default:''" json:"avatar"`
	IsDeleted int64      `gorm:"column:is_deleted;not null;default:0" json:"isDeleted"`
	CreatedAt timex.Time `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
	DeletedAt timex.Time `gorm:"column:deleted_at" json:"deletedAt"`
}

// TableName 表名
func (User) TableName() string {
	return "user"
}
