// Package model 定义数据库模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 按模型名执行自动迁移
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "User":
		return db.AutoMigrate(User{})
	case "Document":
		return db.AutoMigrate(Document{})
	case "DocumentVersion":
		return db.AutoMigrate(DocumentVersion{})
	}
	return nil
}

// AutoMigrateAll 迁移全部模型
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(User{}, Document{}, DocumentVersion{})
}
