// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User UserServiceConfig // User related config // 用户相关配置
	App  AppServiceConfig  // App related config // 应用相关配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable bool // Whether registration is enabled // 注册是否启用
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	// VersionMaxCount 每个文档保留的最大版本数，0 使用默认值
	VersionMaxCount int
	// SnapshotCooldown 自动快照冷却时间（支持格式：30m、1h），空使用默认值
	SnapshotCooldown string
	// BackupIsEnable 定时备份是否启用
	BackupIsEnable bool
}
