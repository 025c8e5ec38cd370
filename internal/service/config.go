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
	RegisterIsEnable bool   // Whether registration is enabled // 注册是否启用
	ResetPasswordURL string // Reset page the mailed token is appended to // 重置密码页面地址，邮件中的 Token 追加在其后
}

// AppServiceConfig app service configuration
// AppServiceConfig 应用服务配置
type AppServiceConfig struct {
	SoftDeleteRetentionTime string // Soft delete retention time (e.g., 7d, 24h, 30m, 0/empty for no cleanup) // 软删除保留时间（支持格式：7d、24h、30m、0 或空表示不自动清理）
	ViewFlushInterval       string // Share view counter flush interval, default 5m // 分享访问计数落库间隔，默认 5m
	ShareTokenLength        int    // Share token length, default 32 // 分享 Token 长度，默认 32
}
