// Package module 定义模拟后端的功能模块及其生命周期
package module

import (
	"context"

	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/internal/mockdb"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Env 模块共享的运行环境
type Env struct {
	DB     *mockdb.DB
	Issuer *middleware.TokenIssuer
	Logger *zap.Logger
}

// Module 模块接口
// 所有模块都必须实现此接口
type Module interface {
	// Name 获取模块名称
	Name() string

	// Description 获取模块描述
	Description() string

	// Initialize 初始化模块
	// 参数: ctx 上下文, env 共享环境
	// 返回值: error 错误信息
	Initialize(ctx context.Context, env *Env) error

	// RegisterRoutes 在 /api 路由组下注册路由
	// 参数: api gin路由组
	// 返回值: error 错误信息
	RegisterRoutes(api *gin.RouterGroup) error

	// HealthCheck 健康检查
	HealthCheck(ctx context.Context) error

	// Shutdown 关闭模块
	Shutdown(ctx context.Context) error
}

// Info 模块信息
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
