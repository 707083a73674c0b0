package module

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Manager 模块管理器
// 按注册顺序初始化与注册路由，按逆序关闭
type Manager struct {
	order   []string
	modules map[string]Module
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewManager 创建新的模块管理器
// logger: 日志记录器
// 返回值: *Manager 管理器实例
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		modules: make(map[string]Module),
		logger:  logger,
	}
}

// Register 注册模块
// 返回值: error 重名时返回错误
func (m *Manager) Register(mod Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := mod.Name()
	if _, exists := m.modules[name]; exists {
		return fmt.Errorf("module %s already registered", name)
	}

	m.modules[name] = mod
	m.order = append(m.order, name)
	m.logger.Info("Module registered", zap.String("name", name))
	return nil
}

// InitializeAll 初始化所有模块
func (m *Manager) InitializeAll(ctx context.Context, env *Env) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range m.order {
		if err := m.modules[name].Initialize(ctx, env); err != nil {
			return fmt.Errorf("failed to initialize module %s: %w", name, err)
		}
		m.logger.Info("Module initialized", zap.String("name", name))
	}
	return nil
}

// RegisterRoutes 注册所有模块的路由
func (m *Manager) RegisterRoutes(api *gin.RouterGroup) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range m.order {
		if err := m.modules[name].RegisterRoutes(api); err != nil {
			return fmt.Errorf("failed to register routes for module %s: %w", name, err)
		}
		m.logger.Info("Module routes registered", zap.String("name", name))
	}
	return nil
}

// Get 获取指定模块
func (m *Manager) Get(name string) (Module, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mod, exists := m.modules[name]
	return mod, exists
}

// List 列出所有模块
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Info, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, Info{Name: name, Description: m.modules[name].Description()})
	}
	return out
}

// HealthCheck 检查所有模块的健康状态
// 返回值: map[string]error 模块健康状态，nil表示健康
func (m *Manager) HealthCheck(ctx context.Context) map[string]error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := make(map[string]error, len(m.modules))
	for name, mod := range m.modules {
		health[name] = mod.HealthCheck(ctx)
	}
	return health
}

// ShutdownAll 关闭所有模块
func (m *Manager) ShutdownAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for i := len(m.order) - 1; i >= 0; i-- {
		name := m.order[i]
		if err := m.modules[name].Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("module %s: %w", name, err))
			m.logger.Error("Failed to shutdown module", zap.String("name", name), zap.Error(err))
			continue
		}
		m.logger.Info("Module shutdown", zap.String("name", name))
	}
	return errors.Join(errs...)
}
