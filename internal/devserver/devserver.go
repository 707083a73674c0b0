// Package devserver 组装本地模拟后端：内存数据、模块路由与健康检查
package devserver

import (
	"context"
	"net"
	"net/http"

	"github.com/vera-byte/bookmandu/internal/config"
	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/module"
	"github.com/vera-byte/bookmandu/internal/server"
	"github.com/vera-byte/bookmandu/modules/auth"
	"github.com/vera-byte/bookmandu/modules/catalog"
	"github.com/vera-byte/bookmandu/modules/commerce"
	"github.com/vera-byte/bookmandu/modules/engagement"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server 模拟后端
type Server struct {
	cfg     config.MockConfig
	db      *mockdb.DB
	manager *module.Manager
	router  *gin.Engine
	logger  *zap.Logger
}

// New 创建模拟后端并写入种子数据
// 参数:
//   - ctx: 初始化上下文
//   - cfg: 模拟后端配置
//   - allowOrigin: 允许跨域的前端地址
//   - logger: 日志记录器
//
// 返回值:
//   - *Server: 服务实例
//   - error: 模块初始化失败
func New(ctx context.Context, cfg config.MockConfig, allowOrigin string, logger *zap.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	db := mockdb.New()
	if err := db.Seed(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		db:      db,
		manager: module.NewManager(logger.Named("modules")),
		logger:  logger,
	}

	for _, mod := range []module.Module{auth.New(), catalog.New(), commerce.New(), engagement.New()} {
		if err := s.manager.Register(mod); err != nil {
			return nil, err
		}
	}

	env := &module.Env{
		DB:     db,
		Issuer: middleware.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Logger: logger,
	}
	if err := s.manager.InitializeAll(ctx, env); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(allowOrigin))
	router.GET("/health", s.health)
	router.GET("/modules", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.manager.List())
	})
	if err := s.manager.RegisterRoutes(router.Group("/api")); err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

// Handler HTTP处理器，测试中可直接挂到 httptest.Server
func (s *Server) Handler() http.Handler { return s.router }

// Routes 已注册的路由
func (s *Server) Routes() gin.RoutesInfo { return s.router.Routes() }

// DB 底层内存数据库
func (s *Server) DB() *mockdb.DB { return s.db }

// Addr 监听地址
func (s *Server) Addr() string { return net.JoinHostPort(s.cfg.Host, s.cfg.Port) }

// Run 启动服务直至ctx结束，随后关闭全部模块
func (s *Server) Run(ctx context.Context) error {
	err := server.Run(ctx, s.Addr(), s.router, s.logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()
	if serr := s.manager.ShutdownAll(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	modules := make(map[string]string)
	for name, err := range s.manager.HealthCheck(c.Request.Context()) {
		if err != nil {
			status = http.StatusServiceUnavailable
			modules[name] = err.Error()
			continue
		}
		modules[name] = "healthy"
	}
	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "modules": modules})
}
