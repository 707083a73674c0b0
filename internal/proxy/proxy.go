// Package proxy 实现本地开发用的反向代理
//
// 代理把 /api/* 原样转发到后端，只改写目标主机，不参与生产部署。
package proxy

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/vera-byte/bookmandu/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PathPrefix 需要转发的路径前缀
const PathPrefix = "/api"

// Options 代理配置
type Options struct {
	Target      string
	AllowOrigin string
	Limiter     middleware.RateLimiter
	// Transport 为nil时使用跳过证书校验的默认传输
	Transport http.RoundTripper
}

// NewHandler 创建转发处理器
// 上游失败时返回 500 "Proxy Error"
func NewHandler(target string, transport http.RoundTripper, logger *zap.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse proxy target: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy target must be absolute, got %q", target)
	}
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		// 开发后端常用自签名证书
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		transport = t
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(u)
			pr.SetXForwarded()
			logger.Debug("Proxying request", zap.String("path", pr.Out.URL.Path))
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("Proxy Error", zap.String("path", r.URL.Path), zap.Error(err))
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Proxy Error"))
		},
	}
	return rp, nil
}

// NewRouter 创建代理路由
// 参数:
//   - opts: 代理配置
//   - logger: 日志记录器
//
// 返回值:
//   - *gin.Engine: 路由
//   - error: 目标地址非法
func NewRouter(opts Options, logger *zap.Logger) (*gin.Engine, error) {
	handler, err := NewHandler(opts.Target, opts.Transport, logger)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(opts.AllowOrigin))

	api := router.Group(PathPrefix)
	if opts.Limiter != nil {
		api.Use(middleware.RateLimit(opts.Limiter, middleware.CombinedKeyFunc(middleware.ClientIPKeyFunc, middleware.TokenKeyFunc), logger))
	}
	api.Any("/*path", gin.WrapH(handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "target": opts.Target})
	})
	return router, nil
}
