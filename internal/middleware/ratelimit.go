package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vera-byte/bookmandu/internal/config"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Decision 一次限流判定结果
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter 被拒绝时距窗口内最早请求过期的时间
	RetryAfter time.Duration
}

// RateLimiter 速率限制器接口
type RateLimiter interface {
	// Allow 记录一次请求并返回判定
	Allow(ctx context.Context, key string) (Decision, error)
	// Reset 重置指定key的限制
	Reset(ctx context.Context, key string) error
}

// slidingWindow 滑动窗口：清理过期记录、计数、未超限时记录本次请求
// 返回 {allowed, count, oldest_ms}
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local current = redis.call('ZCARD', key)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestScore = now
if oldest[2] then
	oldestScore = tonumber(oldest[2])
end

if current >= limit then
	return {0, current, oldestScore}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return {1, current + 1, oldestScore}
`)

// RedisRateLimiter Redis实现的速率限制器，多个代理实例共享计数
type RedisRateLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter 创建Redis速率限制器
// 参数:
//   - client: Redis客户端
//   - limit: 窗口内允许的请求数
//   - window: 时间窗口
//   - prefix: key前缀
//
// 返回值:
//   - *RedisRateLimiter: Redis速率限制器实例
func NewRedisRateLimiter(client redis.UniversalClient, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Allow 记录一次请求
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now().UnixMilli()
	res, err := slidingWindow.Run(ctx, r.client, []string{r.key(key)},
		now, r.window.Milliseconds(), r.limit, uuid.NewString()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	d := Decision{Allowed: res[0] == 1, Limit: r.limit, Remaining: r.limit - int(res[1])}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = time.Duration(res[2]+r.window.Milliseconds()-now) * time.Millisecond
	}
	return d, nil
}

// Reset 重置指定key的限制
func (r *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisRateLimiter) key(key string) string {
	return r.prefix + key
}

// MemoryRateLimiter 进程内滑动窗口限流器
type MemoryRateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	requests map[string][]time.Time
}

// NewMemoryRateLimiter 创建内存速率限制器
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:    limit,
		window:   window,
		now:      time.Now,
		requests: make(map[string][]time.Time),
	}
}

// Allow 记录一次请求
func (m *MemoryRateLimiter) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-m.window)

	kept := m.requests[key][:0]
	for _, at := range m.requests[key] {
		if at.After(windowStart) {
			kept = append(kept, at)
		}
	}

	d := Decision{Limit: m.limit}
	if len(kept) >= m.limit {
		m.requests[key] = kept
		if len(kept) > 0 {
			d.RetryAfter = kept[0].Add(m.window).Sub(now)
		}
		return d, nil
	}

	kept = append(kept, now)
	m.requests[key] = kept
	d.Allowed = true
	d.Remaining = m.limit - len(kept)
	return d, nil
}

// Reset 重置指定key的限制
func (m *MemoryRateLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.requests, key)
	m.mu.Unlock()
	return nil
}

// NoOpRateLimiter 无操作速率限制器（用于禁用限流时）
type NoOpRateLimiter struct{}

// Allow 总是允许请求
func (NoOpRateLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{Allowed: true, Limit: math.MaxInt32, Remaining: math.MaxInt32}, nil
}

// Reset 无操作
func (NoOpRateLimiter) Reset(context.Context, string) error { return nil }

// NewRateLimiter 按配置创建限流器
// 参数: cfg 限流配置
// 返回值: RateLimiter 限流器接口, error 错误信息
func NewRateLimiter(cfg config.RateLimitConfig) (RateLimiter, error) {
	if !cfg.Enabled {
		return NoOpRateLimiter{}, nil
	}
	if cfg.Rate <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", cfg.Rate)
	}
	window := time.Duration(cfg.Expiration) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	switch cfg.Type {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return NewRedisRateLimiter(client, cfg.Rate, window, "bookmandu:ratelimit:"), nil
	case "memory", "":
		return NewMemoryRateLimiter(cfg.Rate, window), nil
	default:
		return nil, fmt.Errorf("unsupported rate limiter type: %s", cfg.Type)
	}
}

// KeyFunc 生成限流key的函数类型
type KeyFunc func(c *gin.Context) string

// ClientIPKeyFunc 按客户端IP限流
func ClientIPKeyFunc(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// TokenKeyFunc 按Bearer令牌限流，未携带令牌时回退到IP
// 令牌只做摘要，不写入key明文
func TokenKeyFunc(c *gin.Context) string {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return ClientIPKeyFunc(c)
	}
	sum := sha256.Sum256([]byte(token))
	return "token:" + hex.EncodeToString(sum[:8])
}

// CombinedKeyFunc 组合多个key生成函数
func CombinedKeyFunc(funcs ...KeyFunc) KeyFunc {
	return func(c *gin.Context) string {
		keys := make([]string, len(funcs))
		for i, fn := range funcs {
			keys[i] = fn(c)
		}
		return strings.Join(keys, "|")
	}
}

// RateLimit 速率限制中间件
// 参数:
//   - limiter: 速率限制器
//   - keyFunc: key生成函数，nil时按IP
//   - logger: 日志记录器
//
// 返回值:
//   - gin.HandlerFunc: Gin中间件函数
func RateLimit(limiter RateLimiter, keyFunc KeyFunc, logger *zap.Logger) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = ClientIPKeyFunc
	}

	return func(c *gin.Context) {
		key := keyFunc(c)
		d, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			// 限流器故障时放行
			logger.Error("Rate limiter error", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			seconds := int(math.Ceil(d.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{Message: "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
