package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL 后端默认地址
const DefaultBaseURL = "http://localhost:5036"

// HeaderRequestID 请求追踪头
const HeaderRequestID = "X-Request-ID"

// TokenSource 请求拦截器的令牌来源
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config HTTP客户端配置
type Config struct {
	BaseURL string
	// Timeout 为0时使用传输层默认值
	Timeout   time.Duration
	Transport http.RoundTripper
}

// SessionInvalidatedEvent 401响应触发的会话失效事件
type SessionInvalidatedEvent struct {
	Method    string
	URL       string
	RequestID string
	At        time.Time
}

// Handler 会话失效事件处理函数
type Handler func(ctx context.Context, ev SessionInvalidatedEvent)

// Client 全局共享的请求发送器
type Client struct {
	rc       *resty.Client
	baseURL  string
	tokens   TokenSource
	logger   *zap.Logger
	validate *validator.Validate

	mu       sync.RWMutex
	handlers []Handler
}

// New 创建HTTP客户端
// 参数:
//   - cfg: 客户端配置
//   - tokens: 令牌来源，可为nil
//   - logger: 日志记录器
//
// 返回值:
//   - *Client: 客户端实例
func New(cfg Config, tokens TokenSource, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// 携带凭据：cookie 在请求间传递
	jar, _ := cookiejar.New(nil)

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetCookieJar(jar)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.Transport != nil {
		rc.SetTransport(cfg.Transport)
	}

	c := &Client{
		rc:       rc,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:   tokens,
		logger:   logger,
		validate: validator.New(),
	}
	rc.OnBeforeRequest(c.authorize)
	rc.OnAfterResponse(c.intercept)
	return c
}

// BaseURL 后端地址
func (c *Client) BaseURL() string { return c.baseURL }

// OnSessionInvalidated 注册会话失效处理器
// 处理器在调用方收到错误之前同步执行
func (c *Client) OnSessionInvalidated(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// authorize 请求拦截器：注入Bearer令牌与请求ID
func (c *Client) authorize(_ *resty.Client, r *resty.Request) error {
	if c.tokens != nil {
		token, err := c.tokens.Token(r.Context())
		if err != nil {
			c.logger.Error("Request error", zap.Error(err))
			return fmt.Errorf("read session token: %w", err)
		}
		if token != "" {
			r.SetHeader("Authorization", "Bearer "+token)
		}
	}
	if r.Header.Get(HeaderRequestID) == "" {
		r.SetHeader(HeaderRequestID, uuid.NewString())
	}
	return nil
}

// intercept 响应拦截器：401发布会话失效事件，其余状态原样透传
func (c *Client) intercept(_ *resty.Client, resp *resty.Response) error {
	if resp.StatusCode() != http.StatusUnauthorized {
		return nil
	}

	ev := SessionInvalidatedEvent{
		Method:    resp.Request.Method,
		URL:       resp.Request.URL,
		RequestID: resp.Request.Header.Get(HeaderRequestID),
		At:        time.Now(),
	}
	c.logger.Warn("Unauthorized response, invalidating session",
		zap.String("method", ev.Method),
		zap.String("url", ev.URL),
		zap.String("request_id", ev.RequestID))

	c.mu.RLock()
	handlers := make([]Handler, len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.RUnlock()

	for _, h := range handlers {
		h(resp.Request.Context(), ev)
	}
	return ErrSessionInvalidated
}

// File 上传文件
type File struct {
	Param  string
	Name   string
	Reader io.Reader
}

// Call 一次后端调用
type Call struct {
	// Op 失败时的默认提示，例如 "Failed to fetch books"
	Op     string
	Method string
	Path   string
	Query  map[string]string
	Body   interface{}
	// Result 成功时的解码目标，可为nil
	Result interface{}
	File   *File
}

// Do 发送一次请求并归一化错误
// 每次调用恰好一个HTTP请求，无重试
func (c *Client) Do(ctx context.Context, call Call) error {
	if call.Body != nil {
		if err := c.validateValue(call.Body); err != nil {
			return &APIError{Op: call.Op, Method: call.Method, Path: call.Path, Kind: KindInvalid, Message: err.Error(), Detail: err.Error(), cause: err}
		}
	}

	r := c.rc.R().
		SetContext(ctx).
		SetError(&model.ErrorResponse{})
	if len(call.Query) > 0 {
		r.SetQueryParams(call.Query)
	}
	if call.Body != nil {
		r.SetBody(call.Body)
	}
	if call.File != nil {
		r.SetFileReader(call.File.Param, call.File.Name, call.File.Reader)
	}
	if call.Result != nil {
		r.SetResult(call.Result)
	}

	resp, err := r.Execute(call.Method, call.Path)
	if apiErr := c.classify(call, resp, err); apiErr != nil {
		return apiErr
	}

	if call.Result != nil {
		if err := c.validateValue(call.Result); err != nil {
			c.logger.Warn("Malformed response", zap.String("path", call.Path), zap.Error(err))
			return &APIError{Op: call.Op, Method: call.Method, Path: call.Path, Status: resp.StatusCode(), Kind: KindMalformed, Message: call.Op, Detail: err.Error(), cause: err}
		}
	}
	return nil
}

func (c *Client) classify(call Call, resp *resty.Response, err error) *APIError {
	base := APIError{Op: call.Op, Method: call.Method, Path: call.Path, Message: call.Op}

	if resp == nil || resp.RawResponse == nil {
		if err == nil {
			err = errors.New("no response")
		}
		c.logger.Error("Transport failure", zap.String("method", call.Method), zap.String("path", call.Path), zap.Error(err))
		base.Kind = KindTransport
		base.Detail = err.Error()
		base.cause = err
		return &base
	}

	status := resp.StatusCode()
	base.Status = status
	backendMsg := ""
	if e, ok := resp.Error().(*model.ErrorResponse); ok && e != nil {
		backendMsg = strings.TrimSpace(e.Message)
	}

	switch {
	case status == http.StatusUnauthorized:
		base.Kind = KindUnauthorized
		if backendMsg != "" {
			base.Message = backendMsg
		}
		base.Detail = backendMsg
		base.cause = ErrSessionInvalidated
		return &base
	case status >= 500:
		c.logger.Warn("Server error", zap.String("path", call.Path), zap.Int("status", status), zap.String("message", backendMsg))
		base.Kind = KindServer
		base.Detail = backendMsg
		return &base
	case status >= 400:
		c.logger.Warn("Request rejected", zap.String("path", call.Path), zap.Int("status", status), zap.String("message", backendMsg))
		base.Kind = KindClient
		if backendMsg != "" {
			base.Message = backendMsg
		}
		base.Detail = backendMsg
		return &base
	}

	if err != nil {
		// 2xx但解码失败
		base.Kind = KindMalformed
		base.Detail = err.Error()
		base.cause = err
		return &base
	}
	return nil
}

// validateValue 校验结构体或结构体切片
func (c *Client) validateValue(v interface{}) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return c.validate.Struct(rv.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := c.validateValue(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}
