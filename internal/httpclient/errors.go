package httpclient

import (
	"errors"
	"fmt"
)

// ErrSessionInvalidated 后端返回401，本地会话已被销毁
var ErrSessionInvalidated = errors.New("session invalidated")

// ErrNotImplemented 后端未提供该接口
var ErrNotImplemented = errors.New("endpoint not implemented in backend")

// Kind 错误分类
type Kind int

const (
	// KindTransport 网络或传输层失败
	KindTransport Kind = iota + 1
	// KindUnauthorized 401，已全局处理
	KindUnauthorized
	// KindClient 4xx 业务或校验错误，消息原样展示
	KindClient
	// KindServer 5xx
	KindServer
	// KindMalformed 响应无法解析或未通过校验
	KindMalformed
	// KindInvalid 请求参数未通过本地校验，未发出请求
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	case KindInvalid:
		return "invalid"
	}
	return "unknown"
}

// APIError 资源服务统一错误
// Message 为展示给用户的文本：4xx 取后端 message，其余取操作的默认文案
type APIError struct {
	Op      string
	Method  string
	Path    string
	Status  int
	Kind    Kind
	Message string
	// Detail 原始错误信息，仅用于日志
	Detail string
	cause  error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.cause }

// String 带上下文的调试输出
func (e *APIError) String() string {
	return fmt.Sprintf("%s %s: %s (kind=%s status=%d detail=%q)", e.Method, e.Path, e.Message, e.Kind, e.Status, e.Detail)
}

// KindOf 取错误分类，非APIError返回0
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsUnauthorized 是否为401导致的失败
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrSessionInvalidated) || KindOf(err) == KindUnauthorized
}
