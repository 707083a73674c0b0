package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vera-byte/bookmandu/pkg/model"

	"go.uber.org/zap"
)

// Session 当前登录用户的本地缓存
// 四个字段要么同时存在，要么同时缺失
type Session struct {
	Token    string     `json:"token"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	UserID   string     `json:"userId"`
}

// Complete 四个字段是否齐全且角色合法
func (s Session) Complete() bool {
	return s.Token != "" && s.Username != "" && s.UserID != "" && s.Role.Valid()
}

// FromLogin 由登录响应构造会话
func FromLogin(resp *model.LoginResponse) Session {
	return Session{
		Token:    resp.Token,
		Username: resp.Username,
		Role:     resp.Role,
		UserID:   resp.UserID,
	}
}

// ErrIncomplete 会话字段不完整
var ErrIncomplete = errors.New("session must carry token, username, role and userId")

// EventKind 会话事件类型
type EventKind int

const (
	EventLogin EventKind = iota + 1
	EventLogout
	EventInvalidated
)

func (k EventKind) String() string {
	switch k {
	case EventLogin:
		return "login"
	case EventLogout:
		return "logout"
	case EventInvalidated:
		return "invalidated"
	}
	return "unknown"
}

// Event 会话变更事件
type Event struct {
	Kind     EventKind
	Username string
	Reason   string
}

// Context 进程级会话上下文
// 启动时从 Store 恢复，login/logout/Invalidate 是仅有的三个写入方
type Context struct {
	store  Store
	logger *zap.Logger

	mu        sync.Mutex
	user      *Session
	listeners []func(Event)
}

// NewContext 创建会话上下文
// 参数:
//   - store: 持久化存储
//   - logger: 日志记录器
//
// 返回值:
//   - *Context: 会话上下文
func NewContext(store Store, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{store: store, logger: logger}
}

// Subscribe 订阅会话事件，回调在写入完成后同步执行
func (c *Context) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Load 从存储恢复会话
// 只有四个键全部存在才视为已登录；残缺状态视为未登录并清理残留键
func (c *Context) Load(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, partial, err := c.read(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		c.user = nil
		if partial {
			c.logger.Warn("Discarding partial session state")
			if err := c.clear(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	c.user = s
	out := *s
	return &out, nil
}

// User 当前用户，未登录返回nil
func (c *Context) User() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	out := *c.user
	return &out
}

// Login 持久化会话并设置当前用户
// 调用前必须已由后端确认凭据，本方法不做任何校验
func (c *Context) Login(ctx context.Context, s Session) error {
	if !s.Complete() {
		return ErrIncomplete
	}

	c.mu.Lock()
	values := map[string]string{
		KeyToken:    s.Token,
		KeyUsername: s.Username,
		KeyRole:     string(s.Role),
		KeyUserID:   s.UserID,
	}
	for _, key := range Keys {
		if err := c.store.Set(ctx, key, values[key]); err != nil {
			// 写入中途失败时回滚，避免留下残缺会话
			if cerr := c.clear(ctx); cerr != nil {
				c.logger.Error("Failed to roll back partial session", zap.Error(cerr))
			}
			c.user = nil
			c.mu.Unlock()
			return fmt.Errorf("persist session: %w", err)
		}
	}
	out := s
	c.user = &out
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.logger.Info("Session started", zap.String("username", s.Username), zap.String("role", string(s.Role)))
	emit(listeners, Event{Kind: EventLogin, Username: s.Username})
	return nil
}

// Logout 清除全部会话键
// 纯本地操作，不通知后端使令牌失效
func (c *Context) Logout(ctx context.Context) error {
	c.mu.Lock()
	username := ""
	if c.user != nil {
		username = c.user.Username
	}
	err := c.clear(ctx)
	c.user = nil
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if err != nil {
		return err
	}
	emit(listeners, Event{Kind: EventLogout, Username: username})
	return nil
}

// Invalidate 后端返回401时销毁会话
// 幂等：并发的多个401只会清理一次，返回值表示本次调用是否执行了清理
func (c *Context) Invalidate(ctx context.Context, reason string) (bool, error) {
	c.mu.Lock()
	token, err := lookup(ctx, c.store, KeyToken)
	if err != nil {
		c.mu.Unlock()
		return false, err
	}
	if token == "" && c.user == nil {
		c.mu.Unlock()
		return false, nil
	}

	username := ""
	if c.user != nil {
		username = c.user.Username
	}
	err = c.clear(ctx)
	c.user = nil
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if err != nil {
		return false, err
	}
	c.logger.Warn("Session invalidated", zap.String("username", username), zap.String("reason", reason))
	emit(listeners, Event{Kind: EventInvalidated, Username: username, Reason: reason})
	return true, nil
}

// Token 请求拦截器使用的令牌来源
// 每次从存储读取；会话不完整时返回空串
func (c *Context) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, _, err := c.read(ctx)
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}

// read 读取四个键，返回完整会话或nil；partial表示存在残留键
func (c *Context) read(ctx context.Context) (*Session, bool, error) {
	values := make(map[string]string, len(Keys))
	present := 0
	for _, key := range Keys {
		v, err := lookup(ctx, c.store, key)
		if err != nil {
			return nil, false, fmt.Errorf("read session: %w", err)
		}
		if v != "" {
			present++
		}
		values[key] = v
	}

	s := Session{
		Token:    values[KeyToken],
		Username: values[KeyUsername],
		Role:     model.Role(values[KeyRole]),
		UserID:   values[KeyUserID],
	}
	if !s.Complete() {
		return nil, present > 0, nil
	}
	return &s, false, nil
}

// clear 删除全部键，调用方持有锁
func (c *Context) clear(ctx context.Context) error {
	var errs []error
	for _, key := range Keys {
		if err := c.store.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("clear session: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Context) snapshotListeners() []func(Event) {
	out := make([]func(Event), len(c.listeners))
	copy(out, c.listeners)
	return out
}

func emit(listeners []func(Event), ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}
