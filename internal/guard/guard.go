// Package guard 实现客户端路由守卫
//
// 守卫只用于界面引导，不构成安全边界；后端必须独立校验权限。
package guard

import (
	"errors"
	"fmt"

	"github.com/vera-byte/bookmandu/internal/session"
	"github.com/vera-byte/bookmandu/pkg/model"
)

// LoginPath 守卫拒绝时的跳转目标
const LoginPath = "/login"

// Level 访问级别
type Level int

const (
	Public Level = iota
	Authenticated
	Admin
	Staff
)

func (l Level) String() string {
	switch l {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	case Staff:
		return "staff"
	}
	return "unknown"
}

// ErrRedirect 守卫拒绝访问
var ErrRedirect = errors.New("redirect to login")

// RedirectError 携带跳转目标的拒绝错误
type RedirectError struct {
	Route string
	Level Level
	To    string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s requires %s access, redirecting to %s", e.Route, e.Level, e.To)
}

// Is 支持 errors.Is(err, ErrRedirect)
func (e *RedirectError) Is(target error) bool {
	return target == ErrRedirect
}

// Viewer 提供当前用户
type Viewer interface {
	User() *session.Session
}

// IsAuthenticated 存在令牌
func IsAuthenticated(s *session.Session) bool {
	return s != nil && s.Token != ""
}

// IsAdmin 存在令牌且角色为Admin
func IsAdmin(s *session.Session) bool {
	return IsAuthenticated(s) && s.Role == model.RoleAdmin
}

// IsStaff 存在令牌且角色为Staff
func IsStaff(s *session.Session) bool {
	return IsAuthenticated(s) && s.Role == model.RoleStaff
}

// Allows 判断用户是否满足访问级别
func Allows(level Level, s *session.Session) bool {
	switch level {
	case Public:
		return true
	case Authenticated:
		return IsAuthenticated(s)
	case Admin:
		return IsAdmin(s)
	case Staff:
		return IsStaff(s)
	}
	return false
}

// Check 每次导航时求值，不缓存结果
func Check(route string, level Level, v Viewer) error {
	var s *session.Session
	if v != nil {
		s = v.User()
	}
	if Allows(level, s) {
		return nil
	}
	return &RedirectError{Route: route, Level: level, To: LoginPath}
}

// Routes 客户端视图及其访问级别
var Routes = map[string]Level{
	"/":          Public,
	"/login":     Public,
	"/register":  Public,
	"/books/:id": Public,
	"/cart":      Authenticated,
	"/wishlist":  Authenticated,
	"/order":     Authenticated,
	"/admin":     Admin,
	"/staff":     Staff,
}

// CheckRoute 按路由表检查，未登记的路由需要登录
func CheckRoute(route string, v Viewer) error {
	level, ok := Routes[route]
	if !ok {
		level = Authenticated
	}
	return Check(route, level, v)
}
