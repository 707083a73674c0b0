package client

import (
	"context"
	"net/http"

	"github.com/vera-byte/bookmandu/internal/httpclient"
	"github.com/vera-byte/bookmandu/pkg/model"
)

// Authenticator 认证服务接口
type Authenticator interface {
	// Register 会员注册
	// 参数: ctx 上下文, req 注册信息
	// 返回值: error 错误信息
	Register(ctx context.Context, req model.RegisterRequest) error

	// Login 用户登录
	// 参数: ctx 上下文, email 邮箱, password 密码
	// 返回值: *model.LoginResponse 登录响应, error 错误信息
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
}

var _ Authenticator = (*AuthService)(nil)

// AuthService 认证服务
// 登录结果不在此处持久化，由会话上下文负责
type AuthService struct {
	d Doer
}

// Register 会员注册
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) error {
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Registration failed",
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		Body:   req,
	})
}

// Login 用户登录
// 响应必须同时包含 token、username、role、userId
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	err := s.d.Do(ctx, httpclient.Call{
		Op:     "Login failed",
		Method: http.MethodPost,
		Path:   "/api/auth/login",
		Body:   model.LoginRequest{Email: email, Password: password},
		Result: &resp,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
