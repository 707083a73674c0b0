package client

import (
	"context"
	"net/http"

	"github.com/vera-byte/bookmandu/internal/httpclient"
	"github.com/vera-byte/bookmandu/pkg/model"
)

// UserService 账号管理服务，仅管理员可用
type UserService struct {
	d Doer
}

// RegisterStaff 注册员工账号
func (s *UserService) RegisterStaff(ctx context.Context, req model.RegisterStaffRequest) error {
	return s.d.Do(ctx, httpclient.Call{
		Op:     "Staff registration failed",
		Method: http.MethodPost,
		Path:   "/api/user/register-staff",
		Body:   req,
	})
}

// Members 会员列表
func (s *UserService) Members(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch members", Method: http.MethodGet, Path: "/api/user/members", Result: &out})
	return out, err
}

// Staff 员工列表
func (s *UserService) Staff(ctx context.Context) ([]model.Account, error) {
	var out []model.Account
	err := s.d.Do(ctx, httpclient.Call{Op: "Failed to fetch staff", Method: http.MethodGet, Path: "/api/user/staff", Result: &out})
	return out, err
}
