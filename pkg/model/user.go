package model

// Role 用户角色
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleStaff  Role = "Staff"
	RoleMember Role = "Member"
)

// Valid 判断角色是否为后端定义的三种之一
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleMember:
		return true
	}
	return false
}

// RegisterRequest 会员注册请求结构
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest 登录请求结构
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse 登录响应结构
// 四个字段必须同时存在，否则视为无效响应
type LoginResponse struct {
	Token    string `json:"token" validate:"required"`
	Username string `json:"username" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=Admin Staff Member"`
	UserID   string `json:"userId" validate:"required"`
}

// RegisterStaffRequest 管理员注册员工账号请求
type RegisterStaffRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Account 员工或会员账号信息
type Account struct {
	ID           string `json:"id" validate:"required"`
	UserName     string `json:"userName"`
	Email        string `json:"email"`
	JoinDate     Time   `json:"joinDate"`
	MembershipID string `json:"membershipId,omitempty"`
}

// ErrorResponse 后端错误响应结构
type ErrorResponse struct {
	Message string `json:"message"`
}
