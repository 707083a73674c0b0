// Package auth 模拟后端的认证与账号管理模块
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/internal/mockdb"
	"github.com/vera-byte/bookmandu/internal/module"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Module 认证模块
type Module struct {
	db     *mockdb.DB
	issuer *middleware.TokenIssuer
	logger *zap.Logger
}

// New 创建认证模块
func New() *Module { return &Module{} }

func (m *Module) Name() string { return "auth" }

func (m *Module) Description() string {
	return "Registration, login and staff account management"
}

// Initialize 初始化模块
func (m *Module) Initialize(_ context.Context, env *module.Env) error {
	if env.DB == nil || env.Issuer == nil {
		return errors.New("auth module requires db and token issuer")
	}
	m.db = env.DB
	m.issuer = env.Issuer
	m.logger = env.Logger.Named("auth")
	return nil
}

// RegisterRoutes 注册路由
func (m *Module) RegisterRoutes(api *gin.RouterGroup) error {
	api.POST("/auth/register", m.register)
	api.POST("/auth/login", m.login)

	users := api.Group("/user", middleware.Auth(m.issuer), middleware.RequireRole(model.RoleAdmin))
	users.POST("/register-staff", m.registerStaff)
	users.GET("/members", m.listByRole(model.RoleMember))
	users.GET("/staff", m.listByRole(model.RoleStaff))
	return nil
}

func (m *Module) HealthCheck(context.Context) error { return nil }

func (m *Module) Shutdown(context.Context) error { return nil }

func (m *Module) register(c *gin.Context) {
	var req model.RegisterRequest
	if !module.Bind(c, &req) {
		return
	}
	m.create(c, req.Username, req.Email, req.Password, model.RoleMember, "Registration successful")
}

func (m *Module) registerStaff(c *gin.Context) {
	var req model.RegisterStaffRequest
	if !module.Bind(c, &req) {
		return
	}
	m.create(c, req.Username, req.Email, req.Password, model.RoleStaff, "Staff registered successfully")
}

func (m *Module) create(c *gin.Context, username, email, password string, role model.Role, message string) {
	var created *mockdb.User
	err := m.db.Update(func(t *mockdb.Tables) error {
		if _, exists := t.UserByEmail(email); exists {
			return module.NewError(http.StatusBadRequest, "Email is already registered")
		}
		u, err := t.AddUser(username, email, password, role, m.db.Now())
		if err != nil {
			m.logger.Error("Failed to create user", zap.Error(err))
			return module.NewError(http.StatusInternalServerError, "Failed to create user")
		}
		created = u
		return nil
	})
	if err != nil {
		module.Abort(c, err)
		return
	}
	m.logger.Info("User created", zap.String("id", created.ID), zap.String("role", string(role)))
	c.JSON(http.StatusOK, gin.H{"message": message, "userId": created.ID})
}

func (m *Module) login(c *gin.Context) {
	var req model.LoginRequest
	if !module.Bind(c, &req) {
		return
	}

	var user *mockdb.User
	m.db.View(func(t *mockdb.Tables) {
		if u, ok := t.UserByEmail(req.Email); ok {
			copied := *u
			user = &copied
		}
	})
	if user == nil || !user.CheckPassword(req.Password) {
		module.Fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := m.issuer.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		m.logger.Error("Failed to sign token", zap.Error(err))
		module.Fail(c, http.StatusInternalServerError, "Login failed")
		return
	}
	c.JSON(http.StatusOK, model.LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
		UserID:   user.ID,
	})
}

func (m *Module) listByRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var out []model.Account
		m.db.View(func(t *mockdb.Tables) {
			for _, u := range t.UsersByRole(role) {
				out = append(out, u.Account())
			}
		})
		if out == nil {
			out = []model.Account{}
		}
		c.JSON(http.StatusOK, out)
	}
}
