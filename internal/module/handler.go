package module

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vera-byte/bookmandu/internal/middleware"
	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

var validate = validator.New()

// Fail 以后端统一格式返回错误
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, model.ErrorResponse{Message: message})
}

// Error 带状态码的处理错误，消息原样返回给客户端
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError 创建处理错误
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Abort 写回错误响应，非 *Error 一律按500处理
func Abort(c *gin.Context, err error) {
	var e *Error
	if errors.As(err, &e) {
		Fail(c, e.Status, e.Message)
		return
	}
	Fail(c, http.StatusInternalServerError, "Internal server error")
}

// OK 返回简单成功消息
func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Bind 解析并校验JSON请求体，失败时已写入400响应
func Bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Fail(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		Fail(c, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" is "+fe.Tag())
	}
	return "Validation failed: " + strings.Join(parts, ", ")
}

// IntParam 读取整数路径参数，失败时已写入400响应
func IntParam(c *gin.Context, name string) (int, bool) {
	v, err := cast.ToIntE(c.Param(name))
	if err != nil || v <= 0 {
		Fail(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}

// User 当前请求的令牌声明，调用前必须经过认证中间件
func User(c *gin.Context) *middleware.Claims {
	claims, _ := middleware.CurrentUser(c)
	return claims
}
