package utils

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"equipx_go/config"
)

// Response 错误响应结构（成功时直接返回资源本身）
type Response struct {
	Code    int         `json:"code"`            // 业务状态码
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误信息
}

// 业务状态码常量
const (
	CodeSuccess             = 20000 // 成功
	CodeError               = 40000 // 错误
	CodeUnauthorized        = 40100 // 未授权
	CodeForbidden           = 40300 // 禁止访问
	CodeNotFound            = 40400 // 资源不存在
	CodeConflict            = 40900 // 冲突
	CodeValidationError     = 42200 // 验证错误
	CodeTooManyRequests     = 42900 // 请求过于频繁
	CodeInternalServerError = 50000 // 内部错误
)

// 业务状态码对应的消息
var codeMessages = map[int]string{
	CodeSuccess:             "success",
	CodeError:               "bad request",
	CodeUnauthorized:        "unauthorized, please login again",
	CodeForbidden:           "forbidden",
	CodeNotFound:            "resource not found",
	CodeConflict:            "conflict",
	CodeValidationError:     "validation failed",
	CodeTooManyRequests:     "too many requests",
	CodeInternalServerError: "internal server error",
}

// GetCodeMessage 获取状态码对应的消息
func GetCodeMessage(code int) string {
	if msg, exists := codeMessages[code]; exists {
		return msg
	}
	return "unknown error"
}

// Error 错误响应
func Error(c *gin.Context, status, code int, message string) {
	if message == "" {
		message = GetCodeMessage(code)
	}
	c.AbortWithStatusJSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// ValidationFailed 验证错误响应
func ValidationFailed(c *gin.Context, err error) {
	resp := Response{
		Code:    CodeValidationError,
		Message: GetCodeMessage(CodeValidationError),
		Error:   err.Error(),
	}
	if ve, ok := err.(*ValidationError); ok {
		resp.Data = ve.Errors
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, resp)
}

// BadRequest 请求格式错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeError, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodeForbidden, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// Conflict 冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, CodeConflict, message)
}

// TooManyRequests 限流响应
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, CodeTooManyRequests, message)
}

// InternalError 内部错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeInternalServerError, message)
}

// APIRateLimit API限流（使用Redis）
func APIRateLimit(ctx context.Context, scope, userID string, limit int, duration time.Duration) bool {
	if config.RedisClient == nil {
		return true // Redis不可用时，不限流
	}

	key := fmt.Sprintf("equipx:ratelimit:%s:%s", scope, userID)

	// 使用Redis的INCR和EXPIRE实现限流
	count, err := config.RedisClient.Incr(ctx, key).Result()
	if err != nil {
		return true
	}

	// 如果是第一次请求，设置过期时间
	if count == 1 {
		config.RedisClient.Expire(ctx, key, duration)
	}

	return count <= int64(limit)
}
