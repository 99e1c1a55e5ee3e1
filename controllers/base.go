package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipx_go/middleware"
	"equipx_go/models"
	"equipx_go/store"
	"equipx_go/utils"
)

// bindAndValidate 解析JSON请求体并执行校验，失败时已写入响应
func bindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		utils.BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	if err := utils.ValidateStruct(obj); err != nil {
		utils.ValidationFailed(c, err)
		return false
	}
	return true
}

// currentUser 从认证中间件写入的上下文构造当前用户
func currentUser(c *gin.Context) *models.User {
	return &models.User{
		ID:    c.GetString("user_id"),
		Name:  c.GetString("user_name"),
		Email: c.GetString("user_email"),
		Role:  models.Role(c.GetString("user_role")),
	}
}

// storeError 把存储层错误映射为HTTP响应
func storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, store.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, store.ErrEmailTaken), errors.Is(err, store.ErrInvalidTransition):
		utils.Conflict(c, err.Error())
	case errors.Is(err, store.ErrInvalidCredentials):
		utils.Unauthorized(c, err.Error())
	default:
		middleware.ErrorLogger("❌ store operation failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		utils.InternalError(c, "")
	}
}
