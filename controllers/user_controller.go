package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserController 用户控制器
type UserController struct{}

// NewUserController 创建用户控制器实例
func NewUserController() *UserController {
	return &UserController{}
}

// Me 当前登录用户（来自token声明）
// @Router /api/users/me [get]
func (uc *UserController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
