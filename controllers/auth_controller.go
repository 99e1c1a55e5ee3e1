package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"equipx_go/config"
	"equipx_go/middleware"
	"equipx_go/models"
	"equipx_go/store"
	"equipx_go/utils"
)

// AuthController 认证控制器
type AuthController struct {
	store      *store.Store
	jwtService *config.JWTService
}

// NewAuthController 创建认证控制器实例
func NewAuthController(st *store.Store, jwtService *config.JWTService) *AuthController {
	if jwtService == nil {
		jwtService = config.GetJWTService()
	}
	return &AuthController{
		store:      st,
		jwtService: jwtService,
	}
}

// Register 用户注册
// @Summary 用户注册
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "注册信息"
// @Success 201 {object} models.User
// @Router /api/auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := ac.store.CreateUser(req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		storeError(c, err)
		return
	}

	ac.respondWithToken(c, http.StatusCreated, user)
}

// Login 用户登录
// @Summary 用户登录
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "登录信息"
// @Success 200 {object} models.User
// @Router /api/auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := ac.store.Authenticate(req.Email, req.Password, req.Role)
	if err != nil {
		middleware.InfoLogger("login rejected", zap.String("email", req.Email), zap.String("ip", c.ClientIP()))
		storeError(c, err)
		return
	}

	ac.respondWithToken(c, http.StatusOK, user)
}

func (ac *AuthController) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := ac.jwtService.GenerateToken(user.ID, user.Name, user.Email, string(user.Role))
	if err != nil {
		middleware.ErrorLogger("failed to sign token", zap.Error(err))
		utils.InternalError(c, "failed to generate token")
		return
	}
	user.Token = token
	c.JSON(status, user)
}

// RefreshToken 刷新token（剩余有效期不足一天时）
// @Router /api/auth/refresh [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	token, err := ac.jwtService.RefreshToken(c.GetString("token"))
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout 用户登出，token 加入黑名单直到过期
// @Router /api/auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	if exp, ok := c.Get("token_exp"); ok {
		if err := middleware.RevokeToken(c.Request.Context(), c.GetString("token"), exp.(time.Time)); err != nil {
			middleware.ErrorLogger("failed to revoke token", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
