package client

import (
	"context"
	"net/http"

	"equipx_go/models"
)

const authPath = "/api/auth"

// AuthAPI 认证接口，注册和登录不需要 token
type AuthAPI struct {
	c *Client
}

// Register 注册
func (a *AuthAPI) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	var out models.User
	if err := a.c.do(ctx, request{method: http.MethodPost, path: authPath + "/register", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login 登录
func (a *AuthAPI) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	var out models.User
	if err := a.c.do(ctx, request{method: http.MethodPost, path: authPath + "/login", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout 登出
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.c.do(ctx, request{method: http.MethodPost, path: authPath + "/logout", auth: true}, nil)
}
