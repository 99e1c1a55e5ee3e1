package services

import (
	"context"

	"go.uber.org/zap"

	"equipx_go/models"
	"equipx_go/utils"
)

// AuthClient 认证相关的远程调用
type AuthClient interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, error)
	Logout(ctx context.Context) error
}

// CredentialStore 登录凭证的保存与清除
type CredentialStore interface {
	Set(ctx context.Context, account *models.User) error
	Clear(ctx context.Context) error
}

// AuthService 认证服务
type AuthService struct {
	api       AuthClient
	creds     CredentialStore
	validator *utils.Validator
	logger    *zap.Logger
}

// NewAuthService 创建认证服务实例
func NewAuthService(api AuthClient, creds CredentialStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		api:       api,
		creds:     creds,
		validator: utils.NewValidator(),
		logger:    logger,
	}
}

// Register 注册并保存返回的凭证
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, s.fail("register", err)
	}
	account, err := s.api.Register(ctx, &req)
	if err != nil {
		return nil, s.fail("register", err)
	}
	return s.establish(ctx, "register", account)
}

// Login 登录并保存返回的凭证
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, s.fail("login", err)
	}
	account, err := s.api.Login(ctx, &req)
	if err != nil {
		return nil, s.fail("login", err)
	}
	return s.establish(ctx, "login", account)
}

func (s *AuthService) establish(ctx context.Context, op string, account *models.User) (*models.User, error) {
	if err := s.creds.Set(ctx, account); err != nil {
		return nil, s.fail(op, err)
	}
	s.logger.Info("signed in", zap.String("account_id", account.ID), zap.String("role", string(account.Role)))

	out := *account
	return &out, nil
}

// Logout 通知服务端后清除本地凭证
// 服务端调用失败不影响本地清除
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("remote logout failed", zap.Error(err))
	}
	if err := s.creds.Clear(ctx); err != nil {
		return s.fail("logout", err)
	}
	return nil
}

func (s *AuthService) fail(op string, err error) error {
	s.logger.Error("auth operation failed", zap.String("op", op), zap.Error(err))
	return newOpError(KindAuth, op, "", err)
}
