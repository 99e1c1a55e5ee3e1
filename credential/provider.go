// Package credential 管理登录凭证（bearer token 与账号信息）。
// 登录时 Set，登出时 Clear，所有请求通过 Token 读取。
package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"equipx_go/models"
)

var (
	ErrNoCredential      = errors.New("no credential: login required")
	ErrCredentialExpired = errors.New("credential expired: login again")
)

// Store 凭证持久化后端
type Store interface {
	// Load 没有保存的凭证时返回 nil, nil
	Load(ctx context.Context) (*models.User, error)
	Save(ctx context.Context, account *models.User, expiresAt time.Time) error
	Delete(ctx context.Context) error
}

// Provider 凭证提供者，在构造时注入到各个组件中
type Provider struct {
	mu        sync.RWMutex
	store     Store
	account   *models.User
	expiresAt time.Time
	now       func() time.Time
	logger    *zap.Logger
}

// NewProvider 创建凭证提供者
func NewProvider(store Store, logger *zap.Logger) *Provider {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// Restore 从持久化存储恢复上次登录的凭证
func (p *Provider) Restore(ctx context.Context) error {
	account, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if account == nil || account.Token == "" {
		return nil
	}

	exp := tokenExpiry(account.Token)
	p.mu.Lock()
	p.account = fillFromToken(account)
	p.expiresAt = exp
	p.mu.Unlock()

	p.logger.Debug("credential restored", zap.String("account_id", account.ID))
	return nil
}

// Set 登录成功后保存凭证
func (p *Provider) Set(ctx context.Context, account *models.User) error {
	if account == nil || account.Token == "" {
		return errors.New("account carries no token")
	}

	acc := fillFromToken(account)
	exp := tokenExpiry(acc.Token)
	if err := p.store.Save(ctx, acc, exp); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	p.mu.Lock()
	p.account = acc
	p.expiresAt = exp
	p.mu.Unlock()

	p.logger.Info("credential set", zap.String("account_id", acc.ID), zap.String("role", string(acc.Role)))
	return nil
}

// Clear 登出时清除凭证；内存状态总会被清除
func (p *Provider) Clear(ctx context.Context) error {
	p.mu.Lock()
	p.account = nil
	p.expiresAt = time.Time{}
	p.mu.Unlock()

	if err := p.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	p.logger.Info("credential cleared")
	return nil
}

// Token 返回当前 bearer token
func (p *Provider) Token() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.account == nil || p.account.Token == "" {
		return "", ErrNoCredential
	}
	if !p.expiresAt.IsZero() && !p.now().Before(p.expiresAt) {
		return "", ErrCredentialExpired
	}
	return p.account.Token, nil
}

// Account 返回当前账号的副本
func (p *Provider) Account() (*models.User, error) {
	if _, err := p.Token(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	acc := *p.account
	return &acc, nil
}

// ExpiresAt token 过期时间；非JWT或未声明 exp 时返回 false
func (p *Provider) ExpiresAt() (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.expiresAt, !p.expiresAt.IsZero()
}

// tokenClaims 不校验签名读取声明，签名由服务端负责校验
func tokenClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// tokenExpiry 读取 exp 声明
func tokenExpiry(token string) time.Time {
	claims := tokenClaims(token)
	if claims == nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// fillFromToken 账号缺少 id/name/role 时从 token 声明中补全
func fillFromToken(account *models.User) *models.User {
	acc := *account
	claims := tokenClaims(acc.Token)
	if claims == nil {
		return &acc
	}

	if acc.ID == "" {
		if id, ok := claims["user_id"].(string); ok {
			acc.ID = id
		} else if sub, err := claims.GetSubject(); err == nil {
			acc.ID = sub
		}
	}
	if acc.Name == "" {
		if name, ok := claims["name"].(string); ok {
			acc.Name = name
		}
	}
	if acc.Role == "" {
		if role, ok := claims["role"].(string); ok {
			acc.Role = models.Role(role)
		}
	}
	return &acc
}
