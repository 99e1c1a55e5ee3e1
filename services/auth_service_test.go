package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipx_go/credential"
	"equipx_go/models"
)

type fakeAuth struct {
	calls     int
	account   *models.User
	err       error
	logoutErr error
}

func (f *fakeAuth) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u := *f.account
	u.Name, u.Email, u.Role = req.Name, req.Email, req.Role
	return &u, nil
}

func (f *fakeAuth) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u := *f.account
	return &u, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.calls++
	return f.logoutErr
}

func TestLoginStoresCredential(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{account: &models.User{ID: "u1", Name: "Dana", Email: "dana@example.com", Role: models.RoleSeller, Token: "tok-1"}}
	creds := credential.NewProvider(credential.NewMemoryStore(), nil)
	svc := NewAuthService(api, creds, nil)

	account, err := svc.Login(ctx, models.LoginRequest{Email: "dana@example.com", Password: "secret", Role: models.RoleSeller})
	require.NoError(t, err)
	assert.Equal(t, "u1", account.ID)

	token, err := creds.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// 凭证可直接作为发布管理器的账号来源
	m := NewListingManager(newFakeProducts(), creds, nil)
	created, err := m.Create(ctx, models.EquipmentDraft{Name: "Walker", Status: models.ConditionUsed, Price: 30})
	require.NoError(t, err)
	assert.Equal(t, "u1", created.SellerID)
	assert.Equal(t, "Dana", created.Seller)
}

func TestRegisterStoresCredential(t *testing.T) {
	api := &fakeAuth{account: &models.User{ID: "u2", Token: "tok-2"}}
	creds := credential.NewProvider(nil, nil)
	svc := NewAuthService(api, creds, nil)

	account, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Ben", Email: "ben@example.com", Password: "secret1", Role: models.RoleBuyer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, account.Role)

	stored, err := creds.Account()
	require.NoError(t, err)
	assert.Equal(t, "ben@example.com", stored.Email)
}

func TestLoginValidatesLocally(t *testing.T) {
	api := &fakeAuth{account: &models.User{ID: "u1", Token: "tok"}}
	svc := NewAuthService(api, credential.NewProvider(nil, nil), nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nope", Password: "x", Role: models.RoleBuyer})
	assert.ErrorIs(t, err, ErrAuth)
	assert.Zero(t, api.calls)
}

func TestLoginFailureKeepsNoCredential(t *testing.T) {
	rejected := errors.New("401")
	api := &fakeAuth{err: rejected}
	creds := credential.NewProvider(nil, nil)
	svc := NewAuthService(api, creds, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@b.io", Password: "wrong", Role: models.RoleBuyer})
	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, rejected)

	_, err = creds.Token()
	assert.ErrorIs(t, err, credential.ErrNoCredential)
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	ctx := context.Background()
	api := &fakeAuth{logoutErr: errors.New("offline")}
	creds := credential.NewProvider(nil, nil)
	require.NoError(t, creds.Set(ctx, &models.User{ID: "u1", Token: "tok"}))

	require.NoError(t, NewAuthService(api, creds, nil).Logout(ctx))
	assert.Equal(t, 1, api.calls)

	_, err := creds.Token()
	assert.ErrorIs(t, err, credential.ErrNoCredential)
}
