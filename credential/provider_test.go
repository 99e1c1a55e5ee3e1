package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipx_go/config"
	"equipx_go/models"
)

func signToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	svc := config.NewJWTService(&config.JWTConfig{SecretKey: "test-secret", ExpirationTime: ttl, Issuer: "test"})
	token, err := svc.GenerateToken("u-42", "Dana", "dana@example.com", "seller")
	require.NoError(t, err)
	return token
}

func TestProviderSetAndClear(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(NewMemoryStore(), nil)

	_, err := p.Token()
	assert.ErrorIs(t, err, ErrNoCredential)

	token := signToken(t, time.Hour)
	require.NoError(t, p.Set(ctx, &models.User{Email: "dana@example.com", Token: token}))

	got, err := p.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	// id/name/role 从 token 声明补全
	account, err := p.Account()
	require.NoError(t, err)
	assert.Equal(t, "u-42", account.ID)
	assert.Equal(t, "Dana", account.Name)
	assert.Equal(t, models.RoleSeller, account.Role)

	exp, ok := p.ExpiresAt()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	require.NoError(t, p.Clear(ctx))
	_, err = p.Token()
	assert.ErrorIs(t, err, ErrNoCredential)
	_, err = p.Account()
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestProviderExpiredToken(t *testing.T) {
	p := NewProvider(NewMemoryStore(), nil)
	require.NoError(t, p.Set(context.Background(), &models.User{ID: "u-42", Token: signToken(t, time.Hour)}))

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := p.Token()
	assert.ErrorIs(t, err, ErrCredentialExpired)
}

func TestProviderOpaqueToken(t *testing.T) {
	p := NewProvider(nil, nil)
	require.NoError(t, p.Set(context.Background(), &models.User{ID: "u1", Name: "Eve", Token: "opaque-token"}))

	got, err := p.Token()
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", got)

	_, ok := p.ExpiresAt()
	assert.False(t, ok)
}

func TestProviderRejectsMissingToken(t *testing.T) {
	p := NewProvider(nil, nil)
	assert.Error(t, p.Set(context.Background(), &models.User{ID: "u1"}))
	assert.Error(t, p.Set(context.Background(), nil))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "equipx", "credential.json")
	store := NewFileStore(path, config.DefaultTokenKey)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	account := &models.User{ID: "u1", Name: "Eve", Email: "eve@example.com", Role: models.RoleBuyer, Token: "t-1"}
	require.NoError(t, store.Save(ctx, account, time.Time{}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, account, loaded)

	require.NoError(t, store.Delete(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestProviderRestoreFromFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credential.json")
	token := signToken(t, time.Hour)

	first := NewProvider(NewFileStore(path, "k"), nil)
	require.NoError(t, first.Set(ctx, &models.User{Token: token}))

	second := NewProvider(NewFileStore(path, "k"), nil)
	require.NoError(t, second.Restore(ctx))

	got, err := second.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	account, err := second.Account()
	require.NoError(t, err)
	assert.Equal(t, "u-42", account.ID)
}

func TestRedisStore(t *testing.T) {
	if os.Getenv("REDIS_ADDR") == "" {
		t.Skip("REDIS_ADDR not set")
	}
	if err := config.InitializeRedis(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer config.CloseRedis()

	ctx := context.Background()
	store := NewRedisStore(config.GetRedisClient(), "equipx:test:"+models.GenerateID())
	defer store.Delete(ctx)

	account := &models.User{ID: "u1", Name: "Eve", Token: "t-1"}
	require.NoError(t, store.Save(ctx, account, time.Now().Add(time.Minute)))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, account, loaded)

	assert.ErrorIs(t, store.Save(ctx, account, time.Now().Add(-time.Minute)), ErrCredentialExpired)

	require.NoError(t, store.Delete(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
