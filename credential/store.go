package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"equipx_go/models"
)

// MemoryStore 仅保存在进程内
type MemoryStore struct {
	mu      sync.Mutex
	account *models.User
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.account == nil {
		return nil, nil
	}
	acc := *s.account
	return &acc, nil
}

func (s *MemoryStore) Save(ctx context.Context, account *models.User, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := *account
	s.account = &acc
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = nil
	return nil
}

// FileStore 以JSON文件保存，文件内按键区分
type FileStore struct {
	mu   sync.Mutex
	path string
	key  string
}

// NewFileStore 创建文件存储
func NewFileStore(path, key string) *FileStore {
	return &FileStore{path: path, key: key}
}

func (s *FileStore) readAll() (map[string]*models.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]*models.User{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := map[string]*models.User{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileStore) writeAll(entries map[string]*models.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Load(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return entries[s.key], nil
}

func (s *FileStore) Save(ctx context.Context, account *models.User, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return err
	}
	acc := *account
	entries[s.key] = &acc
	return s.writeAll(entries)
}

func (s *FileStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return err
	}
	if _, ok := entries[s.key]; !ok {
		return nil
	}
	delete(entries, s.key)
	return s.writeAll(entries)
}

// RedisStore 保存在 Redis 中，过期时间跟随 token 的 exp
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) (*models.User, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var acc models.User
	if err := json.Unmarshal([]byte(raw), &acc); err != nil {
		// 数据损坏，清理后视为未登录
		_ = s.client.Del(ctx, s.key).Err()
		return nil, nil
	}
	return &acc, nil
}

func (s *RedisStore) Save(ctx context.Context, account *models.User, expiresAt time.Time) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			return ErrCredentialExpired
		}
	}
	return s.client.Set(ctx, s.key, data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}
