package service_test

import (
	"context"
	"sync"
	"time"

	"storefront-auth/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

// ===== MOCKS =====

// MockUserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	args := m.Called(ctx, exec, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	args := m.Called(ctx, exec, uuid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	args := m.Called(ctx, exec, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (bool, error) {
	args := m.Called(ctx, exec, email)
	return args.Bool(0), args.Error(1)
}

// MockRefreshTokenCache
type MockRefreshTokenCache struct {
	mock.Mock
}

func (m *MockRefreshTokenCache) SetRefreshToken(ctx context.Context, userUUID, refreshToken string, ttl time.Duration) error {
	return m.Called(ctx, userUUID, refreshToken, ttl).Error(0)
}

func (m *MockRefreshTokenCache) GetRefreshToken(ctx context.Context, userUUID string) (string, error) {
	args := m.Called(ctx, userUUID)
	return args.String(0), args.Error(1)
}

func (m *MockRefreshTokenCache) DeleteRefreshToken(ctx context.Context, userUUID string) error {
	return m.Called(ctx, userUUID).Error(0)
}

// MockS3Storage
type MockS3Storage struct {
	mock.Mock
}

func (m *MockS3Storage) GeneratePresignedPutURL(ctx context.Context, key, contentType string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expire)
	return args.String(0), args.Error(1)
}

func (m *MockS3Storage) DeleteObject(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// ==== ЗАГЛУШКИ ====

// memoryCache : кэш refresh токенов в памяти для сценарных тестов
type memoryCache struct {
	mu     sync.Mutex
	tokens map[string]string
	ttls   map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{tokens: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) SetRefreshToken(_ context.Context, userUUID, refreshToken string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[userUUID] = refreshToken
	c.ttls[userUUID] = ttl
	return nil
}

func (c *memoryCache) GetRefreshToken(_ context.Context, userUUID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens[userUUID], nil
}

func (c *memoryCache) DeleteRefreshToken(_ context.Context, userUUID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, userUUID)
	delete(c.ttls, userUUID)
	return nil
}
