package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-auth/config"
	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model"
	"storefront-auth/internal/security"
	"storefront-auth/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "storefront-auth-test",
	}
}

type fixture struct {
	db      *config.Database
	users   *MockUserRepository
	cache   *memoryCache
	jwt     *security.JWTService
	service *service.AuthenticationService
}

func newFixture() *fixture {
	f := &fixture{
		db:    &config.Database{},
		users: new(MockUserRepository),
		cache: newMemoryCache(),
		jwt:   security.NewJWTService(sessionConfig()),
	}
	f.service = service.NewAuthenticationService(f.db, f.users, f.cache, f.jwt, sessionConfig())
	return f
}

func TestAuthenticationService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		userName    string
		email       string
		password    string
		setupMocks  func(u *MockUserRepository, db *config.Database)
		expectKind  autherr.Kind
		expectField string
	}{
		{
			name:        "empty name",
			userName:    " ",
			email:       "a@x.com",
			password:    "Secret123",
			expectKind:  autherr.ValidationError,
			expectField: "name",
		},
		{
			name:        "malformed email",
			userName:    "Alice",
			email:       "a-at-x.com",
			password:    "Secret123",
			expectKind:  autherr.ValidationError,
			expectField: "email",
		},
		{
			name:        "weak password",
			userName:    "Alice",
			email:       "a@x.com",
			password:    "secret",
			expectKind:  autherr.ValidationError,
			expectField: "password",
		},
		{
			name:     "duplicate email",
			userName: "Alice",
			email:    "A@X.com",
			password: "Secret123",
			setupMocks: func(u *MockUserRepository, db *config.Database) {
				u.On("ExistsByEmail", ctx, db, "a@x.com").Return(true, nil)
			},
			expectKind: autherr.DuplicateIdentity,
		},
		{
			name:     "duplicate caught by unique index",
			userName: "Alice",
			email:    "a@x.com",
			password: "Secret123",
			setupMocks: func(u *MockUserRepository, db *config.Database) {
				u.On("ExistsByEmail", ctx, db, "a@x.com").Return(false, nil)
				u.On("CreateUser", ctx, db, mock.Anything).
					Return(nil, autherr.New(autherr.DuplicateIdentity, "User already exists"))
			},
			expectKind: autherr.DuplicateIdentity,
		},
		{
			name:     "success",
			userName: "Alice",
			email:    "a@x.com",
			password: "Secret123",
			setupMocks: func(u *MockUserRepository, db *config.Database) {
				u.On("ExistsByEmail", ctx, db, "a@x.com").Return(false, nil)
				u.On("CreateUser", ctx, db, mock.MatchedBy(func(user *model.User) bool {
					return user.Email == "a@x.com" &&
						user.Role == model.RoleStandard &&
						user.UUID != "" &&
						user.PasswordHash != "Secret123" &&
						security.CheckPassword("Secret123", user.PasswordHash)
				})).Return(&model.User{UUID: "user-1", Name: "Alice", Email: "a@x.com", Role: model.RoleStandard}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setupMocks != nil {
				tt.setupMocks(f.users, f.db)
			}

			user, err := f.service.Register(ctx, tt.userName, tt.email, tt.password)

			if tt.expectKind != "" {
				assert.Error(t, err)
				assert.Nil(t, user)
				assert.Equal(t, tt.expectKind, autherr.KindOf(err))
				if tt.expectField != "" {
					assert.ErrorIs(t, err, autherr.Validation(tt.expectField, ""))
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "user-1", user.UUID)
			}

			f.users.AssertExpectations(t)
		})
	}
}

func TestAuthenticationService_Authenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := security.HashPassword("Secret123")
	require.NoError(t, err)
	alice := &model.User{UUID: "user-1", Email: "a@x.com", PasswordHash: hash}

	tests := []struct {
		name       string
		email      string
		password   string
		setupMocks func(u *MockUserRepository, db *config.Database)
		expectKind autherr.Kind
	}{
		{
			name:     "unknown email",
			email:    "b@x.com",
			password: "Secret123",
			setupMocks: func(u *MockUserRepository, db *config.Database) {
				u.On("FindByEmail", ctx, db, "b@x.com").Return(nil, autherr.New(autherr.NotFound, "User not found"))
			},
			expectKind: autherr.InvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "a@x.com",
			password: "wrong",
			setupMocks: func(u *MockUserRepository, db *config.Database) {
				u.On("FindByEmail", ctx, db, "a@x.com").Return(alice, nil)
			},
			expectKind: autherr.InvalidCredentials,
		},
		{
			name:       "empty password",
			email:      "a@x.com",
			expectKind: autherr.InvalidCredentials,
		},
		{
			name:     "store unavailable",
			email:    "a@x.com",
			password: "Secret123",
			setupMocks: func(u *MockUserRepository, db *config.Database) {
				u.On("FindByEmail", ctx, db, "a@x.com").Return(nil, autherr.Fatalf(errors.New("connection refused"), "ошибка чтения пользователя"))
			},
			expectKind: autherr.Fatal,
		},
		{
			name:     "success, email case ignored",
			email:    " A@x.COM",
			password: "Secret123",
			setupMocks: func(u *MockUserRepository, db *config.Database) {
				u.On("FindByEmail", ctx, db, "a@x.com").Return(alice, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.setupMocks != nil {
				tt.setupMocks(f.users, f.db)
			}

			user, err := f.service.Authenticate(ctx, tt.email, tt.password)

			if tt.expectKind != "" {
				assert.Nil(t, user)
				assert.Equal(t, tt.expectKind, autherr.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, "user-1", user.UUID)
			}
			f.users.AssertExpectations(t)
		})
	}
}

func TestAuthenticationService_SignupThenLoginYieldsSubject(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	stored := &model.User{}
	f.users.On("ExistsByEmail", ctx, f.db, "a@x.com").Return(false, nil)
	f.users.On("CreateUser", ctx, f.db, mock.Anything).
		Run(func(args mock.Arguments) {
			*stored = *args.Get(2).(*model.User)
		}).
		Return(stored, nil)

	created, err := f.service.Register(ctx, "Alice", "a@x.com", "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, stored.UUID)

	f.users.On("FindByEmail", ctx, f.db, "a@x.com").Return(stored, nil)

	user, err := f.service.Authenticate(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, created.UUID, user.UUID)

	pair, err := f.service.Issue(ctx, user.UUID)
	require.NoError(t, err)

	subject, err := f.service.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.UUID, subject)

	cached, _ := f.cache.GetRefreshToken(ctx, created.UUID)
	assert.Equal(t, pair.RefreshToken, cached)
	assert.Equal(t, 7*24*time.Hour, f.cache.ttls[created.UUID])
}

func TestAuthenticationService_ValidateAccess(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Now()
	cfg := sessionConfig()
	cache := newMemoryCache()

	issuer := service.NewAuthenticationService(&config.Database{}, new(MockUserRepository), cache,
		security.NewJWTService(cfg).WithClock(func() time.Time { return issuedAt }), cfg)
	pair, err := issuer.Issue(ctx, "user-1")
	require.NoError(t, err)

	later := service.NewAuthenticationService(&config.Database{}, new(MockUserRepository), cache,
		security.NewJWTService(cfg).WithClock(func() time.Time { return issuedAt.Add(16 * time.Minute) }), cfg)

	_, err = later.ValidateAccess(ctx, pair.AccessToken)
	assert.Equal(t, autherr.TokenExpired, autherr.KindOf(err))

	_, err = later.ValidateAccess(ctx, "garbage")
	assert.Equal(t, autherr.TokenInvalid, autherr.KindOf(err))

	_, err = later.ValidateAccess(ctx, "")
	assert.Equal(t, autherr.TokenMissing, autherr.KindOf(err))
}

func TestAuthenticationService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a new access token for the cached refresh token", func(t *testing.T) {
		f := newFixture()
		pair, err := f.service.Issue(ctx, "user-1")
		require.NoError(t, err)

		access, err := f.service.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.AccessToken, access)

		subject, err := f.service.ValidateAccess(ctx, access)
		require.NoError(t, err)
		assert.Equal(t, "user-1", subject)

		// refresh токен не ротируется
		cached, _ := f.cache.GetRefreshToken(ctx, "user-1")
		assert.Equal(t, pair.RefreshToken, cached)
	})

	t.Run("superseded token is stale", func(t *testing.T) {
		f := newFixture()
		first, err := f.service.Issue(ctx, "user-1")
		require.NoError(t, err)
		_, err = f.service.Issue(ctx, "user-1")
		require.NoError(t, err)

		_, err = f.service.Refresh(ctx, first.RefreshToken)
		assert.ErrorIs(t, err, autherr.ErrTokenStale)
	})

	t.Run("revoked session cannot refresh", func(t *testing.T) {
		f := newFixture()
		pair, err := f.service.Issue(ctx, "user-1")
		require.NoError(t, err)

		require.NoError(t, f.service.Revoke(ctx, "user-1"))
		require.NoError(t, f.service.Revoke(ctx, "user-1"))

		_, err = f.service.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, autherr.ErrTokenStale)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f := newFixture()
		old := security.NewJWTService(sessionConfig()).WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })
		pair, err := old.GenerateTokenPair("user-1")
		require.NoError(t, err)
		require.NoError(t, f.cache.SetRefreshToken(ctx, "user-1", pair.RefreshToken, time.Hour))

		_, err = f.service.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, autherr.ErrTokenExpired)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := newFixture()
		pair, err := f.service.Issue(ctx, "user-1")
		require.NoError(t, err)

		_, err = f.service.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, autherr.ErrTokenInvalid)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := newFixture().service.Refresh(ctx, "")
		assert.ErrorIs(t, err, autherr.ErrTokenMissing)
	})
}

func TestAuthenticationService_IssueCacheFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	cache := new(MockRefreshTokenCache)
	cache.On("SetRefreshToken", ctx, "user-1", mock.Anything, 7*24*time.Hour).
		Return(autherr.Fatalf(errors.New("dial tcp: connection refused"), "хранилище сессий недоступно"))

	svc := service.NewAuthenticationService(&config.Database{}, new(MockUserRepository), cache,
		security.NewJWTService(sessionConfig()), sessionConfig())

	pair, err := svc.Issue(ctx, "user-1")

	assert.Nil(t, pair)
	assert.ErrorIs(t, err, autherr.ErrFatal)
	cache.AssertExpectations(t)
}

func TestAuthenticationService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("removes cache entry", func(t *testing.T) {
		f := newFixture()
		pair, err := f.service.Issue(ctx, "user-1")
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(ctx, pair.RefreshToken))

		cached, _ := f.cache.GetRefreshToken(ctx, "user-1")
		assert.Empty(t, cached)
	})

	t.Run("expired refresh token still logs out", func(t *testing.T) {
		f := newFixture()
		old := security.NewJWTService(sessionConfig()).WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })
		pair, err := old.GenerateTokenPair("user-1")
		require.NoError(t, err)
		require.NoError(t, f.cache.SetRefreshToken(ctx, "user-1", pair.RefreshToken, time.Hour))

		require.NoError(t, f.service.Logout(ctx, pair.RefreshToken))

		cached, _ := f.cache.GetRefreshToken(ctx, "user-1")
		assert.Empty(t, cached)
	})

	t.Run("missing and forged tokens", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.service.Logout(ctx, ""), autherr.ErrTokenMissing)
		assert.ErrorIs(t, f.service.Logout(ctx, "forged"), autherr.ErrTokenInvalid)
	})
}

func TestAuthenticationService_Profile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.users.On("FindByUUID", ctx, f.db, "ghost").Return(nil, autherr.New(autherr.NotFound, "User not found"))

	_, err := f.service.Profile(ctx, "ghost")

	assert.ErrorIs(t, err, autherr.ErrNotFound)
	f.users.AssertExpectations(t)
}
