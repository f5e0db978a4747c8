package service

import (
	"context"
	"log/slog"
	"strings"

	"storefront-auth/config"
	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model"
	"storefront-auth/internal/ports"
	"storefront-auth/internal/security"
	"storefront-auth/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AuthenticationService выпускает, проверяет, обновляет и отзывает сессии.
// Состояние сессии живёт только во внешних хранилищах: пользователи в Postgres, refresh токены в Redis.
type AuthenticationService struct {
	db             sqlx.ExtContext
	userRepository ports.UserRepository
	refreshTokens  ports.RefreshTokenCache
	tokens         ports.TokenService
	cfg            *config.SessionConfig
}

func NewAuthenticationService(
	db sqlx.ExtContext,
	userRepository ports.UserRepository,
	refreshTokens ports.RefreshTokenCache,
	tokens ports.TokenService,
	cfg *config.SessionConfig,
) *AuthenticationService {
	return &AuthenticationService{
		db:             db,
		userRepository: userRepository,
		refreshTokens:  refreshTokens,
		tokens:         tokens,
		cfg:            cfg,
	}
}

// Issue подписывает новую пару токенов и перезаписывает refresh токен пользователя в кэше
func (s *AuthenticationService) Issue(ctx context.Context, userUUID string) (*model.TokensPair, error) {
	tokens, err := s.tokens.GenerateTokenPair(userUUID)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokens.SetRefreshToken(ctx, userUUID, tokens.RefreshToken, s.cfg.RefreshTTL); err != nil {
		return nil, err
	}

	return tokens, nil
}

// Authenticate проверяет email и пароль. Отсутствующий пользователь и неверный пароль
// неразличимы для клиента и по времени ответа.
func (s *AuthenticationService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = security.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, autherr.New(autherr.InvalidCredentials, "Invalid email or password")
	}

	user, err := s.userRepository.FindByEmail(ctx, s.db, email)
	if err != nil {
		if autherr.KindOf(err) != autherr.NotFound {
			return nil, err
		}
		security.CheckPasswordAgainstNothing(password)
		return nil, autherr.New(autherr.InvalidCredentials, "Invalid email or password")
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		util.LoggerFrom(ctx).Info("неверный пароль", slog.String("user", user.UUID))
		return nil, autherr.New(autherr.InvalidCredentials, "Invalid email or password")
	}

	return user, nil
}

// Register создаёт учётную запись с ролью standard, пароль хранится только в виде bcrypt хэша
func (s *AuthenticationService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = security.NormalizeEmail(email)

	if err := security.ValidateName(name); err != nil {
		return nil, err
	}
	if err := security.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := security.ValidatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.userRepository.ExistsByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, autherr.New(autherr.DuplicateIdentity, "User already exists")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// уникальный индекс по email ловит гонку двух одновременных регистраций
	created, err := s.userRepository.CreateUser(ctx, s.db, &model.User{
		UUID:         uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStandard,
	})
	if err != nil {
		return nil, err
	}

	util.LoggerFrom(ctx).Info("пользователь зарегистрирован", slog.String("user", created.UUID))
	return created, nil
}

// ValidateAccess : проверка подписи и срока access токена, без обращения к хранилищам
func (s *AuthenticationService) ValidateAccess(_ context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", autherr.New(autherr.TokenMissing, "Unauthorized - No access token provided")
	}

	subject, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		if autherr.KindOf(err) == autherr.TokenExpired {
			return "", autherr.Wrap(autherr.TokenExpired, "Unauthorized - Access token expired", err)
		}
		return "", autherr.Wrap(autherr.TokenInvalid, "Unauthorized - Invalid access token", err)
	}

	return subject, nil
}

// Refresh выдаёт новый access токен, если refresh токен совпадает с записью в кэше.
// Сам refresh токен не ротируется и остаётся действительным до истечения срока или logout.
func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", autherr.New(autherr.TokenMissing, "No refresh token provided")
	}

	subject, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		if autherr.KindOf(err) == autherr.TokenExpired {
			return "", autherr.Wrap(autherr.TokenExpired, "Refresh token expired", err)
		}
		return "", autherr.Wrap(autherr.TokenInvalid, "Invalid refresh token", err)
	}

	stored, err := s.refreshTokens.GetRefreshToken(ctx, subject)
	if err != nil {
		return "", err
	}
	if stored != refreshToken {
		util.LoggerFrom(ctx).Info("refresh токен не совпадает с сохранённым", slog.String("user", subject))
		return "", autherr.New(autherr.TokenStale, "Invalid refresh token")
	}

	return s.tokens.GenerateAccessToken(subject)
}

// Revoke удаляет refresh токен пользователя; повторный вызов не ошибка
func (s *AuthenticationService) Revoke(ctx context.Context, userUUID string) error {
	return s.refreshTokens.DeleteRefreshToken(ctx, userUUID)
}

// Logout отзывает сессию по refresh токену. Истёкший токен с верной подписью тоже принимается.
func (s *AuthenticationService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return autherr.New(autherr.TokenMissing, "No refresh token provided")
	}

	subject, err := s.tokens.RefreshTokenSubject(refreshToken)
	if err != nil {
		return autherr.Wrap(autherr.TokenInvalid, "Invalid refresh token", err)
	}

	if err := s.Revoke(ctx, subject); err != nil {
		return err
	}

	util.LoggerFrom(ctx).Info("сессия отозвана", slog.String("user", subject))
	return nil
}

// Profile возвращает пользователя по subject из access токена
func (s *AuthenticationService) Profile(ctx context.Context, userUUID string) (*model.User, error) {
	return s.userRepository.FindByUUID(ctx, s.db, userUUID)
}
