package security

import (
	"errors"
	"fmt"
	"time"

	"storefront-auth/config"
	"storefront-auth/internal/autherr"
	"storefront-auth/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims : в токене только subject (uuid пользователя) и срок жизни
type Claims struct {
	UserUUID string `json:"userId"`
	jwt.RegisteredClaims
}

type JWTService struct {
	cfg *config.SessionConfig
	now func() time.Time
}

func NewJWTService(cfg *config.SessionConfig) *JWTService {
	return &JWTService{cfg: cfg, now: time.Now}
}

// WithClock подменяет источник времени (для тестов на истечение токенов)
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	return &JWTService{cfg: s.cfg, now: now}
}

// GenerateTokenPair подписывает access (cfg.AccessTTL) и refresh (cfg.RefreshTTL) токены
func (s *JWTService) GenerateTokenPair(userUUID string) (*model.TokensPair, error) {
	accessToken, err := s.sign(userUUID, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.sign(userUUID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *JWTService) GenerateAccessToken(userUUID string) (string, error) {
	return s.sign(userUUID, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// ParseAccessToken возвращает subject access токена.
// Истёкший токен даёт TokenExpired, всё остальное (подпись, формат) TokenInvalid.
func (s *JWTService) ParseAccessToken(token string) (string, error) {
	claims, err := s.parse(token, s.cfg.AccessSecret)
	if err != nil {
		return "", err
	}
	return claims.UserUUID, nil
}

func (s *JWTService) ParseRefreshToken(token string) (string, error) {
	claims, err := s.parse(token, s.cfg.RefreshSecret)
	if err != nil {
		return "", err
	}
	return claims.UserUUID, nil
}

// RefreshTokenSubject достаёт subject из refresh токена с проверкой подписи, но без проверки срока.
// Нужен для logout: сессию с истёкшим refresh токеном всё равно надо уметь отозвать.
func (s *JWTService) RefreshTokenSubject(token string) (string, error) {
	claims, err := s.parse(token, s.cfg.RefreshSecret)
	if err == nil {
		return claims.UserUUID, nil
	}
	if !errors.Is(err, autherr.ErrTokenExpired) {
		return "", err
	}

	claims = &Claims{}
	_, perr := jwt.ParseWithClaims(token, claims, s.keyFunc(s.cfg.RefreshSecret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if perr != nil || claims.UserUUID == "" {
		return "", autherr.Wrap(autherr.TokenInvalid, "invalid token", perr)
	}
	return claims.UserUUID, nil
}

func (s *JWTService) sign(userUUID string, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", autherr.Fatalf(nil, "не задан ключ подписи токена")
	}

	now := s.now()
	claims := Claims{
		UserUUID: userUUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userUUID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", autherr.Fatalf(err, "ошибка подписи токена")
	}
	return signed, nil
}

func (s *JWTService) parse(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc(secret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherr.Wrap(autherr.TokenExpired, "token expired", err)
		}
		return nil, autherr.Wrap(autherr.TokenInvalid, "invalid token", err)
	}

	if !parsed.Valid || claims.UserUUID == "" {
		return nil, autherr.New(autherr.TokenInvalid, "invalid token")
	}

	return claims, nil
}

func (s *JWTService) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return secret, nil
	}
}
