package ports

import "storefront-auth/internal/model"

// TokenService : подпись и разбор access/refresh токенов
type TokenService interface {
	GenerateTokenPair(userUUID string) (*model.TokensPair, error)
	GenerateAccessToken(userUUID string) (string, error)
	ParseAccessToken(token string) (string, error)
	ParseRefreshToken(token string) (string, error)
	RefreshTokenSubject(token string) (string, error)
}
