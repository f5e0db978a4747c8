package ports

import (
	"context"
	"time"
)

// RefreshTokenCache : Redis слой, одна запись refresh токена на пользователя
type RefreshTokenCache interface {
	SetRefreshToken(ctx context.Context, userUUID, refreshToken string, ttl time.Duration) error
	// GetRefreshToken возвращает "" без ошибки, если записи нет
	GetRefreshToken(ctx context.Context, userUUID string) (string, error)
	DeleteRefreshToken(ctx context.Context, userUUID string) error
}
