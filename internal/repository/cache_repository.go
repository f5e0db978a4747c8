package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-auth/config"
	"storefront-auth/internal/autherr"
	"storefront-auth/internal/util"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenRepository : refresh токены в Redis, ключ refreshToken:<uuid пользователя>.
// Новая запись перезаписывает старую, поэтому у пользователя всегда не больше одной живой сессии.
type RefreshTokenRepository struct {
	client *config.RedisClient
}

func NewRefreshTokenRepository(rdb *config.RedisClient) *RefreshTokenRepository {
	return &RefreshTokenRepository{rdb}
}

func (r *RefreshTokenRepository) SetRefreshToken(ctx context.Context, userUUID, refreshToken string, ttl time.Duration) error {
	cmd := r.client.Client.Set(ctx, r.key(userUUID), refreshToken, ttl)
	if err := cmd.Err(); err != nil {
		return autherr.Fatalf(util.LogError("ошибка сохранения refresh токена в Redis", err), "хранилище сессий недоступно")
	}
	if cmd.Val() != "OK" {
		return autherr.Fatalf(nil, "неожиданный ответ Redis: %s", cmd.Val())
	}

	return nil
}

func (r *RefreshTokenRepository) GetRefreshToken(ctx context.Context, userUUID string) (string, error) {
	val, err := r.client.Client.Get(ctx, r.key(userUUID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil // сессии нет
	} else if err != nil {
		return "", autherr.Fatalf(util.LogError("ошибка получения refresh токена из Redis", err), "хранилище сессий недоступно")
	}
	return val, nil
}

// DeleteRefreshToken идемпотентен: удаление отсутствующего ключа не ошибка
func (r *RefreshTokenRepository) DeleteRefreshToken(ctx context.Context, userUUID string) error {
	if err := r.client.Client.Del(ctx, r.key(userUUID)).Err(); err != nil {
		return autherr.Fatalf(util.LogError("ошибка удаления refresh токена из Redis", err), "хранилище сессий недоступно")
	}
	return nil
}

func (r *RefreshTokenRepository) key(userUUID string) string {
	return fmt.Sprintf("refreshToken:%s", userUUID)
}
